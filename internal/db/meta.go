package db

import "github.com/lumenforge/lumen/internal/syntax"

// MetaIndex tracks which files are "meta files" (spec.md §3.9): files whose
// declarations are treated as ambient/global and whose own diagnostics are
// suppressed by default, mirroring the LuaDoc `---@meta` tag.
type MetaIndex struct {
	meta map[syntax.FileId]bool
}

func NewMetaIndex() *MetaIndex {
	return &MetaIndex{meta: make(map[syntax.FileId]bool)}
}

func (idx *MetaIndex) Mark(file syntax.FileId) { idx.meta[file] = true }

func (idx *MetaIndex) IsMeta(file syntax.FileId) bool { return idx.meta[file] }

func (idx *MetaIndex) Remove(file syntax.FileId) { delete(idx.meta, file) }
