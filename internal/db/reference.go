package db

import "github.com/lumenforge/lumen/internal/syntax"
import "github.com/lumenforge/lumen/internal/types"

// RefEntry is one use-site reference to a local decl, a global name, or an
// index (member-by-key) access (spec.md §4.2).
type RefEntry struct {
	File  syntax.FileId
	Range syntax.Range
}

// ReferenceIndex implements add_local_reference/add_global_reference/
// add_index_reference and decl-id lookup by range.
type ReferenceIndex struct {
	local      map[types.DeclId][]RefEntry
	localByPos map[syntax.FileId]map[int]types.DeclId // range.Start -> decl, for decl-id-by-range lookup
	global     map[string][]RefEntry
	index      map[string][]struct {
		File syntax.FileId
		Id   syntax.Id
	}
	byFile map[syntax.FileId]bool
}

func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{
		local:      make(map[types.DeclId][]RefEntry),
		localByPos: make(map[syntax.FileId]map[int]types.DeclId),
		global:     make(map[string][]RefEntry),
		index: make(map[string][]struct {
			File syntax.FileId
			Id   syntax.Id
		}),
		byFile: make(map[syntax.FileId]bool),
	}
}

func (idx *ReferenceIndex) AddLocalReference(decl types.DeclId, file syntax.FileId, r syntax.Range) {
	idx.local[decl] = append(idx.local[decl], RefEntry{File: file, Range: r})
	mp, ok := idx.localByPos[file]
	if !ok {
		mp = make(map[int]types.DeclId)
		idx.localByPos[file] = mp
	}
	mp[r.Start] = decl
	idx.byFile[file] = true
}

func (idx *ReferenceIndex) AddGlobalReference(name string, file syntax.FileId, r syntax.Range) {
	idx.global[name] = append(idx.global[name], RefEntry{File: file, Range: r})
	idx.byFile[file] = true
}

func (idx *ReferenceIndex) AddIndexReference(key string, file syntax.FileId, id syntax.Id) {
	idx.index[key] = append(idx.index[key], struct {
		File syntax.FileId
		Id   syntax.Id
	}{file, id})
	idx.byFile[file] = true
}

func (idx *ReferenceIndex) LocalReferences(decl types.DeclId) []RefEntry { return idx.local[decl] }
func (idx *ReferenceIndex) GlobalReferences(name string) []RefEntry      { return idx.global[name] }

// DeclIdByRange resolves a local-reference range back to the decl it refers
// to (used by the Semantic Model's go-to-definition query).
func (idx *ReferenceIndex) DeclIdByRange(file syntax.FileId, start int) (types.DeclId, bool) {
	mp, ok := idx.localByPos[file]
	if !ok {
		return types.DeclId{}, false
	}
	d, ok := mp[start]
	return d, ok
}

func (idx *ReferenceIndex) Remove(file syntax.FileId) {
	delete(idx.localByPos, file)
	delete(idx.byFile, file)
	for decl, refs := range idx.local {
		kept := filterRefs(refs, file)
		if len(kept) == 0 {
			delete(idx.local, decl)
		} else {
			idx.local[decl] = kept
		}
	}
	for name, refs := range idx.global {
		kept := filterRefs(refs, file)
		if len(kept) == 0 {
			delete(idx.global, name)
		} else {
			idx.global[name] = kept
		}
	}
	for key, entries := range idx.index {
		kept := entries[:0:0]
		for _, e := range entries {
			if e.File != file {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(idx.index, key)
		} else {
			idx.index[key] = kept
		}
	}
}

func filterRefs(refs []RefEntry, file syntax.FileId) []RefEntry {
	kept := refs[:0:0]
	for _, r := range refs {
		if r.File != file {
			kept = append(kept, r)
		}
	}
	return kept
}
