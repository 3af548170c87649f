package db

import (
	"sort"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// OwnerKind distinguishes the three member-owner shapes (spec.md §3.3).
type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerType
	OwnerElement
)

// Owner identifies who a Member belongs to.
type Owner struct {
	Kind  OwnerKind
	Type  types.TypeDeclId // valid when Kind == OwnerType
	File  syntax.FileId    // valid when Kind == OwnerElement
	Range syntax.Range      // valid when Kind == OwnerElement
}

func TypeOwner(name types.TypeDeclId) Owner { return Owner{Kind: OwnerType, Type: name} }
func ElementOwner(file syntax.FileId, r syntax.Range) Owner {
	return Owner{Kind: OwnerElement, File: file, Range: r}
}

// KeyKind orders member keys: None < Integer < Name (spec.md §3.3).
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyInteger
	KeyName
)

type Key struct {
	Kind KeyKind
	Name string
	Int  int64
}

func NameKey(n string) Key   { return Key{Kind: KeyName, Name: n} }
func IntKey(i int64) Key     { return Key{Kind: KeyInteger, Int: i} }
var NoneKey = Key{Kind: KeyNone}

// Less implements the ordering spec.md §3.3 requires for deterministic
// member iteration (e.g. document-symbol ordering in a host LSP).
func (k Key) Less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	switch k.Kind {
	case KeyInteger:
		return k.Int < o.Int
	case KeyName:
		return k.Name < o.Name
	default:
		return false
	}
}

// Member is (owner, key, file, syntax-id, declared-type?) — spec.md §3.3.
type Member struct {
	Id           types.MemberId
	Owner        Owner
	Key          Key
	File         syntax.FileId
	DeclaredType types.Type
}

// MemberIndex implements add_member/add_member_to_owner/get_member_from_owner/
// get_member_map with first-registered-wins semantics (spec.md §4.2).
type MemberIndex struct {
	byId      map[types.MemberId]*Member
	ownerMaps map[ownerKeyStr]map[keyStr]types.MemberId
	byFile    map[syntax.FileId][]types.MemberId
}

type ownerKeyStr string
type keyStr string

func ownerKey(o Owner) ownerKeyStr {
	switch o.Kind {
	case OwnerType:
		return ownerKeyStr("t:" + string(o.Type))
	case OwnerElement:
		return ownerKeyStr("e:" + itoa(int(o.File)) + ":" + itoa(o.Range.Start) + "-" + itoa(o.Range.End))
	default:
		return "n:"
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func keyOf(k Key) keyStr {
	switch k.Kind {
	case KeyInteger:
		return keyStr("i:" + itoa(int(k.Int)))
	case KeyName:
		return keyStr("s:" + k.Name)
	default:
		return "n:"
	}
}

func NewMemberIndex() *MemberIndex {
	return &MemberIndex{
		byId:      make(map[types.MemberId]*Member),
		ownerMaps: make(map[ownerKeyStr]map[keyStr]types.MemberId),
		byFile:    make(map[syntax.FileId][]types.MemberId),
	}
}

// AddMember registers m unconditionally (used for cleanup bookkeeping even
// when it loses the owner-map race).
func (idx *MemberIndex) AddMember(m *Member) {
	idx.byId[m.Id] = m
	idx.byFile[m.File] = append(idx.byFile[m.File], m.Id)
}

// AddMemberToOwner wires m into its owner's key map, keeping the first
// registration on a collision (spec.md invariant in §4.2).
func (idx *MemberIndex) AddMemberToOwner(m *Member) {
	idx.AddMember(m)
	ok := ownerKey(m.Owner)
	mp, exists := idx.ownerMaps[ok]
	if !exists {
		mp = make(map[keyStr]types.MemberId)
		idx.ownerMaps[ok] = mp
	}
	kk := keyOf(m.Key)
	if _, taken := mp[kk]; !taken {
		mp[kk] = m.Id
	}
}

func (idx *MemberIndex) GetMemberFromOwner(owner Owner, key Key) (*Member, bool) {
	mp, ok := idx.ownerMaps[ownerKey(owner)]
	if !ok {
		return nil, false
	}
	id, ok := mp[keyOf(key)]
	if !ok {
		return nil, false
	}
	return idx.byId[id], true
}

// GetMemberMap returns owner's key->Member map in key order.
func (idx *MemberIndex) GetMemberMap(owner Owner) []*Member {
	mp, ok := idx.ownerMaps[ownerKey(owner)]
	if !ok {
		return nil
	}
	out := make([]*Member, 0, len(mp))
	for _, id := range mp {
		out = append(out, idx.byId[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// Remove sheds every member tuple tagged with file, including rebuilding
// owner maps so a removed member's slot can be reclaimed by a sibling.
func (idx *MemberIndex) Remove(file syntax.FileId) {
	ids := idx.byFile[file]
	delete(idx.byFile, file)
	if len(ids) == 0 {
		return
	}
	removed := make(map[types.MemberId]bool, len(ids))
	for _, id := range ids {
		removed[id] = true
		delete(idx.byId, id)
	}
	for ok, mp := range idx.ownerMaps {
		for k, id := range mp {
			if removed[id] {
				delete(mp, k)
			}
		}
		if len(mp) == 0 {
			delete(idx.ownerMaps, ok)
		}
	}
}
