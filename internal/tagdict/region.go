package tagdict

import "sync"

// RegionId identifies a tile-data region whose local tag ids need
// translation into dictionary TagValueIds. Region decoding tables
// themselves are owned by the tile layer (out of scope, §1); this package
// only caches the translation from local id to TagValueId per region.
type RegionId uint64

// Resolver decodes a region-local tag id into the (tag,value) pair it
// represents. Supplied by the caller (the tile layer, out of scope) at
// Encode time.
type Resolver func(localID uint32) (tag, value string)

// RegionTable caches, per region, the translation from a region's local tag
// id to a dictionary TagValueId. On a cache miss it resolves the pair
// through the resolver and registers it with the dictionary.
type RegionTable struct {
	dict *Dictionary

	mu    sync.Mutex
	cache map[RegionId]map[uint32]TagValueId
}

// NewRegionTable returns a RegionTable backed by dict.
func NewRegionTable(dict *Dictionary) *RegionTable {
	return &RegionTable{
		dict:  dict,
		cache: make(map[RegionId]map[uint32]TagValueId),
	}
}

// Encode converts a road object's local tag ids (from region) into a
// dictionary-indexed BitSet, lazily resolving and registering previously
// unseen (tag,value) pairs.
func (rt *RegionTable) Encode(region RegionId, localIDs []uint32, resolve Resolver) *BitSet {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	translation := rt.cache[region]
	if translation == nil {
		translation = make(map[uint32]TagValueId)
		rt.cache[region] = translation
	}

	b := NewBitSet(uint32(rt.dict.Len()))
	for _, local := range localIDs {
		id, ok := translation[local]
		if !ok {
			tag, value := resolve(local)
			id = rt.dict.Register(tag, value)
			translation[local] = id
		}
		b.Set(id)
	}
	return b
}
