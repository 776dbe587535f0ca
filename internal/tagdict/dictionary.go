// Package tagdict implements the process-lifetime tag dictionary: a dense
// (tag,value) -> id registry, the per-tag bit-set index derived from it, and
// the per-region translation cache that feeds the bit-set encoder.
package tagdict

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash"
)

// TagValueId is a dense id assigned to a (tag,value) pair in registration
// order. Ids are never reassigned or retired.
type TagValueId = uint32

// TagValue is a (tag,value) pair as it appears on a road or point.
type TagValue struct {
	Tag   string
	Value string
}

// Dictionary is the process-lifetime append-only (tag,value) -> id registry.
// Registration is monotonic and idempotent; bit positions are stable for the
// life of the process. Safe for concurrent use.
type Dictionary struct {
	mu       sync.RWMutex
	byKey    map[TagValue]TagValueId
	byID     []TagValue
	tagIndex map[string]*BitSet
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		byKey:    make(map[TagValue]TagValueId),
		tagIndex: make(map[string]*BitSet),
	}
}

// Register returns the id for (tag,value), assigning a new one on first
// sight. Idempotent: registering the same pair twice returns the same id.
func (d *Dictionary) Register(tag, value string) TagValueId {
	tv := TagValue{Tag: tag, Value: value}

	d.mu.RLock()
	if id, ok := d.byKey[tv]; ok {
		d.mu.RUnlock()
		return id
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.byKey[tv]; ok {
		return id
	}

	id := TagValueId(len(d.byID))
	d.byID = append(d.byID, tv)
	d.byKey[tv] = id

	idx := d.tagIndex[tag]
	if idx == nil {
		idx = NewBitSet(id + 1)
		d.tagIndex[tag] = idx
	}
	idx.Set(id)

	return id
}

// Lookup returns the id for (tag,value) if it has been registered.
func (d *Dictionary) Lookup(tag, value string) (TagValueId, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byKey[TagValue{Tag: tag, Value: value}]
	return id, ok
}

// Get returns the (tag,value) pair for an id. Panics if id is out of range,
// which would indicate a caller holding a TagValueId from a different
// dictionary instance.
func (d *Dictionary) Get(id TagValueId) TagValue {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID[id]
}

// TagIndex returns the bit-set of every id whose tag component equals tag.
// Returns nil if the tag has never been registered.
func (d *Dictionary) TagIndex(tag string) *BitSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tagIndex[tag]
}

// Len reports the number of distinct (tag,value) pairs registered.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// Fingerprint returns a 64-bit content hash of the dictionary's registration
// order, suitable for detecting whether state cached against a prior
// dictionary snapshot (e.g. a router's ruleToValue cache) is still valid
// after a config reload registers new pairs. Two dictionaries with the same
// fingerprint have registered the same (tag,value) pairs in the same order;
// a dictionary is never shrunk, so its fingerprint only ever changes by
// growing a previous one's prefix.
func (d *Dictionary) Fingerprint() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	h := xxhash.New()
	var buf [8]byte
	for _, tv := range d.byID {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(tv.Tag)))
		_, _ = h.Write(buf[:4])
		_, _ = h.Write([]byte(tv.Tag))
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(tv.Value)))
		_, _ = h.Write(buf[:4])
		_, _ = h.Write([]byte(tv.Value))
	}
	return h.Sum64()
}
