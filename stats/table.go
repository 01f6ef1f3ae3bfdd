package stats

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/internal/collision"
	"github.com/arloliu/onebrc/internal/hash"
)

// initialTableCapacity sizes a new table for a typical station list.
const initialTableCapacity = 1024

type entry struct {
	key string
	agg Aggregate
}

// Pair is one key with its aggregate, as produced by Table.SortedPairs.
type Pair struct {
	Key       string
	Aggregate Aggregate
}

// Table maps record keys to their aggregates.
type Table struct {
	entries      map[uint64]*entry // Digest → entry of the key that first claimed it
	overflow     map[string]*entry // Keys whose digest was already claimed by another key
	tracker      *collision.Tracker
	digest       func([]byte) uint64
	digestString func(string) uint64 // Must agree with digest on the same key text
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:      make(map[uint64]*entry, initialTableCapacity),
		overflow:     make(map[string]*entry),
		tracker:      collision.NewTracker(),
		digest:       hash.Sum,
		digestString: hash.SumString,
	}
}

// LookupOrCreate returns the aggregate for key, inserting an identity
// aggregate on first sight. The key bytes are copied only on insertion, so a
// caller may pass a slice of a reused read buffer.
//
// The returned pointer stays valid until the table is merged into another one.
func (t *Table) LookupOrCreate(key []byte) *Aggregate {
	d := t.digest(key)

	e, ok := t.entries[d]
	if !ok {
		e = &entry{key: string(key), agg: NewAggregate()}
		t.entries[d] = e

		return &e.agg
	}
	if e.key == string(key) {
		return &e.agg
	}

	return t.lookupOverflow(d, e.key, key)
}

func (t *Table) lookupOverflow(d uint64, owner string, key []byte) *Aggregate {
	if e, ok := t.overflow[string(key)]; ok {
		return &e.agg
	}

	e := &entry{key: string(key), agg: NewAggregate()}
	t.overflow[e.key] = e
	t.tracker.Record(d, owner, e.key)

	return &e.agg
}

// Get returns the aggregate stored for key.
func (t *Table) Get(key string) (Aggregate, bool) {
	if e := t.find(key); e != nil {
		return e.agg, true
	}

	return Aggregate{}, false
}

func (t *Table) find(key string) *entry {
	e, ok := t.entries[t.digestString(key)]
	if !ok {
		return nil
	}
	if e.key == key {
		return e
	}

	return t.overflow[key]
}

// insert moves e into the table, or merges it if the key is already present.
func (t *Table) insert(e *entry) {
	if dst := t.find(e.key); dst != nil {
		dst.agg.Merge(e.agg)
		return
	}

	d := t.digestString(e.key)
	if owner, ok := t.entries[d]; ok {
		t.overflow[e.key] = e
		t.tracker.Record(d, owner.key, e.key)

		return
	}
	t.entries[d] = e
}

// Merge folds other into t and leaves other empty.
//
// Keys present in both tables have their aggregates merged elementwise; keys
// only in other are moved over unchanged. Merge is associative and
// commutative, so tables may be reduced in any order.
func (t *Table) Merge(other *Table) {
	if other == nil || other == t {
		return
	}

	for _, e := range other.entries {
		t.insert(e)
	}
	for _, e := range other.overflow {
		t.insert(e)
	}

	other.Reset()
}

// MergeChecked is Merge for tables of unbounded origin, such as snapshots.
// When a merged count would exceed math.MaxUint32 it returns
// errs.ErrCountOverflow naming the key and leaves both tables unchanged.
func (t *Table) MergeChecked(other *Table) error {
	if other == nil || other == t {
		return nil
	}

	if err := checkMerge(t, other.entries); err != nil {
		return err
	}
	if err := checkMerge(t, other.overflow); err != nil {
		return err
	}
	t.Merge(other)

	return nil
}

func checkMerge[K comparable](dst *Table, src map[K]*entry) error {
	for _, e := range src {
		if d := dst.find(e.key); d != nil && !d.agg.CanMerge(e.agg) {
			return fmt.Errorf("%w: key %q has %d + %d records", errs.ErrCountOverflow, e.key, d.agg.Count, e.agg.Count)
		}
	}

	return nil
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.entries) + len(t.overflow)
}

// Records returns the total number of measurements across all keys.
func (t *Table) Records() uint64 {
	var n uint64
	for _, e := range t.entries {
		n += uint64(e.agg.Count)
	}
	for _, e := range t.overflow {
		n += uint64(e.agg.Count)
	}

	return n
}

// Collisions returns the digest collisions detected while building the table.
// Colliding keys are kept apart; the list is informational.
func (t *Table) Collisions() []collision.Collision {
	return t.tracker.Collisions()
}

// HasCollisions reports whether any two keys of the table share a digest.
func (t *Table) HasCollisions() bool {
	return t.tracker.HasCollision()
}

// CollisionCount returns the number of keys that were diverted to
// exact-text lookup because their digest was taken.
func (t *Table) CollisionCount() int {
	return t.tracker.Count()
}

// SortedPairs returns every key with its aggregate in byte-lexicographic key order.
func (t *Table) SortedPairs() []Pair {
	pairs := make([]Pair, 0, t.Len())
	for _, e := range t.entries {
		pairs = append(pairs, Pair{Key: e.key, Aggregate: e.agg})
	}
	for _, e := range t.overflow {
		pairs = append(pairs, Pair{Key: e.key, Aggregate: e.agg})
	}

	slices.SortFunc(pairs, func(a, b Pair) int {
		return strings.Compare(a.Key, b.Key)
	})

	return pairs
}

// Reset removes all keys.
func (t *Table) Reset() {
	clear(t.entries)
	clear(t.overflow)
	t.tracker.Reset()
}
