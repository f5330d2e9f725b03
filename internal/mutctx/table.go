package mutctx

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotInTable means neither a key nor its reverse complement is a table
	// entry. It signals a flank-width mismatch or a malformed table.
	ErrNotInTable = errors.New("context not in table")
	// ErrUnassigned is returned by Get for entries never written since the
	// table was built or reset.
	ErrUnassigned = errors.New("context value not assigned")
)

// Number is the value type of a Table: counts or probabilities.
type Number interface {
	~int64 | ~float64
}

// Table maps canonical context keys to values. Its entry set is fixed at
// construction; only values change afterwards.
type Table[V Number] struct {
	flank    int
	values   map[string]V
	assigned map[string]bool
}

// NewMutationTable builds a table over the canonical mutation keys
// ("ACG->T") of the given flank width.
func NewMutationTable[V Number](flank int) (*Table[V], error) {
	keys, err := MutationKeys(flank)
	if err != nil {
		return nil, err
	}
	return newTable[V](flank, keys), nil
}

// NewSequenceTable builds a table over canonical bare sequence keys ("ACG").
func NewSequenceTable[V Number](flank int) (*Table[V], error) {
	keys, err := SequenceKeys(flank)
	if err != nil {
		return nil, err
	}
	return newTable[V](flank, keys), nil
}

func newTable[V Number](flank int, keys []string) *Table[V] {
	t := &Table[V]{
		flank:    flank,
		values:   make(map[string]V, len(keys)),
		assigned: make(map[string]bool, len(keys)),
	}
	for _, k := range keys {
		t.values[k] = 0
	}
	return t
}

// Flank returns the flank width the table was built for.
func (t *Table[V]) Flank() int {
	return t.flank
}

// Len returns the number of canonical entries.
func (t *Table[V]) Len() int {
	return len(t.values)
}

// Has reports whether key is itself a table entry.
func (t *Table[V]) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Canonical returns the table entry representing key: key itself if present,
// otherwise its reverse complement. Keys with unresolved bases fail with
// ErrUnresolvedBase; keys absent in both orientations fail with ErrNotInTable.
func (t *Table[V]) Canonical(key string) (string, error) {
	if t.Has(key) {
		return key, nil
	}
	rc, err := ReverseComplement(key)
	if err != nil {
		return "", err
	}
	if t.Has(rc) {
		return rc, nil
	}
	return "", fmt.Errorf("%w: %s (flank %d)", ErrNotInTable, key, t.flank)
}

// Canonicalize returns the canonical form of key in table.
func Canonicalize[V Number](key string, table *Table[V]) (string, error) {
	return table.Canonical(key)
}

// Add canonicalizes key and adds delta to its value.
func (t *Table[V]) Add(key string, delta V) error {
	k, err := t.Canonical(key)
	if err != nil {
		return err
	}
	t.values[k] += delta
	t.assigned[k] = true
	return nil
}

// Set canonicalizes key and overwrites its value.
func (t *Table[V]) Set(key string, v V) error {
	k, err := t.Canonical(key)
	if err != nil {
		return err
	}
	t.values[k] = v
	t.assigned[k] = true
	return nil
}

// Get canonicalizes key and returns its value. Entries never written return
// ErrUnassigned.
func (t *Table[V]) Get(key string) (V, error) {
	k, err := t.Canonical(key)
	if err != nil {
		return 0, err
	}
	if !t.assigned[k] {
		return 0, fmt.Errorf("%w: %s", ErrUnassigned, k)
	}
	return t.values[k], nil
}

// Value returns the stored value of key (in either orientation), treating
// unassigned entries as zero.
func (t *Table[V]) Value(key string) (V, error) {
	k, err := t.Canonical(key)
	if err != nil {
		return 0, err
	}
	return t.values[k], nil
}

// Assigned returns the number of entries written since construction or the
// last Reset.
func (t *Table[V]) Assigned() int {
	return len(t.assigned)
}

// Keys returns the canonical keys in sorted order.
func (t *Table[V]) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset sets every value to zero and clears assignment marks.
func (t *Table[V]) Reset() {
	for k := range t.values {
		t.values[k] = 0
	}
	clear(t.assigned)
}
