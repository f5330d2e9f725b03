package mutctx

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMutationTable_EntryCount(t *testing.T) {
	tests := []struct {
		flank int
		want  int
	}{
		{0, 6},
		{1, 96},
		{2, 1536},
	}

	for _, tt := range tests {
		table, err := NewMutationTable[int64](tt.flank)
		require.NoError(t, err)
		assert.Equal(t, tt.want, table.Len(), "flank %d", tt.flank)
		assert.Equal(t, tt.flank, table.Flank())
	}
}

func TestNewSequenceTable_EntryCount(t *testing.T) {
	for flank, want := range []int{2, 32, 512} {
		table, err := NewSequenceTable[float64](flank)
		require.NoError(t, err)
		assert.Equal(t, want, table.Len(), "flank %d", flank)
	}
}

func TestNewMutationTable_FlankBounds(t *testing.T) {
	_, err := NewMutationTable[int64](-1)
	assert.Error(t, err)
	_, err = NewMutationTable[int64](MaxFlank + 1)
	assert.Error(t, err)
}

// The pure predicate filter must select exactly the keys that first-seen-wins
// insertion over the enumeration order would keep.
func TestMutationKeys_MatchesFirstSeenInsertion(t *testing.T) {
	for flank := 0; flank <= 2; flank++ {
		seen := make(map[string]bool)
		var firstSeen []string
		for _, key := range MutationCandidates(flank) {
			if IsSelfMutation(key) {
				continue
			}
			rc, err := ReverseComplement(key)
			require.NoError(t, err)
			if !seen[rc] {
				seen[key] = true
				firstSeen = append(firstSeen, key)
			}
		}

		keys, err := MutationKeys(flank)
		require.NoError(t, err)
		assert.Equal(t, firstSeen, keys, "flank %d", flank)
	}
}

func TestMutationKeys_NoReverseComplementPairs(t *testing.T) {
	table, err := NewMutationTable[int64](2)
	require.NoError(t, err)

	for _, key := range table.Keys() {
		rc, err := ReverseComplement(key)
		require.NoError(t, err)
		require.False(t, table.Has(rc), "both %s and %s in table", key, rc)
		require.False(t, IsSelfMutation(key))
	}
}

func TestMutationKeys_Order(t *testing.T) {
	keys, err := MutationKeys(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A->C", "A->G", "A->T", "C->A", "C->G", "C->T"}, keys)
	assert.True(t, sort.StringsAreSorted(keys))
}

func TestTable_Canonical(t *testing.T) {
	table, err := NewMutationTable[int64](1)
	require.NoError(t, err)

	k, err := table.Canonical("ACG->T")
	require.NoError(t, err)
	assert.Equal(t, "ACG->T", k)

	k, err = table.Canonical("CGT->A")
	require.NoError(t, err)
	assert.Equal(t, "ACG->T", k)

	k, err = Canonicalize("CGT->A", table)
	require.NoError(t, err)
	assert.Equal(t, "ACG->T", k)
}

func TestTable_Canonical_InvariantViolation(t *testing.T) {
	table, err := NewMutationTable[int64](1)
	require.NoError(t, err)

	// wrong flank width
	_, err = table.Canonical("AACGT->A")
	assert.ErrorIs(t, err, ErrNotInTable)

	// self mutation is never a table entry
	_, err = table.Canonical("ACG->C")
	assert.ErrorIs(t, err, ErrNotInTable)

	_, err = table.Canonical("ANG->T")
	assert.ErrorIs(t, err, ErrUnresolvedBase)
}

func TestTable_AddGetReset(t *testing.T) {
	table, err := NewMutationTable[int64](1)
	require.NoError(t, err)

	require.NoError(t, table.Add("ACG->T", 1))
	require.NoError(t, table.Add("CGT->A", 1))

	v, err := table.Get("ACG->T")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = table.Get("AAA->C")
	assert.ErrorIs(t, err, ErrUnassigned)
	v, err = table.Value("AAA->C")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	assert.Equal(t, 1, table.Assigned())

	n := table.Len()
	table.Reset()
	assert.Equal(t, n, table.Len())
	assert.Equal(t, 0, table.Assigned())
	v, err = table.Value("ACG->T")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestTable_SetProbability(t *testing.T) {
	table, err := NewSequenceTable[float64](1)
	require.NoError(t, err)

	require.NoError(t, table.Set("CGT", 0.25))
	p, err := table.Get("ACG")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p, 1e-12)

	_, err = table.Get("AAA")
	assert.ErrorIs(t, err, ErrUnassigned)
}

func TestTable_KeysSorted(t *testing.T) {
	table, err := NewMutationTable[int64](1)
	require.NoError(t, err)
	keys := table.Keys()
	assert.Len(t, keys, 96)
	assert.True(t, sort.StringsAreSorted(keys))
}
