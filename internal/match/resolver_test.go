package match

import (
	"testing"

	"shop-helper/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, names ...string) *catalog.Store {
	t.Helper()
	cat := catalog.NewStore()
	for _, n := range names {
		_, err := cat.Create(n, nil)
		require.NoError(t, err)
	}
	return cat
}

func TestResolveExact(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword", "Red Whip")
	r := NewResolver(cat)

	out := r.Resolve("  MAPLE   sword ", 70)
	require.Equal(t, KindExact, out.Kind)
	assert.Equal(t, "Maple Sword", out.Item.DisplayName)
	assert.Empty(t, out.Candidates)
}

func TestResolveTypoFuzzy(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword", "Red Whip")
	r := NewResolver(cat)

	out := r.Resolve("Maple Sowrd", 70)
	require.Equal(t, KindFuzzy, out.Kind)
	require.NotEmpty(t, out.Candidates)

	best := out.Candidates[0]
	item, ok := cat.LookupByID(best.ItemID)
	require.True(t, ok)
	assert.Equal(t, "Maple Sword", item.DisplayName)
	assert.GreaterOrEqual(t, best.Score, 70)
	assert.Less(t, best.Score, 100)
}

func TestResolveHighThresholdNoMatch(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword")
	r := NewResolver(cat)

	out := r.Resolve("Maple Sowrd", 99)
	assert.Equal(t, KindNoMatch, out.Kind)
}

func TestResolveEmptyObservation(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword")
	r := NewResolver(cat)

	for _, text := range []string{"", "   ", "\t\n", "|~`"} {
		for _, threshold := range []int{0, 50, 100} {
			out := r.Resolve(text, threshold)
			assert.Equal(t, KindNoMatch, out.Kind, "text %q threshold %d", text, threshold)
		}
	}
}

func TestResolveZeroThresholdReturnsWholeCatalog(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword", "Red Whip", "Blue Whip")
	r := NewResolver(cat)

	out := r.Resolve("zzzzzz", 0)
	require.Equal(t, KindFuzzy, out.Kind)
	assert.Len(t, out.Candidates, 3)
}

func TestResolveDeterminism(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword", "Maple Shield", "Maple Wand")
	r := NewResolver(cat)

	first := r.Resolve("Maple S", 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Resolve("Maple S", 0))
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword", "Maple Shield", "Red Whip", "Blue Whip")
	r := NewResolver(cat)

	prev := len(cat.AllItems()) + 1
	for threshold := 0; threshold <= 100; threshold += 10 {
		out := r.Resolve("maple swrd", threshold)
		n := 0
		if out.Kind == KindFuzzy {
			n = len(out.Candidates)
		}
		assert.LessOrEqual(t, n, prev, "threshold %d", threshold)
		prev = n
	}
}

func TestTieBreakShorterNameThenInsertion(t *testing.T) {
	cat := catalog.NewStore()
	longer, err := cat.Create("abx", nil)
	require.NoError(t, err)
	older, err := cat.Create("ab", nil)
	require.NoError(t, err)
	newer, err := cat.Create("ad", nil)
	require.NoError(t, err)

	r := NewResolver(cat)
	out := r.Resolve("ac", 30)
	require.Equal(t, KindFuzzy, out.Kind)
	require.Len(t, out.Candidates, 3)

	// "ab" and "ad" score equally; the shorter-name rule cannot split them,
	// so insertion order does. "abx" scores lower and sorts last.
	assert.Equal(t, out.Candidates[0].Score, out.Candidates[1].Score)
	assert.Equal(t, older.ID, out.Candidates[0].ItemID)
	assert.Equal(t, newer.ID, out.Candidates[1].ItemID)
	assert.Equal(t, longer.ID, out.Candidates[2].ItemID)
}

func TestResolverIsStateless(t *testing.T) {
	cat := seedCatalog(t, "Maple Sword")
	r := NewResolver(cat)

	a := r.Resolve("Maple Sowrd", 70)
	b := r.Resolve("Maple Sowrd", 70)
	assert.Equal(t, a, b)
}

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"maple sword", "maple sword", 100},
		{"", "maple sword", 0},
		{"maple sword", "", 0},
		{"abcd", "abce", 75},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Ratio(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}

	// score is symmetric and bounded
	assert.Equal(t, Ratio("maple sowrd", "maple sword"), Ratio("maple sword", "maple sowrd"))
	score := Ratio("maple sowrd", "maple sword")
	assert.GreaterOrEqual(t, score, 70)
	assert.Less(t, score, 100)
}
