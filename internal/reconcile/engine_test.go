package reconcile

import (
	"testing"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/match"
	"shop-helper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, policy Policy, names ...string) (*Engine, *catalog.Store) {
	t.Helper()
	cat := catalog.NewStore()
	for _, n := range names {
		_, err := cat.Create(n, nil)
		require.NoError(t, err)
	}
	return NewEngine(match.NewResolver(cat), cat, policy), cat
}

func obs(text string) models.Observation {
	return models.Observation{RawText: text, CapturedAt: time.Now().UTC()}
}

func TestResolveExactAccepted(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	res := e.Resolve(obs("maple SWORD"))
	assert.Equal(t, models.ResolutionAccepted, res.State)
	require.NotNil(t, res.Item)
	assert.Equal(t, "Maple Sword", res.Item.DisplayName)
	assert.Equal(t, 100, res.Score)
}

func TestResolveTypoAccepted(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword", "Red Whip")

	res := e.Resolve(obs("Maple Sowrd"))
	assert.Equal(t, models.ResolutionAccepted, res.State)
	require.NotNil(t, res.Item)
	assert.Equal(t, "Maple Sword", res.Item.DisplayName)
	assert.GreaterOrEqual(t, res.Score, 70)
	assert.Less(t, res.Score, 100)
}

func TestResolveAmbiguousWithinMargin(t *testing.T) {
	// Two near-identical names: both reach the threshold, neither leads by
	// the margin, so the engine must not guess.
	e, _ := newEngine(t, Policy{Threshold: 60, AcceptMargin: 5}, "Maple Sword A", "Maple Sword B")

	res := e.Resolve(obs("Maple Sword C"))
	assert.Equal(t, models.ResolutionAmbiguous, res.State)
	assert.Nil(t, res.Item)
	assert.Len(t, res.Candidates, 2)
}

func TestResolveNoMatchPendingManualEntry(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	res := e.Resolve(obs("zzzzzzzzzz"))
	assert.Equal(t, models.ResolutionPendingManualEntry, res.State)
	assert.Nil(t, res.Item)
	assert.Empty(t, res.Candidates)
}

func TestResolveEmptyRejected(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	for _, text := range []string{"", "   ", "|~`"} {
		res := e.Resolve(obs(text))
		assert.Equal(t, models.ResolutionRejected, res.State, "text %q", text)
		assert.NotEmpty(t, res.Reason)
	}
}

func TestResolveTrainingModePendingManualEntry(t *testing.T) {
	// At threshold 0 every item is a candidate; non-exact text must go to the
	// operator with suggestions, never auto-accept.
	e, _ := newEngine(t, Policy{Threshold: 0, AcceptMargin: 5}, "Maple Sword", "Red Whip")

	res := e.Resolve(obs("Blue Snail Shell"))
	assert.Equal(t, models.ResolutionPendingManualEntry, res.State)
	assert.Len(t, res.Candidates, 2)

	// exact matches still accept in training mode
	res = e.Resolve(obs("Maple Sword"))
	assert.Equal(t, models.ResolutionAccepted, res.State)
}

func TestResolveHighThresholdNeverExactForTypo(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 99, AcceptMargin: 5}, "Maple Sword")

	res := e.Resolve(obs("Maple Sowrd"))
	assert.Contains(t,
		[]string{models.ResolutionPendingManualEntry, models.ResolutionAmbiguous},
		res.State)
	assert.NotEqual(t, models.ResolutionAccepted, res.State)
}

func TestResolveIdempotent(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword", "Maple Shield")

	a := e.Resolve(obs("Maple Swrd"))
	b := e.Resolve(obs("Maple Swrd"))
	assert.Equal(t, a.State, b.State)
	assert.Equal(t, a.Candidates, b.Candidates)
	assert.Equal(t, a.Score, b.Score)
}

func TestResolveWithPolicyOverride(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	res := e.ResolveWith(obs("Maple Sowrd"), Policy{Threshold: 99, AcceptMargin: 5})
	assert.Equal(t, models.ResolutionPendingManualEntry, res.State)
}

func TestRecentLog(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	e.Resolve(obs("Maple Sword"))
	e.Resolve(obs("zzzz"))
	e.Resolve(obs(""))

	recent := e.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, models.ResolutionRejected, recent[0].State)
	assert.Equal(t, models.ResolutionPendingManualEntry, recent[1].State)

	all := e.Recent(0)
	assert.Len(t, all, 3)
}

func TestRecentLogCapped(t *testing.T) {
	e, _ := newEngine(t, Policy{Threshold: 70, AcceptMargin: 5}, "Maple Sword")

	for i := 0; i < recentLogSize+20; i++ {
		e.Resolve(obs("Maple Sword"))
	}
	assert.Len(t, e.Recent(0), recentLogSize)
}
