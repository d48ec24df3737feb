package reconcile

import (
	"sync"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/match"
	"shop-helper/internal/models"
)

const recentLogSize = 100

// Policy holds the confidence knobs for a resolution. Threshold is the score
// floor passed to the resolver; AcceptMargin is how far the best fuzzy
// candidate must lead the runner-up before it is accepted without asking.
type Policy struct {
	Threshold    int
	AcceptMargin int
}

// Resolution is the terminal state reported for one observation. The engine
// never mutates stock or price; any ledger change after an accepted
// resolution is an explicit caller operation.
type Resolution struct {
	State      string                  `json:"state"`
	RawText    string                  `json:"raw_text"`
	CapturedAt time.Time               `json:"captured_at"`
	ResolvedAt time.Time               `json:"resolved_at"`
	Item       *models.CatalogItem     `json:"item,omitempty"`
	Score      int                     `json:"score,omitempty"`
	Candidates []models.MatchCandidate `json:"candidates,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
}

// Engine turns observations into terminal resolutions. Each observation is
// resolved once, synchronously; identical text always reaches the same state
// under the same catalog and policy.
type Engine struct {
	resolver *match.Resolver
	catalog  *catalog.Store
	policy   Policy

	mu     sync.Mutex
	recent []Resolution
}

// NewEngine creates an engine with the given default policy
func NewEngine(resolver *match.Resolver, cat *catalog.Store, policy Policy) *Engine {
	return &Engine{
		resolver: resolver,
		catalog:  cat,
		policy:   policy,
	}
}

// Resolve runs one observation through the state machine using the default policy
func (e *Engine) Resolve(obs models.Observation) Resolution {
	return e.ResolveWith(obs, e.policy)
}

// ResolveWith runs one observation with an explicit policy override
func (e *Engine) ResolveWith(obs models.Observation, policy Policy) Resolution {
	res := e.resolve(obs, policy)
	e.remember(res)
	return res
}

func (e *Engine) resolve(obs models.Observation, policy Policy) Resolution {
	res := Resolution{
		RawText:    obs.RawText,
		CapturedAt: obs.CapturedAt,
		ResolvedAt: time.Now().UTC(),
	}

	if catalog.Normalize(obs.RawText) == "" {
		res.State = models.ResolutionRejected
		res.Reason = "observation empty after normalization"
		return res
	}

	outcome := e.resolver.Resolve(obs.RawText, policy.Threshold)

	switch outcome.Kind {
	case match.KindExact:
		item := outcome.Item
		res.State = models.ResolutionAccepted
		res.Item = &item
		res.Score = 100

	case match.KindFuzzy:
		res.Candidates = outcome.Candidates

		// Threshold 0 is the training workflow: every item qualifies, so a
		// fuzzy result is only a suggestion list and the operator confirms.
		if policy.Threshold <= 0 {
			res.State = models.ResolutionPendingManualEntry
			res.Reason = "training mode, confirm or create item"
			return res
		}

		best := outcome.Candidates[0]
		accepted := len(outcome.Candidates) == 1 ||
			best.Score-outcome.Candidates[1].Score >= policy.AcceptMargin

		if accepted {
			if item, ok := e.catalog.LookupByID(best.ItemID); ok {
				res.State = models.ResolutionAccepted
				res.Item = &item
				res.Score = best.Score
				return res
			}
		}
		res.State = models.ResolutionAmbiguous

	case match.KindNoMatch:
		res.State = models.ResolutionPendingManualEntry
		res.Reason = "no catalog item reached the threshold"
	}

	return res
}

func (e *Engine) remember(res Resolution) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recent = append(e.recent, res)
	if len(e.recent) > recentLogSize {
		e.recent = e.recent[len(e.recent)-recentLogSize:]
	}
}

// Recent returns up to limit of the most recent resolutions, newest first.
// Audit view only; it never feeds back into resolution.
func (e *Engine) Recent(limit int) []Resolution {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 || limit > len(e.recent) {
		limit = len(e.recent)
	}

	out := make([]Resolution, 0, limit)
	for i := len(e.recent) - 1; i >= len(e.recent)-limit; i-- {
		out = append(out, e.recent[i])
	}
	return out
}
