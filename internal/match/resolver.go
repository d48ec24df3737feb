package match

import (
	"sort"

	"shop-helper/internal/catalog"
	"shop-helper/internal/models"

	"github.com/agnivade/levenshtein"
)

// OutcomeKind discriminates the resolver result variants
type OutcomeKind int

const (
	// KindExact means the normalized observation equals a catalog normalized name
	KindExact OutcomeKind = iota
	// KindFuzzy means one or more candidates reached the threshold
	KindFuzzy
	// KindNoMatch means no candidate reached the threshold
	KindNoMatch
)

func (k OutcomeKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindFuzzy:
		return "fuzzy"
	default:
		return "no_match"
	}
}

// Outcome is the resolver result for a single observation
type Outcome struct {
	Kind       OutcomeKind
	Item       models.CatalogItem      // set when Kind == KindExact
	Candidates []models.MatchCandidate // best-first, set when Kind == KindFuzzy
}

// Resolver scores observations against the catalog. It is stateless with
// respect to observation history; the same text always resolves the same way
// against the same catalog.
type Resolver struct {
	catalog *catalog.Store
}

// NewResolver creates a resolver over the given catalog
func NewResolver(cat *catalog.Store) *Resolver {
	return &Resolver{catalog: cat}
}

// Resolve matches the observation text against every catalog item.
// Threshold is a score floor in [0,100]; at 0 every item qualifies, which is
// how the manual training workflow surfaces suggestions for uncataloged items.
func (r *Resolver) Resolve(observationText string, threshold int) Outcome {
	norm := catalog.Normalize(observationText)
	if norm == "" {
		return Outcome{Kind: KindNoMatch}
	}

	if item, ok := r.catalog.LookupByNormalizedName(norm); ok {
		return Outcome{Kind: KindExact, Item: item}
	}

	items := r.catalog.AllItems()

	type scored struct {
		candidate models.MatchCandidate
		nameLen   int
		seq       int64
	}

	candidates := make([]scored, 0, len(items))
	for _, item := range items {
		score := Ratio(norm, item.NormalizedName)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{
			candidate: models.MatchCandidate{ItemID: item.ID, Score: score},
			nameLen:   len(item.NormalizedName),
			seq:       item.Seq,
		})
	}

	if len(candidates) == 0 {
		return Outcome{Kind: KindNoMatch}
	}

	// Deterministic order: score desc, then shorter name, then insertion order.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].candidate.Score != candidates[j].candidate.Score {
			return candidates[i].candidate.Score > candidates[j].candidate.Score
		}
		if candidates[i].nameLen != candidates[j].nameLen {
			return candidates[i].nameLen < candidates[j].nameLen
		}
		return candidates[i].seq < candidates[j].seq
	})

	out := make([]models.MatchCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = c.candidate
	}
	return Outcome{Kind: KindFuzzy, Candidates: out}
}

// Ratio computes a Levenshtein-derived similarity in [0,100] between two
// already-normalized strings.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}

	dist := levenshtein.ComputeDistance(a, b)
	return (100*(longer-dist) + longer/2) / longer
}
