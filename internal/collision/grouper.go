package collision

import (
	"context"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/similarity"
)

// PairDecision records one judged pair for the review trail.
type PairDecision struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Verdict Verdict `json:"verdict"`
}

// Grouper builds owner groups from pairwise verdicts. Comparisons are
// independent and symmetric, so the pair matrix is evaluated in parallel;
// group assembly afterwards is deterministic union-find ordered by input
// position.
type Grouper struct {
	resolver    *Resolver
	concurrency int
}

// NewGrouper builds a Grouper. concurrency <= 0 means serial evaluation.
func NewGrouper(resolver *Resolver, concurrency int) *Grouper {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Grouper{resolver: resolver, concurrency: concurrency}
}

// nameGate is the cheap levenshtein prefilter run before the full weighted
// comparison. Pairs whose display names are this dissimilar are recorded
// as different owners without the expensive detailed compare.
func (g *Grouper) nameGate(a, b *model.Entity) (float64, bool) {
	na := similarity.Normalize(a.Name.Display())
	nb := similarity.Normalize(b.Name.Display())
	if na == "" || nb == "" {
		return 0, false
	}
	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	sim := 1 - float64(dist)/float64(maxLen)
	return sim, sim < g.resolver.t.NameFloor
}

// Group evaluates all pairs and merges same-owner entities into groups.
// Every judged pair is returned as the decision trail. One failed pair
// never aborts the batch.
func (g *Grouper) Group(ctx context.Context, entities []*model.Entity) ([]model.EntityGroup, []PairDecision, error) {
	n := len(entities)
	type pair struct{ i, j int }

	var pairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	decisions := make([]PairDecision, len(pairs))
	var mu sync.Mutex
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for idx, p := range pairs {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return eris.Wrap(egCtx.Err(), "collision: group cancelled")
			}
			a, b := entities[p.i], entities[p.j]

			var v Verdict
			if gateSim, rejected := g.nameGate(a, b); rejected {
				v = Verdict{
					Decision:       DifferentOwner,
					Comparable:     true,
					NameSimilarity: gateSim,
					Reasoning:      "name prefilter rejected the pair before full comparison",
				}
			} else {
				v = g.resolver.Resolve(a, b)
			}

			decisions[idx] = PairDecision{A: a.Location.Key(), B: b.Location.Key(), Verdict: v}
			if v.Decision == SameOwner {
				mu.Lock()
				union(p.i, p.j)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	// Assemble groups in input order; the founder is the earliest member.
	byRoot := make(map[int]*model.EntityGroup)
	var groups []*model.EntityGroup
	for i := 0; i < n; i++ {
		root := find(i)
		grp, ok := byRoot[root]
		if !ok {
			grp = &model.EntityGroup{
				ID:      uuid.New().String(),
				Index:   len(groups),
				Founder: entities[root].Location.Key(),
			}
			byRoot[root] = grp
			groups = append(groups, grp)
		}
		grp.Members = append(grp.Members, entities[i].Location.Key())
	}

	out := make([]model.EntityGroup, len(groups))
	for i, grp := range groups {
		out[i] = *grp
	}

	zap.L().Info("collision: grouping complete",
		zap.Int("entities", n),
		zap.Int("pairs", len(pairs)),
		zap.Int("groups", len(out)),
	)

	return out, decisions, nil
}
