// Package collision turns pairwise entity comparisons into same-owner
// verdicts and assembles entities into owner groups, keeping a
// human-reviewable decision trail for every pair it judges.
package collision

import (
	"fmt"

	"github.com/shoreham-data/reconcile-cli/internal/compare"
	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// Decision is the pairwise verdict.
type Decision string

const (
	SameOwner      Decision = "SAME_OWNER"
	DifferentOwner Decision = "DIFFERENT_OWNER"
)

// Thresholds configures the decision rule. SameOwner is applied to the
// contact-info component score; NameFloor is the cheap name-gate below
// which pairs are rejected without a full comparison during grouping.
type Thresholds struct {
	SameOwner float64 `json:"same_owner" mapstructure:"same_owner"`
	NameFloor float64 `json:"name_floor" mapstructure:"name_floor"`
}

// DefaultThresholds returns the standard decision thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{SameOwner: 0.87, NameFloor: 0.30}
}

// Verdict is the outcome of resolving one entity pair.
type Verdict struct {
	Decision          Decision            `json:"decision"`
	Comparable        bool                `json:"comparable"`
	OverallSimilarity float64             `json:"overall_similarity"`
	NameSimilarity    float64             `json:"name_similarity"`
	ContactSimilarity float64             `json:"contact_similarity"`
	MatchedMember     string              `json:"matched_member,omitempty"`
	Reasoning         string              `json:"reasoning"`
	Breakdown         []compare.Breakdown `json:"breakdown,omitempty"`
}

// Resolver applies thresholds on top of the entity comparator. Pure and
// idempotent; it never mutates its inputs.
type Resolver struct {
	cmp *compare.Comparator
	t   Thresholds
}

// New builds a Resolver. Zero thresholds fall back to the defaults.
func New(cmp *compare.Comparator, t Thresholds) *Resolver {
	def := DefaultThresholds()
	if t.SameOwner <= 0 {
		t.SameOwner = def.SameOwner
	}
	if t.NameFloor <= 0 {
		t.NameFloor = def.NameFloor
	}
	return &Resolver{cmp: cmp, t: t}
}

// Thresholds returns the resolver's active thresholds.
func (r *Resolver) Thresholds() Thresholds { return r.t }

// kindOf names an entity's kind for reasoning strings without
// dereferencing a nil entity.
func kindOf(e *model.Entity) string {
	if e == nil {
		return "nil"
	}
	return string(e.Kind)
}

// Resolve compares two entities in detailed mode and applies the
// same-owner decision rule to the contact-info component score.
func (r *Resolver) Resolve(e1, e2 *model.Entity) Verdict {
	out := r.cmp.Compare(e1, e2, true)
	if !out.Comparable {
		return Verdict{
			Decision:   DifferentOwner,
			Comparable: false,
			Reasoning: fmt.Sprintf("no comparison rule for %s vs %s; treated as different owners",
				kindOf(e1), kindOf(e2)),
		}
	}

	v := Verdict{
		Comparable:        true,
		OverallSimilarity: out.Score,
		MatchedMember:     out.MatchedMember,
		Breakdown:         out.Breakdown,
	}
	for _, node := range out.Breakdown {
		switch node.Component {
		case "name":
			v.NameSimilarity = node.Similarity
		case "contact_info":
			v.ContactSimilarity = node.Similarity
		}
	}

	if v.ContactSimilarity >= r.t.SameOwner {
		v.Decision = SameOwner
		v.Reasoning = fmt.Sprintf("contact-info similarity %.3f met the %.2f same-owner threshold (name %.3f, overall %.3f)",
			v.ContactSimilarity, r.t.SameOwner, v.NameSimilarity, v.OverallSimilarity)
	} else {
		v.Decision = DifferentOwner
		v.Reasoning = fmt.Sprintf("contact-info similarity %.3f missed the %.2f same-owner threshold (name %.3f, overall %.3f)",
			v.ContactSimilarity, r.t.SameOwner, v.NameSimilarity, v.OverallSimilarity)
	}
	return v
}
