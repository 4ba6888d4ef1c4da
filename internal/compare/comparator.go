// Package compare implements the polymorphic entity comparator: a
// weighted, recursive field-by-field similarity over the entity variants,
// with an auditable breakdown tree in detailed mode.
package compare

import (
	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/similarity"
)

// Weights holds the base weight of every comparable component. Absent
// components are excluded and the remaining weights renormalized, so the
// effective weights always sum to 1.
type Weights struct {
	Name    float64 `json:"name" mapstructure:"name"`
	Contact float64 `json:"contact" mapstructure:"contact"`

	PrimaryAddress   float64 `json:"primary_address" mapstructure:"primary_address"`
	SecondaryAddress float64 `json:"secondary_address" mapstructure:"secondary_address"`

	StreetNumber float64 `json:"street_number" mapstructure:"street_number"`
	StreetName   float64 `json:"street_name" mapstructure:"street_name"`
	StreetType   float64 `json:"street_type" mapstructure:"street_type"`
	Unit         float64 `json:"unit" mapstructure:"unit"`
	City         float64 `json:"city" mapstructure:"city"`
	State        float64 `json:"state" mapstructure:"state"`
	Zip          float64 `json:"zip" mapstructure:"zip"`

	POBox float64 `json:"po_box" mapstructure:"po_box"`
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{
		Name:    0.5,
		Contact: 0.5,

		PrimaryAddress:   0.6,
		SecondaryAddress: 0.4,

		StreetNumber: 0.20,
		StreetName:   0.35,
		StreetType:   0.05,
		Unit:         0.05,
		City:         0.15,
		State:        0.05,
		Zip:          0.15,

		POBox: 0.80,
	}
}

// Breakdown is one node of the audit tree: a component's similarity, its
// base and renormalized weight, and its contribution to the parent score.
type Breakdown struct {
	Component    string      `json:"component"`
	Similarity   float64     `json:"similarity"`
	Weight       float64     `json:"weight"`
	ActualWeight float64     `json:"actual_weight"`
	Contribution float64     `json:"contribution"`
	Children     []Breakdown `json:"children,omitempty"`
}

// Outcome is the result of comparing two entities. Comparable false means
// no comparison rule exists for the variant pair, which callers must keep
// distinct from a low score.
type Outcome struct {
	Comparable    bool        `json:"comparable"`
	Score         float64     `json:"score"`
	MatchedMember string      `json:"matched_member,omitempty"`
	Breakdown     []Breakdown `json:"breakdown,omitempty"`
}

// NotComparable is the explicit result for variant pairs without a rule.
func NotComparable() Outcome {
	return Outcome{Comparable: false}
}

// Comparator compares entities using an injected string scorer and weight
// configuration. Pure and safe for concurrent use.
type Comparator struct {
	scorer *similarity.Scorer
	w      Weights
}

// New builds a Comparator. Zero top-level weights fall back to defaults.
func New(scorer *similarity.Scorer, w Weights) *Comparator {
	def := DefaultWeights()
	if w.Name <= 0 && w.Contact <= 0 {
		w.Name, w.Contact = def.Name, def.Contact
	}
	if w.PrimaryAddress <= 0 && w.SecondaryAddress <= 0 {
		w.PrimaryAddress, w.SecondaryAddress = def.PrimaryAddress, def.SecondaryAddress
	}
	if w.StreetName <= 0 {
		w.StreetNumber = def.StreetNumber
		w.StreetName = def.StreetName
		w.StreetType = def.StreetType
		w.Unit = def.Unit
		w.City = def.City
		w.State = def.State
		w.Zip = def.Zip
	}
	if w.POBox <= 0 {
		w.POBox = def.POBox
	}
	return &Comparator{scorer: scorer, w: w}
}

// component is an intermediate scored component before aggregation.
type component struct {
	name     string
	sim      float64
	weight   float64
	present  bool
	children []Breakdown
}

// aggregate renormalizes the weights of present components and combines
// their similarities into one score. With detailed set it also emits the
// breakdown nodes.
func aggregate(parts []component, detailed bool) (float64, []Breakdown) {
	var weightSum float64
	for _, p := range parts {
		if p.present {
			weightSum += p.weight
		}
	}
	if weightSum == 0 {
		return 0, nil
	}

	var score float64
	var nodes []Breakdown
	for _, p := range parts {
		if !p.present {
			continue
		}
		actual := p.weight / weightSum
		contribution := p.sim * actual
		score += contribution
		if detailed {
			nodes = append(nodes, Breakdown{
				Component:    p.name,
				Similarity:   p.sim,
				Weight:       p.weight,
				ActualWeight: actual,
				Contribution: contribution,
				Children:     p.children,
			})
		}
	}
	return score, nodes
}

// Compare scores two entities. Dispatch is exhaustive over the variant
// pairs: same-shaped pairs compare component-wise, Individual against
// Household takes the best-matching member, and everything else is
// explicitly not comparable.
func (c *Comparator) Compare(e1, e2 *model.Entity, detailed bool) Outcome {
	if e1 == nil || e2 == nil {
		return NotComparable()
	}

	switch {
	case e1.Kind == e2.Kind:
		return c.compareFlat(e1, e2, detailed)
	case organizationShaped(e1.Kind) && organizationShaped(e2.Kind):
		// Business and legal-construct records share the same shape and
		// often denote the same vehicle under a different suffix.
		return c.compareFlat(e1, e2, detailed)
	case e1.Kind == model.KindIndividual && e2.Kind == model.KindHousehold:
		return c.compareMember(e1, e2, detailed)
	case e1.Kind == model.KindHousehold && e2.Kind == model.KindIndividual:
		return c.compareMember(e2, e1, detailed)
	default:
		return NotComparable()
	}
}

func organizationShaped(k model.EntityKind) bool {
	return k == model.KindBusiness || k == model.KindLegalConstruct
}

// compareFlat handles same-shaped pairs: name plus contact info, weighted
// and renormalized over whichever components both sides carry.
func (c *Comparator) compareFlat(e1, e2 *model.Entity, detailed bool) Outcome {
	parts := make([]component, 0, 2)

	nameSim, namePresent := c.compareNames(e1.Name, e2.Name)
	parts = append(parts, component{
		name:    "name",
		sim:     nameSim,
		weight:  c.w.Name,
		present: namePresent,
	})

	contactSim, contactNodes, contactPresent := c.compareContacts(e1.Contact, e2.Contact, detailed)
	parts = append(parts, component{
		name:     "contact_info",
		sim:      contactSim,
		weight:   c.w.Contact,
		present:  contactPresent,
		children: contactNodes,
	})

	score, nodes := aggregate(parts, detailed)
	return Outcome{Comparable: true, Score: score, Breakdown: nodes}
}

// compareMember scores an individual against every household member and
// reports the maximum, retaining which member produced it. Members carry
// the household's contact info.
func (c *Comparator) compareMember(ind, hh *model.Entity, detailed bool) Outcome {
	if len(hh.Members) == 0 {
		return NotComparable()
	}

	var best Outcome
	first := true
	for i := range hh.Members {
		m := hh.Members[i]
		if m.Contact == nil {
			m.Contact = hh.Contact
		}
		out := c.compareFlat(ind, &m, detailed)
		if first || out.Score > best.Score {
			out.MatchedMember = m.Name.Display()
			if m.Location.ID != "" {
				out.MatchedMember = m.Location.Key()
			}
			best = out
			first = false
		}
	}
	return best
}

// compareNames compares two names, tolerating inverted first/last order
// by taking the best of the straight and swapped pairings. Unparsed names
// fall back to whole-string similarity.
func (c *Comparator) compareNames(n1, n2 model.Name) (float64, bool) {
	d1, d2 := n1.Display(), n2.Display()
	if d1 == "" || d2 == "" {
		return 0, false
	}

	if n1.Parsed() && n2.Parsed() {
		straight := (c.scorer.Similarity(n1.First.Value, n2.First.Value) +
			c.scorer.Similarity(n1.Last.Value, n2.Last.Value)) / 2
		swapped := (c.scorer.Similarity(n1.First.Value, n2.Last.Value) +
			c.scorer.Similarity(n1.Last.Value, n2.First.Value)) / 2
		if swapped > straight {
			return swapped, true
		}
		return straight, true
	}

	return c.scorer.Similarity(d1, d2), true
}

// compareContacts compares primary addresses directly and secondary
// address lists by best-match: each address on the shorter side takes its
// best counterpart on the other side, and those maxima are averaged. That
// models "do these owners share at least one known address" instead of
// requiring positional alignment.
func (c *Comparator) compareContacts(c1, c2 *model.ContactInfo, detailed bool) (float64, []Breakdown, bool) {
	if c1 == nil || c2 == nil {
		return 0, nil, false
	}

	parts := make([]component, 0, 2)

	if c1.Primary != nil && c2.Primary != nil {
		sim, nodes := c.compareAddresses(*c1.Primary, *c2.Primary, detailed)
		parts = append(parts, component{
			name: "primary_address", sim: sim, weight: c.w.PrimaryAddress,
			present: true, children: nodes,
		})
	}

	if len(c1.Secondary) > 0 && len(c2.Secondary) > 0 {
		sim, nodes := c.compareAddressLists(c1.Secondary, c2.Secondary, detailed)
		parts = append(parts, component{
			name: "secondary_addresses", sim: sim, weight: c.w.SecondaryAddress,
			present: true, children: nodes,
		})
	}

	if len(parts) == 0 {
		return 0, nil, false
	}
	score, nodes := aggregate(parts, detailed)
	return score, nodes, true
}

func (c *Comparator) compareAddressLists(a, b []model.Address, detailed bool) (float64, []Breakdown) {
	if len(a) > len(b) {
		a, b = b, a
	}

	var total float64
	var nodes []Breakdown
	for i := range a {
		best := 0.0
		var bestNodes []Breakdown
		for j := range b {
			sim, children := c.compareAddresses(a[i], b[j], detailed)
			if sim >= best {
				best = sim
				bestNodes = children
			}
		}
		total += best
		if detailed {
			nodes = append(nodes, Breakdown{
				Component:  "best_match",
				Similarity: best,
				Children:   bestNodes,
			})
		}
	}
	return total / float64(len(a)), nodes
}

// compareAddresses scores two structured addresses field by field. When
// either side is a PO Box, box-number equality dominates and street
// fields are ignored.
func (c *Comparator) compareAddresses(a1, a2 model.Address, detailed bool) (float64, []Breakdown) {
	if a1.IsPOBox || a2.IsPOBox {
		parts := []component{
			{
				name:    "po_box_number",
				sim:     termEquality(a1.POBoxNumber, a2.POBoxNumber),
				weight:  c.w.POBox,
				present: a1.POBoxNumber != nil || a2.POBoxNumber != nil,
			},
			c.termComponent("city", a1.City, a2.City, c.w.City),
			c.termComponent("zip", a1.Zip, a2.Zip, c.w.Zip),
		}
		return aggregate(parts, detailed)
	}

	parts := []component{
		c.termComponent("street_number", a1.StreetNumber, a2.StreetNumber, c.w.StreetNumber),
		c.termComponent("street_name", a1.StreetName, a2.StreetName, c.w.StreetName),
		c.termComponent("street_type", a1.StreetType, a2.StreetType, c.w.StreetType),
		c.termComponent("unit", a1.UnitNumber, a2.UnitNumber, c.w.Unit),
		c.termComponent("city", a1.City, a2.City, c.w.City),
		c.termComponent("state", a1.State, a2.State, c.w.State),
		c.termComponent("zip", a1.Zip, a2.Zip, c.w.Zip),
	}
	return aggregate(parts, detailed)
}

func (c *Comparator) termComponent(name string, t1, t2 *model.AttributedTerm, weight float64) component {
	if t1 == nil || t2 == nil {
		return component{name: name, weight: weight, present: false}
	}
	return component{
		name:    name,
		sim:     c.scorer.Similarity(t1.Value, t2.Value),
		weight:  weight,
		present: true,
	}
}

// termEquality is strict equality for identifier-like terms such as box
// numbers, where edit distance would overstate similarity.
func termEquality(t1, t2 *model.AttributedTerm) float64 {
	if t1 == nil || t2 == nil {
		return 0
	}
	if t1.Value == t2.Value {
		return 1
	}
	return 0
}
