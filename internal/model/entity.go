// Package model defines the resolved-entity data model shared by the
// classification, comparison, and grouping layers. Entities are built once
// by the ingest layer and treated as immutable afterward.
package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// DataSource identifies which roster a record came from.
type DataSource string

const (
	SourceTaxRoll     DataSource = "tax_roll"
	SourceDonorRoster DataSource = "donor_roster"
)

// EntityKind discriminates the supported legal-entity variants.
type EntityKind string

const (
	KindIndividual     EntityKind = "individual"
	KindBusiness       EntityKind = "business"
	KindHousehold      EntityKind = "household"
	KindLegalConstruct EntityKind = "legal_construct"
)

// AttributedTerm is a parsed value that keeps the raw term it was derived
// from, so audit output can always point back at the source text.
type AttributedTerm struct {
	Value string `json:"value"`
	Raw   string `json:"raw,omitempty"`
}

// Term builds an AttributedTerm whose value and raw form are the same.
func Term(value string) *AttributedTerm {
	if value == "" {
		return nil
	}
	return &AttributedTerm{Value: value, Raw: value}
}

// Derived builds an AttributedTerm with a normalized value distinct from
// the raw source term.
func Derived(raw, value string) *AttributedTerm {
	if value == "" {
		return nil
	}
	return &AttributedTerm{Value: value, Raw: raw}
}

// String returns the parsed value, or "" for a nil term. Safe on nil.
func (t *AttributedTerm) String() string {
	if t == nil {
		return ""
	}
	return t.Value
}

// Name holds either an unparsed complete name or a parsed first/last pair,
// tagged with the classification case that produced it.
type Name struct {
	CaseID   string          `json:"case_id"`
	Complete string          `json:"complete,omitempty"`
	First    *AttributedTerm `json:"first,omitempty"`
	Last     *AttributedTerm `json:"last,omitempty"`
	Alias    *AttributedTerm `json:"alias,omitempty"`
}

// Parsed reports whether the name carries structured first/last fields.
func (n Name) Parsed() bool {
	return n.First != nil && n.Last != nil
}

// Display returns the best human-readable form of the name.
func (n Name) Display() string {
	if n.Parsed() {
		return strings.TrimSpace(n.First.Value + " " + n.Last.Value)
	}
	return n.Complete
}

// Address holds the structured fields resolved from raw address text.
// Unresolved fields are nil, never guessed.
type Address struct {
	Raw          string          `json:"raw,omitempty"`
	StreetNumber *AttributedTerm `json:"street_number,omitempty"`
	StreetName   *AttributedTerm `json:"street_name,omitempty"`
	StreetType   *AttributedTerm `json:"street_type,omitempty"`
	UnitType     *AttributedTerm `json:"unit_type,omitempty"`
	UnitNumber   *AttributedTerm `json:"unit_number,omitempty"`
	City         *AttributedTerm `json:"city,omitempty"`
	State        *AttributedTerm `json:"state,omitempty"`
	Zip          *AttributedTerm `json:"zip,omitempty"`
	POBoxNumber  *AttributedTerm `json:"po_box_number,omitempty"`
	IsPOBox      bool            `json:"is_po_box"`
	IsLocal      bool            `json:"is_local"`
}

// ContactInfo pairs the property location (primary) with zero or more
// owner/mailing addresses (secondary). Multiple owners mean multiple
// secondary entries.
type ContactInfo struct {
	Primary   *Address  `json:"primary,omitempty"`
	Secondary []Address `json:"secondary,omitempty"`
}

// LocationIdentifier is the source-specific natural key of a record.
type LocationIdentifier struct {
	Source DataSource `json:"source"`
	IDType string     `json:"id_type"`
	ID     string     `json:"id"`
}

// Key renders the identifier as a single stable string.
func (l LocationIdentifier) Key() string {
	return fmt.Sprintf("%s/%s/%s", l.Source, l.IDType, l.ID)
}

// Entity is the tagged variant over the four supported legal-entity kinds.
// Members is populated only for KindHousehold and never nests households.
type Entity struct {
	Kind     EntityKind         `json:"kind"`
	Location LocationIdentifier `json:"location"`
	Name     Name               `json:"name"`
	Contact  *ContactInfo       `json:"contact,omitempty"`
	Members  []Entity           `json:"members,omitempty"`
}

// Validate checks structural invariants once at construction time so the
// comparison layers can assume well-formed input.
func (e *Entity) Validate() error {
	switch e.Kind {
	case KindIndividual, KindBusiness, KindLegalConstruct:
		if len(e.Members) > 0 {
			return eris.Errorf("model: %s entity must not have members", e.Kind)
		}
	case KindHousehold:
		for i := range e.Members {
			if e.Members[i].Kind != KindIndividual {
				return eris.Errorf("model: household member %d is %s, members must be individuals", i, e.Members[i].Kind)
			}
		}
	default:
		return eris.Errorf("model: unknown entity kind %q", e.Kind)
	}
	if e.Location.ID == "" {
		return eris.New("model: entity location id is required")
	}
	return nil
}

// EntityGroup is a set of entity keys believed to denote one real-world
// owner. The founder is the first entity assigned to the group.
type EntityGroup struct {
	ID      string   `json:"id"`
	Index   int      `json:"index"`
	Founder string   `json:"founder"`
	Members []string `json:"members"`
}

// Contains reports whether the group already holds the given entity key.
func (g *EntityGroup) Contains(key string) bool {
	for _, m := range g.Members {
		if m == key {
			return true
		}
	}
	return false
}
