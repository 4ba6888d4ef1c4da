// Package nameparse classifies a raw owner-name string into a legal-entity
// kind and a structured name. Classification walks one ordered decision
// table keyed on word count, business-term detection, and punctuation
// pattern; the first matching row wins and later rows are never
// reconsidered.
package nameparse

import (
	"strings"

	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/refdata"
)

// CaseNone is the sentinel case for unclassifiable input. It maps to
// Individual as the conservative default.
const CaseNone = "none"

// Result is the outcome of classifying one raw name string.
type Result struct {
	CaseID string           `json:"case_id"`
	Kind   model.EntityKind `json:"kind"`
	Name   model.Name       `json:"name"`
	// Members holds the parsed names of joint owners for household cases,
	// in the order they appear in the raw string.
	Members []model.Name `json:"members,omitempty"`
}

// Classifier applies the decision table against an injected business-term
// dictionary. Read-only after construction; safe for concurrent use.
type Classifier struct {
	terms *refdata.BusinessTerms
}

// New builds a Classifier around the given dictionary.
func New(terms *refdata.BusinessTerms) *Classifier {
	return &Classifier{terms: terms}
}

// features holds everything a decision-table row can key on.
type features struct {
	norm  string
	words []string

	hasBusinessTerm bool
	legalConstruct  bool
	intPrefixTerm   bool

	hasComma bool
	hasAmp   bool
	hasSlash bool
}

func (f features) commasOnly() bool { return f.hasComma && !f.hasAmp && !f.hasSlash }
func (f features) ampOnly() bool    { return f.hasAmp && !f.hasComma && !f.hasSlash }
func (f features) slashOnly() bool  { return f.hasSlash && !f.hasComma && !f.hasAmp }

// normalizeName trims, uppercases, collapses whitespace, and standardizes
// comma spacing so " , " and " ," never survive tokenization.
func normalizeName(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, ",,", ",")
	return s
}

// stripPunct removes everything but letters and digits from a token.
func stripPunct(word string) string {
	var b strings.Builder
	for _, r := range word {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasPunct(word string) bool {
	return stripPunct(word) != word
}

func isInteger(word string) bool {
	w := stripPunct(word)
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// analyze computes the feature set the decision table keys on.
//
// Business-term detection order is fixed: the dictionary check (exact on
// clean tokens, substring only on punctuation-bearing tokens) runs first
// and is authoritative for the entity-type family; the integer-prefix
// check is a secondary flag that refines the case id but never overrides
// a dictionary verdict.
func (c *Classifier) analyze(norm string) features {
	f := features{
		norm:     norm,
		words:    strings.Fields(norm),
		hasComma: strings.Contains(norm, ","),
		hasAmp:   strings.Contains(norm, "&"),
		hasSlash: strings.Contains(norm, "/"),
	}

	for i, w := range f.words {
		clean := stripPunct(w)
		hit := false
		switch {
		case c.terms.Contains(clean):
			hit = true
		case hasPunct(w) && c.terms.ContainedIn(clean):
			// Punctuation-bearing tokens admit suffix forms ("ASSOC,")
			// via substring containment; clean tokens require an exact
			// dictionary match so ordinary words never fire.
			hit = true
		}
		if hit {
			f.hasBusinessTerm = true
			if c.terms.IsLegalConstruct(clean) {
				f.legalConstruct = true
			}
			if i > 0 && isInteger(f.words[i-1]) {
				f.intPrefixTerm = true
			}
		}
	}

	return f
}

// Classify assigns a case id, entity kind, and parsed name to a raw name
// string. Never fails: empty or blank input yields the CaseNone sentinel.
func (c *Classifier) Classify(raw string) Result {
	norm := normalizeName(raw)
	if norm == "" {
		return Result{CaseID: CaseNone, Kind: model.KindIndividual, Name: model.Name{CaseID: CaseNone}}
	}

	f := c.analyze(norm)

	for _, row := range caseTable {
		if row.match(f) {
			res := row.parse(f)
			res.CaseID = row.id
			res.Kind = row.kind
			res.Name.CaseID = row.id
			return res
		}
	}

	// The table ends in catch-all rows, so this is unreachable; keep the
	// sentinel anyway so a table edit cannot panic.
	return Result{CaseID: CaseNone, Kind: model.KindIndividual, Name: model.Name{CaseID: CaseNone, Complete: norm}}
}
