// Package refdata holds the read-only reference data used by name
// classification and address normalization: the business-term dictionary
// and the local-street gazetteer. Both are built once during process
// startup and injected explicitly; nothing in this package mutates after
// construction, so concurrent use needs no locking.
package refdata

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultBusinessTerms is the compiled-in dictionary of tokens that mark a
// name as a business or legal construct. Entries are uppercase and
// punctuation-free; matching strips punctuation before lookup.
var defaultBusinessTerms = []string{
	"LLC", "LC", "LTD", "INC", "CORP", "CORPORATION", "CO", "COMPANY",
	"TRUST", "TRUSTEE", "TRUSTEES", "ESTATE", "REALTY", "PROPERTIES",
	"ASSOCIATION", "ASSOC", "ASSOCIATES", "CONDOMINIUM", "CONDO",
	"PARTNERSHIP", "PARTNERS", "LP", "LLP", "FOUNDATION", "CHURCH",
	"CLUB", "INN", "HOTEL", "FARM", "HOLDINGS", "GROUP", "ENTERPRISES",
	"HOMEOWNERS", "COTTAGES", "NOMINEE", "IRREVOCABLE", "REVOCABLE",
	"LIVING", "FAMILY",
}

// legalConstructTerms is the subset of business terms that indicate a
// legal construct (trusts and title-holding vehicles) rather than an
// operating business.
var legalConstructTerms = []string{
	"TRUST", "TRUSTEE", "TRUSTEES", "ESTATE", "NOMINEE",
	"IRREVOCABLE", "REVOCABLE", "LIVING",
}

// BusinessTerms is the immutable business-term dictionary.
type BusinessTerms struct {
	terms          map[string]struct{}
	legalConstruct map[string]struct{}
}

// NewBusinessTerms builds a dictionary from explicit term lists. Terms are
// uppercased; empty entries are dropped.
func NewBusinessTerms(terms, legalConstruct []string) *BusinessTerms {
	bt := &BusinessTerms{
		terms:          make(map[string]struct{}, len(terms)),
		legalConstruct: make(map[string]struct{}, len(legalConstruct)),
	}
	for _, t := range terms {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			bt.terms[t] = struct{}{}
		}
	}
	for _, t := range legalConstruct {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			bt.legalConstruct[t] = struct{}{}
		}
	}
	return bt
}

// DefaultBusinessTerms returns the compiled-in dictionary.
func DefaultBusinessTerms() *BusinessTerms {
	return NewBusinessTerms(defaultBusinessTerms, legalConstructTerms)
}

// Contains reports whether the exact term is in the dictionary.
func (bt *BusinessTerms) Contains(term string) bool {
	_, ok := bt.terms[strings.ToUpper(term)]
	return ok
}

// ContainedIn reports whether any dictionary term appears as a substring
// of word. Used only for punctuation-bearing tokens, where suffix forms
// like "ASSOC," are common.
func (bt *BusinessTerms) ContainedIn(word string) bool {
	w := strings.ToUpper(word)
	for t := range bt.terms {
		if strings.Contains(w, t) {
			return true
		}
	}
	return false
}

// IsLegalConstruct reports whether the term marks a legal construct
// (trust, estate, nominee) rather than an operating business.
func (bt *BusinessTerms) IsLegalConstruct(term string) bool {
	_, ok := bt.legalConstruct[strings.ToUpper(term)]
	return ok
}

// Gazetteer is the immutable local-street list plus the jurisdiction's
// canonical city name. Street lookups are exact, case-insensitive.
type Gazetteer struct {
	streets map[string]struct{}
	city    string
}

// NewGazetteer builds a gazetteer from a street list and the canonical
// city name of the jurisdiction.
func NewGazetteer(streets []string, city string) *Gazetteer {
	g := &Gazetteer{
		streets: make(map[string]struct{}, len(streets)),
		city:    strings.ToUpper(strings.TrimSpace(city)),
	}
	for _, s := range streets {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			g.streets[s] = struct{}{}
		}
	}
	return g
}

// HasStreet reports whether the street name is in the gazetteer.
func (g *Gazetteer) HasStreet(name string) bool {
	_, ok := g.streets[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// IsLocalCity reports whether city equals the jurisdiction's canonical
// city name, case-insensitively.
func (g *Gazetteer) IsLocalCity(city string) bool {
	c := strings.ToUpper(strings.TrimSpace(city))
	return c != "" && c == g.city
}

// City returns the canonical jurisdiction city name, uppercased.
func (g *Gazetteer) City() string { return g.city }

// Streets returns a copy of the street list for serialization.
func (g *Gazetteer) Streets() []string {
	out := make([]string, 0, len(g.streets))
	for s := range g.streets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// refFile is the on-disk YAML shape for reference data overrides.
type refFile struct {
	BusinessTerms  []string `yaml:"business_terms"`
	LegalConstruct []string `yaml:"legal_construct_terms"`
	City           string   `yaml:"city"`
	Streets        []string `yaml:"streets"`
}

// Load reads reference data from a YAML file. Missing sections fall back
// to the compiled-in defaults; city falls back to defaultCity.
func Load(path, defaultCity string) (*BusinessTerms, *Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refdata: read %s", path)
	}

	var rf refFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, nil, eris.Wrapf(err, "refdata: parse %s", path)
	}

	terms := rf.BusinessTerms
	if len(terms) == 0 {
		terms = defaultBusinessTerms
	}
	legal := rf.LegalConstruct
	if len(legal) == 0 {
		legal = legalConstructTerms
	}
	city := rf.City
	if city == "" {
		city = defaultCity
	}

	return NewBusinessTerms(terms, legal), NewGazetteer(rf.Streets, city), nil
}

// Save writes the gazetteer and dictionary back out as YAML, used by the
// gazetteer build command.
func Save(path string, bt *BusinessTerms, g *Gazetteer) error {
	streets := g.Streets()
	terms := make([]string, 0, len(bt.terms))
	for t := range bt.terms {
		terms = append(terms, t)
	}
	legal := make([]string, 0, len(bt.legalConstruct))
	for t := range bt.legalConstruct {
		legal = append(legal, t)
	}
	sort.Strings(terms)
	sort.Strings(legal)

	data, err := yaml.Marshal(refFile{
		BusinessTerms:  terms,
		LegalConstruct: legal,
		City:           g.City(),
		Streets:        streets,
	})
	if err != nil {
		return eris.Wrap(err, "refdata: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "refdata: write %s", path)
	}
	return nil
}
