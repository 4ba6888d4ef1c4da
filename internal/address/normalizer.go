// Package address resolves raw, delimiter-tagged address text into the
// structured fields the comparator works on, plus the PO-Box and locality
// flags. Fields that cannot be resolved stay nil; ambiguity is never
// resolved by guessing.
package address

import (
	"regexp"
	"strings"

	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/refdata"
)

// Source records embed two distinct delimiter tokens: one separating
// logical address lines, one separating sub-fields within a line. Both
// must be mapped to a fixed canonical substitution before extraction
// (line separator to comma, sub-field separator to space) because field
// extraction quality depends on that exact policy.
const (
	LineSeparator  = "::#^#::"
	FieldSeparator = ":^#^:"
)

var (
	poBoxRe = regexp.MustCompile(`(?i)\b(?:P\.?\s*O\.?\s+BOX|PO\s+BOX|BOX)\s+#?([A-Z0-9-]+)`)
	zipRe   = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\s*$`)
	stateRe = regexp.MustCompile(`\b([A-Z]{2})\s*$`)
	unitRe  = regexp.MustCompile(`\b(APT|UNIT|STE|SUITE|FL|RM|#)\s*([A-Z0-9-]+)\s*$`)
)

// streetTypes maps recognized street-type suffixes to their canonical
// abbreviation.
var streetTypes = map[string]string{
	"ST": "ST", "STREET": "ST",
	"RD": "RD", "ROAD": "RD",
	"DR": "DR", "DRIVE": "DR",
	"AVE": "AVE", "AVENUE": "AVE",
	"LN": "LN", "LANE": "LN",
	"CT": "CT", "COURT": "CT",
	"PL": "PL", "PLACE": "PL",
	"CIR": "CIR", "CIRCLE": "CIR",
	"WAY": "WAY",
	"TER": "TER", "TERRACE": "TER",
	"BLVD": "BLVD", "BOULEVARD": "BLVD",
	"HWY": "HWY", "HIGHWAY": "HWY",
	"TRL": "TRL", "TRAIL": "TRL",
	"PT": "PT", "POINT": "PT",
}

// Normalizer resolves raw address text against an injected gazetteer.
// Read-only after construction; safe for concurrent use.
type Normalizer struct {
	gaz *refdata.Gazetteer
}

// New builds a Normalizer around the given gazetteer.
func New(gaz *refdata.Gazetteer) *Normalizer {
	return &Normalizer{gaz: gaz}
}

// Substitute applies the fixed delimiter policy to raw source text.
func Substitute(raw string) string {
	s := strings.ReplaceAll(raw, LineSeparator, ", ")
	s = strings.ReplaceAll(s, FieldSeparator, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize resolves raw address text into structured fields and derived
// flags. Never fails: unparseable input yields an Address with nil fields
// and IsLocal false.
func (n *Normalizer) Normalize(raw string) model.Address {
	addr := model.Address{Raw: raw}

	text := Substitute(raw)
	text = strings.ToUpper(text)
	if text == "" {
		return addr
	}

	lines := splitLines(text)
	streetLine := lines[0]
	tail := strings.Join(lines[1:], " ")
	if len(lines) == 1 {
		// No line structure survived. Zip and state are still
		// unambiguous at the end of the text; the city is not, so it
		// stays unresolved rather than guessed from street words.
		streetLine = n.stripTrailingZipState(&addr, streetLine)
	} else {
		n.parseTail(&addr, tail)
	}

	// PO Box detection runs against the raw street line, independent of
	// the gazetteer.
	if m := poBoxRe.FindStringSubmatch(streetLine); m != nil {
		addr.IsPOBox = true
		addr.POBoxNumber = model.Derived(m[0], m[1])
	}

	if !addr.IsPOBox {
		n.parseStreet(&addr, streetLine)
	}

	addr.IsLocal = n.isLocal(addr)
	return addr
}

func splitLines(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// parseTail resolves zip, state, and city from the trailing lines.
func (n *Normalizer) parseTail(addr *model.Address, tail string) {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return
	}

	if m := zipRe.FindStringSubmatch(tail); m != nil {
		addr.Zip = model.Derived(m[0], m[1])
		tail = strings.TrimSpace(tail[:len(tail)-len(m[0])])
	}
	if m := stateRe.FindStringSubmatch(tail); m != nil {
		addr.State = model.Term(m[1])
		tail = strings.TrimSpace(tail[:len(tail)-len(m[0])])
	}
	tail = strings.Trim(tail, ", ")
	if tail != "" {
		addr.City = model.Term(tail)
	}
}

// stripTrailingZipState pulls zip and state off the end of a single-line
// address and returns the remainder.
func (n *Normalizer) stripTrailingZipState(addr *model.Address, line string) string {
	if m := zipRe.FindStringSubmatch(line); m != nil {
		addr.Zip = model.Derived(m[0], m[1])
		line = strings.TrimSpace(line[:len(line)-len(m[0])])
	}
	if addr.Zip != nil {
		if m := stateRe.FindStringSubmatch(line); m != nil {
			addr.State = model.Term(m[1])
			line = strings.TrimSpace(line[:len(line)-len(m[0])])
		}
	}
	return line
}

// parseStreet resolves street number, name, type, and unit from the first
// address line.
func (n *Normalizer) parseStreet(addr *model.Address, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if m := unitRe.FindStringSubmatch(line); m != nil {
		unitType := m[1]
		if unitType == "#" {
			unitType = "UNIT"
		}
		addr.UnitType = model.Term(unitType)
		addr.UnitNumber = model.Term(m[2])
		line = strings.TrimSpace(line[:len(line)-len(m[0])])
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	if isDigits(words[0]) {
		addr.StreetNumber = model.Term(words[0])
		words = words[1:]
	}

	if len(words) > 1 {
		if canon, ok := streetTypes[words[len(words)-1]]; ok {
			addr.StreetType = model.Derived(words[len(words)-1], canon)
			words = words[:len(words)-1]
		}
	}

	if len(words) > 0 {
		addr.StreetName = model.Term(strings.Join(words, " "))
	}
}

// isLocal applies the guarded locality rule: an exact gazetteer street
// match or an exact canonical-city match, and nothing else. Parse
// failures and unknown streets always resolve to false.
func (n *Normalizer) isLocal(addr model.Address) bool {
	if n.gaz == nil {
		return false
	}
	if addr.StreetName != nil {
		full := addr.StreetName.Value
		if addr.StreetType != nil {
			full += " " + addr.StreetType.Value
		}
		if n.gaz.HasStreet(full) || n.gaz.HasStreet(addr.StreetName.Value) {
			return true
		}
	}
	if addr.City != nil && n.gaz.IsLocalCity(addr.City.Value) {
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
