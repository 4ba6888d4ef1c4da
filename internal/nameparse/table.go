package nameparse

import (
	"strings"

	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// row is one entry in the ordered decision table. Rows are evaluated top
// to bottom; the first match wins.
type row struct {
	id    string
	kind  model.EntityKind
	match func(features) bool
	parse func(features) Result
}

func trimComma(w string) string {
	return strings.TrimSuffix(w, ",")
}

func endsComma(w string) bool {
	return strings.HasSuffix(w, ",")
}

func complete(f features) Result {
	return Result{Name: model.Name{Complete: f.norm}}
}

func lastFirst(last, first string) model.Name {
	return model.Name{
		First: model.Term(first),
		Last:  model.Term(last),
	}
}

// memberName builds a household-member name; members with no known
// surname stay unparsed.
func memberName(first, last string) model.Name {
	if last == "" {
		return model.Name{Complete: first}
	}
	return lastFirst(last, first)
}

// splitAmp splits the normalized string into owner segments on "&",
// trimming commas and whitespace from each segment.
func splitAmp(norm string) []string {
	parts := strings.Split(norm, "&")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), ",")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// caseTable is the single authoritative decision table. Business-term
// rows come first so a dictionary hit always lands in the business or
// legal-construct family regardless of punctuation; the household and
// individual rows follow by word count, with the documented catch-alls
// (case33 ampersand-leaning household, case34 individual default) last.
var caseTable = []row{
	{
		// Legal-construct suffix (TRUST, ESTATE, NOMINEE) outranks the
		// plain business row.
		id: "case30", kind: model.KindLegalConstruct,
		match: func(f features) bool { return f.hasBusinessTerm && f.legalConstruct },
		parse: complete,
	},
	{
		// Integer token directly before a business term: street-number
		// style prefixes on association names.
		id: "case32", kind: model.KindBusiness,
		match: func(f features) bool { return f.hasBusinessTerm && f.intPrefixTerm },
		parse: complete,
	},
	{
		id: "case31", kind: model.KindBusiness,
		match: func(f features) bool { return f.hasBusinessTerm },
		parse: complete,
	},
	{
		id: "case0", kind: model.KindIndividual,
		match: func(f features) bool { return len(f.words) == 1 },
		parse: complete,
	},
	{
		// "SURNAME, FIRST"
		id: "case10", kind: model.KindIndividual,
		match: func(f features) bool {
			return len(f.words) == 2 && f.commasOnly() && endsComma(f.words[0])
		},
		parse: func(f features) Result {
			return Result{Name: lastFirst(trimComma(f.words[0]), f.words[1])}
		},
	},
	{
		// "SURNAME FIRST": tax rolls list surname first.
		id: "case11", kind: model.KindIndividual,
		match: func(f features) bool {
			return len(f.words) == 2 && !f.hasComma && !f.hasAmp && !f.hasSlash
		},
		parse: func(f features) Result {
			return Result{Name: lastFirst(f.words[0], f.words[1])}
		},
	},
	{
		// "SURNAME, FIRST MIDDLE"
		id: "case12", kind: model.KindIndividual,
		match: func(f features) bool {
			return len(f.words) == 3 && f.commasOnly() && endsComma(f.words[0])
		},
		parse: func(f features) Result {
			return Result{Name: lastFirst(trimComma(f.words[0]), f.words[1]+" "+f.words[2])}
		},
	},
	{
		// "FIRST & SECOND": joint owners, no shared surname known.
		id: "case13", kind: model.KindHousehold,
		match: func(f features) bool {
			return len(f.words) == 3 && f.ampOnly() && f.words[1] == "&"
		},
		parse: func(f features) Result {
			return Result{
				Name: model.Name{Complete: f.norm},
				Members: []model.Name{
					memberName(f.words[0], ""),
					memberName(f.words[2], ""),
				},
			}
		},
	},
	{
		// "SURNAME FIRST MIDDLE"
		id: "case14", kind: model.KindIndividual,
		match: func(f features) bool {
			return len(f.words) == 3 && !f.hasComma && !f.hasAmp && !f.hasSlash
		},
		parse: func(f features) Result {
			return Result{Name: lastFirst(f.words[0], f.words[1]+" "+f.words[2])}
		},
	},
	{
		// "SURNAME, FIRST & SECOND": joint owners sharing a surname.
		id: "case15a", kind: model.KindHousehold,
		match: func(f features) bool {
			return len(f.words) == 4 && f.hasAmp && f.hasComma &&
				endsComma(f.words[0]) && f.words[2] == "&"
		},
		parse: func(f features) Result {
			surname := trimComma(f.words[0])
			return Result{
				Name: model.Name{Complete: f.norm, Last: model.Term(surname)},
				Members: []model.Name{
					lastFirst(surname, f.words[1]),
					lastFirst(surname, f.words[3]),
				},
			}
		},
	},
	{
		// "SURNAME, FIRST SURNAME, SECOND": same surname repeated.
		id: "case15b", kind: model.KindHousehold,
		match: func(f features) bool {
			return len(f.words) == 4 && f.commasOnly() &&
				trimComma(f.words[0]) == trimComma(f.words[2])
		},
		parse: func(f features) Result {
			surname := trimComma(f.words[0])
			return Result{
				Name: model.Name{Complete: f.norm, Last: model.Term(surname)},
				Members: []model.Name{
					lastFirst(surname, f.words[1]),
					lastFirst(surname, f.words[3]),
				},
			}
		},
	},
	{
		// "SURNAME, FIRST OTHER, SECOND": two owners, different surnames.
		// The else branch of the four-word commas-only family: anything
		// case15b's surname-equality check did not claim lands here, so a
		// missing second comma never demotes the pair to an individual.
		id: "case16", kind: model.KindHousehold,
		match: func(f features) bool {
			return len(f.words) == 4 && f.commasOnly()
		},
		parse: func(f features) Result {
			return Result{
				Name: model.Name{Complete: f.norm},
				Members: []model.Name{
					lastFirst(trimComma(f.words[0]), trimComma(f.words[1])),
					lastFirst(trimComma(f.words[2]), trimComma(f.words[3])),
				},
			}
		},
	},
	{
		// Four clean words: owner order is ambiguous, keep unparsed.
		id: "case17", kind: model.KindIndividual,
		match: func(f features) bool {
			return len(f.words) == 4 && !f.hasComma && !f.hasAmp && !f.hasSlash
		},
		parse: complete,
	},
	{
		// "SURNAME, FIRST M & SECOND ...": longer shared-surname joint
		// owners; everything after the surname splits on the ampersand.
		id: "case18", kind: model.KindHousehold,
		match: func(f features) bool {
			return len(f.words) >= 5 && f.hasAmp && f.hasComma && endsComma(f.words[0])
		},
		parse: func(f features) Result {
			surname := trimComma(f.words[0])
			rest := strings.TrimSpace(strings.TrimPrefix(f.norm, f.words[0]))
			members := make([]model.Name, 0, 2)
			for _, seg := range splitAmp(rest) {
				members = append(members, lastFirst(surname, seg))
			}
			return Result{
				Name:    model.Name{Complete: f.norm, Last: model.Term(surname)},
				Members: members,
			}
		},
	},
	{
		// Slash-separated owner list: each segment is one owner.
		id: "case20", kind: model.KindHousehold,
		match: func(f features) bool { return f.slashOnly() },
		parse: func(f features) Result {
			var members []model.Name
			for _, seg := range strings.Split(f.norm, "/") {
				seg = strings.TrimSpace(seg)
				if seg != "" {
					members = append(members, model.Name{Complete: seg})
				}
			}
			return Result{Name: model.Name{Complete: f.norm}, Members: members}
		},
	},
	{
		// Catch-all: an ampersand without business terms leans household.
		id: "case33", kind: model.KindHousehold,
		match: func(f features) bool { return f.hasAmp },
		parse: func(f features) Result {
			var members []model.Name
			for _, seg := range splitAmp(f.norm) {
				members = append(members, model.Name{Complete: seg})
			}
			return Result{Name: model.Name{Complete: f.norm}, Members: members}
		},
	},
	{
		// Final catch-all: individual with an unparsed complete name.
		id: "case34", kind: model.KindIndividual,
		match: func(f features) bool { return true },
		parse: complete,
	},
}
