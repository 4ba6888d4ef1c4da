// Package similarity scores how alike two noisy free-text strings are.
// The primary signal is a phonetically weighted edit distance where
// vowel-for-vowel substitutions are cheap and cross-class substitutions
// are expensive; a composite blends in Double Metaphone agreement and a
// shared-prefix signal at fixed weights.
package similarity

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence buckets a composite score into a fixed, auditable band.
type Confidence string

const (
	ConfidenceExact   Confidence = "exact"
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceVeryLow Confidence = "very_low"
)

// Substitution costs by character class. Insertions and deletions always
// cost 1. Identical characters cost 0.
const (
	vowelSubCost     = 0.30 // vowel for vowel
	consonantSubCost = 0.63 // consonant for consonant
	crossSubCost     = 1.00 // vowel/consonant mix, digits, punctuation
)

// Weights configures the composite blend and the confidence bands.
type Weights struct {
	Edit       float64 `json:"edit" mapstructure:"edit"`
	Phonetic   float64 `json:"phonetic" mapstructure:"phonetic"`
	Positional float64 `json:"positional" mapstructure:"positional"`

	ExactAt  float64 `json:"exact_at" mapstructure:"exact_at"`
	HighAt   float64 `json:"high_at" mapstructure:"high_at"`
	MediumAt float64 `json:"medium_at" mapstructure:"medium_at"`
	LowAt    float64 `json:"low_at" mapstructure:"low_at"`
}

// DefaultWeights returns the standard 0.8/0.15/0.05 blend and the fixed
// confidence bands.
func DefaultWeights() Weights {
	return Weights{
		Edit:       0.80,
		Phonetic:   0.15,
		Positional: 0.05,
		ExactAt:    1.0,
		HighAt:     0.9,
		MediumAt:   0.7,
		LowAt:      0.5,
	}
}

// Result carries the composite score, its component signals, and the
// confidence band.
type Result struct {
	Score      float64    `json:"score"`
	Edit       float64    `json:"edit"`
	Phonetic   float64    `json:"phonetic"`
	Positional float64    `json:"positional"`
	Confidence Confidence `json:"confidence"`
}

// Scorer is a pure, reusable string scorer. Safe for concurrent use.
type Scorer struct {
	w Weights
}

// New returns a Scorer with the given weights. Zero blend weights fall
// back to the defaults so a partially filled config degrades gracefully.
func New(w Weights) *Scorer {
	def := DefaultWeights()
	if w.Edit <= 0 {
		w.Edit = def.Edit
	}
	if w.Phonetic < 0 {
		w.Phonetic = 0
	}
	if w.Positional < 0 {
		w.Positional = 0
	}
	if w.ExactAt == 0 {
		w.ExactAt = def.ExactAt
	}
	if w.HighAt == 0 {
		w.HighAt = def.HighAt
	}
	if w.MediumAt == 0 {
		w.MediumAt = def.MediumAt
	}
	if w.LowAt == 0 {
		w.LowAt = def.LowAt
	}
	return &Scorer{w: w}
}

// Default returns a Scorer with DefaultWeights.
func Default() *Scorer {
	return New(DefaultWeights())
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a string for comparison: fold diacritics, uppercase,
// collapse whitespace, and drop everything outside letters, digits,
// space, ampersand, comma, and hyphen.
func Normalize(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToUpper(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '&', r == ',', r == '-':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

func isConsonant(c byte) bool {
	return c >= 'A' && c <= 'Z' && !isVowel(c)
}

func subCost(a, b byte) float64 {
	if a == b {
		return 0
	}
	switch {
	case isVowel(a) && isVowel(b):
		return vowelSubCost
	case isConsonant(a) && isConsonant(b):
		return consonantSubCost
	default:
		return crossSubCost
	}
}

// EditSimilarity returns the weighted edit similarity of two normalized
// strings in [0,1]. Symmetric; identical inputs score 1, and two empty
// strings score 1.
func (s *Scorer) EditSimilarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	// Two-row DP over the weighted edit-distance table.
	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = float64(j)
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = float64(i)
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1] + subCost(a[i-1], b[j-1])
			del := prev[j] + 1
			ins := curr[j-1] + 1
			curr[j] = min3(sub, del, ins)
		}
		prev, curr = curr, prev
	}

	maxLen := float64(len(a))
	if float64(len(b)) > maxLen {
		maxLen = float64(len(b))
	}
	sim := 1 - prev[len(b)]/maxLen
	if sim < 0 {
		return 0
	}
	return sim
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// phoneticSimilarity compares Double Metaphone codes word by word. Each
// word on the shorter side takes its best code agreement on the other
// side; the result is the average of those best matches.
func phoneticSimilarity(a, b string) float64 {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	if len(wa) > len(wb) {
		wa, wb = wb, wa
	}

	var total float64
	for _, x := range wa {
		best := 0.0
		xp, xs := matchr.DoubleMetaphone(x)
		for _, y := range wb {
			yp, ys := matchr.DoubleMetaphone(y)
			switch {
			case xp != "" && xp == yp:
				best = 1
			case best < 0.5 && ((xs != "" && xs == ys) || (xs != "" && xs == yp) || (xp != "" && xp == ys)):
				best = 0.5
			}
			if best == 1 {
				break
			}
		}
		total += best
	}
	return total / float64(len(wa))
}

// positionalSimilarity is the shared-prefix ratio of the two strings.
func positionalSimilarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(i) / float64(maxLen)
}

// Score computes the composite similarity of two raw strings. Symmetric,
// always in [0,1]; identical inputs (after normalization) score exactly 1.
func (s *Scorer) Score(a, b string) Result {
	na, nb := Normalize(a), Normalize(b)

	edit := s.EditSimilarity(na, nb)
	phon := phoneticSimilarity(na, nb)
	pos := positionalSimilarity(na, nb)

	// Renormalize over the signals actually weighted, so a zero phonetic
	// or positional weight degrades to the primary signal.
	total := s.w.Edit + s.w.Phonetic + s.w.Positional
	score := (edit*s.w.Edit + phon*s.w.Phonetic + pos*s.w.Positional) / total

	if na == nb {
		score = 1
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}

	return Result{
		Score:      score,
		Edit:       edit,
		Phonetic:   phon,
		Positional: pos,
		Confidence: s.Bucket(score),
	}
}

// Similarity returns just the composite score.
func (s *Scorer) Similarity(a, b string) float64 {
	return s.Score(a, b).Score
}

// Bucket maps a composite score onto its confidence band.
func (s *Scorer) Bucket(score float64) Confidence {
	switch {
	case score >= s.w.ExactAt:
		return ConfidenceExact
	case score >= s.w.HighAt:
		return ConfidenceHigh
	case score >= s.w.MediumAt:
		return ConfidenceMedium
	case score >= s.w.LowAt:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
