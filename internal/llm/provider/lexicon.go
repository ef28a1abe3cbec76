package provider

import (
	"context"
	"strings"
	"unicode"
)

// lexicon maps polarity-bearing words to scores in [-1,1]. Small on
// purpose: it covers the vocabulary of support queries, not open text.
var lexicon = map[string]float64{
	"great": 0.8, "excellent": 0.9, "awesome": 0.9, "love": 0.8,
	"good": 0.6, "thanks": 0.5, "thank": 0.5, "happy": 0.6,
	"helpful": 0.6, "works": 0.4, "perfect": 0.9, "appreciate": 0.6,

	"bad": -0.5, "poor": -0.5, "slow": -0.3, "confusing": -0.4,
	"broken": -0.6, "problem": -0.3, "issue": -0.2, "error": -0.3,
	"wrong": -0.4, "fail": -0.5, "failed": -0.5, "failing": -0.5,
	"terrible": -0.8, "awful": -0.8, "horrible": -0.9, "worst": -0.9,
	"useless": -0.7, "hate": -0.8, "angry": -0.8, "furious": -0.9,
	"unacceptable": -0.8, "disappointed": -0.6, "frustrated": -0.6,
	"ridiculous": -0.6, "scam": -0.9,
}

// negators flip the polarity of the following word.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true,
	"wasn't": true, "don't": true, "doesn't": true, "can't": true,
	"cannot": true, "won't": true,
}

// LexiconProvider scores sentiment from a word-polarity table with simple
// negation handling. Deterministic and dependency free, so it also serves
// as the test double for the external scoring service.
type LexiconProvider struct{}

// NewLexiconProvider creates a lexicon-based sentiment provider.
func NewLexiconProvider() *LexiconProvider {
	return &LexiconProvider{}
}

// Name implements SentimentProvider.
func (p *LexiconProvider) Name() string { return "lexicon" }

// Score averages the polarity of matched words, flipping polarity after a
// negator. Texts with no polarity-bearing words score 0.
func (p *LexiconProvider) Score(_ context.Context, text string) (float64, error) {
	words := tokenize(text)

	var sum float64
	var matched int
	negate := false

	for _, w := range words {
		if negators[w] {
			negate = true
			continue
		}
		if score, ok := lexicon[w]; ok {
			if negate {
				score = -score
			}
			sum += score
			matched++
		}
		negate = false
	}

	if matched == 0 {
		return 0, nil
	}
	return Clamp(sum / float64(matched)), nil
}

// EmphasisProvider scores sentiment from surface emphasis signals:
// exclamation runs, question stacking, and shouting case. It is
// intentionally independent of the lexicon so the two providers disagree
// in interesting ways and fusion has something to average.
type EmphasisProvider struct{}

// NewEmphasisProvider creates an emphasis-based sentiment provider.
func NewEmphasisProvider() *EmphasisProvider {
	return &EmphasisProvider{}
}

// Name implements SentimentProvider.
func (p *EmphasisProvider) Name() string { return "emphasis" }

// Score starts from a light lexicon pass and amplifies it by emphasis:
// exclamations and all-caps words push the score away from zero.
func (p *EmphasisProvider) Score(_ context.Context, text string) (float64, error) {
	base := 0.0
	var matched int
	for _, w := range tokenize(text) {
		if score, ok := lexicon[w]; ok {
			base += score
			matched++
		}
	}
	if matched > 0 {
		base /= float64(matched)
	}

	emphasis := 1.0
	if n := strings.Count(text, "!"); n > 0 {
		emphasis += 0.2 * float64(min(n, 3))
	}
	if countShoutWords(text) >= 2 {
		emphasis += 0.3
	}

	// Emphasis on a neutral text still reads slightly negative in a
	// support queue; shouting without polarity words is not praise.
	if base == 0 && emphasis > 1.0 {
		base = -0.1
	}

	return Clamp(base * emphasis), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func countShoutWords(text string) int {
	n := 0
	for _, w := range strings.Fields(text) {
		letters := 0
		upper := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= 3 && upper == letters {
			n++
		}
	}
	return n
}
