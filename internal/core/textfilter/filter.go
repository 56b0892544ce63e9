// Package textfilter decides whether a transcription segment carries signal
// or noise. A segment must pass every enabled check to be informative:
// minimum normalized length, minimum real-word count (stopwords excluded),
// no match against the reject patterns, and every custom predicate true.
// Non-informative segments are dropped before they reach storage
package textfilter

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultPatterns reject common mic-check phrases
var DefaultPatterns = []string{
	`^testing$`,
	`^test\d+$`,
	`^hello\d+$`,
}

// Predicate inspects normalized text; returning false rejects the segment
type Predicate func(norm string) bool

// Filter is a pure classifier; safe for concurrent use
type Filter struct {
	minLength    int
	minRealWords int
	patterns     []*regexp.Regexp
	predicates   []Predicate
	stopwords    map[string]map[string]struct{}
}

// Option mutates a Filter during New
type Option func(*Filter)

// WithMinLength overrides the minimum normalized character length
func WithMinLength(n int) Option { return func(f *Filter) { f.minLength = n } }

// WithMinRealWords overrides the minimum informative word count
func WithMinRealWords(n int) Option { return func(f *Filter) { f.minRealWords = n } }

// WithPatterns replaces the reject patterns; invalid expressions are skipped
func WithPatterns(exprs []string) Option {
	return func(f *Filter) {
		f.patterns = f.patterns[:0]
		for _, e := range exprs {
			if re, err := regexp.Compile(e); err == nil {
				f.patterns = append(f.patterns, re)
			}
		}
	}
}

// WithStopwords merges extra stopwords for a language code
func WithStopwords(lang string, words []string) Option {
	return func(f *Filter) {
		set, ok := f.stopwords[lang]
		if !ok {
			set = map[string]struct{}{}
			f.stopwords[lang] = set
		}
		for _, w := range words {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithPredicate appends a custom predicate
func WithPredicate(p Predicate) Option {
	return func(f *Filter) { f.predicates = append(f.predicates, p) }
}

// New constructs a Filter with the default thresholds (minimum length 3,
// one real word), the default patterns, and the repeated-run predicate
func New(opts ...Option) *Filter {
	f := &Filter{
		minLength:    3,
		minRealWords: 1,
		stopwords:    defaultStopwords(),
		predicates:   []Predicate{NoLongRuns},
	}
	for _, e := range DefaultPatterns {
		f.patterns = append(f.patterns, regexp.MustCompile(e))
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Informative reports whether text should be kept. All checks are AND-ed
func (f *Filter) Informative(text, lang string) bool {
	n := Normalize(text)
	if utf8.RuneCountInString(n) < f.minLength {
		return false
	}
	if f.realWords(n, lang) < f.minRealWords {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(n) {
			return false
		}
	}
	for _, p := range f.predicates {
		if !p(n) {
			return false
		}
	}
	return true
}

// realWords counts tokens of >=3 runes that are not stopwords for lang
func (f *Filter) realWords(norm, lang string) int {
	stops := f.stopwordsFor(lang)
	count := 0
	for _, tok := range strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(tok) < 3 {
			continue
		}
		if _, stop := stops[tok]; stop {
			continue
		}
		count++
	}
	return count
}

func (f *Filter) stopwordsFor(lang string) map[string]struct{} {
	lang = strings.ToLower(lang)
	if i := strings.IndexByte(lang, '-'); i > 0 {
		lang = lang[:i]
	}
	if set, ok := f.stopwords[lang]; ok {
		return set
	}
	return f.stopwords["en"]
}

// NoLongRuns rejects text where a short unit (1 to 3 runes) repeats five or
// more times consecutively, e.g. "aaaaa" or "hahahahaha"
func NoLongRuns(norm string) bool {
	const limit = 5
	rs := []rune(norm)
	for unit := 1; unit <= 3; unit++ {
		for start := 0; start+unit*limit <= len(rs); start++ {
			repeated := true
			for k := 1; k < limit && repeated; k++ {
				for m := 0; m < unit; m++ {
					if rs[start+k*unit+m] != rs[start+m] {
						repeated = false
						break
					}
				}
			}
			if repeated {
				return false
			}
		}
	}
	return true
}

// pool of fresh transformer chains; order matters:
// NFKC, unicode case folding, strip combining and format marks, width fold
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Normalize lowercases, repairs UTF-8, folds width/case, and collapses
// whitespace so length and pattern checks see a canonical form
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return strings.Join(strings.Fields(ns), " ")
}
