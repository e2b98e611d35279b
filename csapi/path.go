package csapi

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Separator delimits the six fields in the textual form of a DatasetPath.
const Separator = "/"

// DatasetPath is the six-field hierarchical key naming one dataset within a
// container file.  The D field conventionally carries a date or date range,
// which is why several operations treat it specially.
//
// DatasetPath is a value type: equality and map-key behavior compare the
// exact field tuple, case-sensitively, with no normalization.
// Fields may carry regular-expression fragments, in which case the path is a
// query pattern rather than a concrete path; only concrete paths are valid
// write targets.
type DatasetPath struct {
	A string
	B string
	C string
	D string
	E string
	F string
}

var fieldNames = [6]string{"A", "B", "C", "D", "E", "F"}

// ParseDatasetPath parses the textual form of a path:
// a leading separator, six separator-delimited fields, and a trailing
// separator.  Empty interior fields stay empty; they are not wildcards.
//
// Errors:
//
//    - cistern-error-path-malformed -- when the text does not have exactly six delimited fields.
func ParseDatasetPath(text string) (DatasetPath, error) {
	tokens := strings.Split(text, Separator)
	// Six fields plus the mandatory leading and trailing separators make
	// eight tokens, the first and last of which must be empty.
	if len(tokens) != 8 || tokens[0] != "" || tokens[7] != "" {
		return DatasetPath{}, ErrorPathMalformed(text,
			fmt.Sprintf("want %q-delimited form %q, six fields bounded by separators", Separator, "/A/B/C/D/E/F/"))
	}
	return DatasetPath{
		A: tokens[1],
		B: tokens[2],
		C: tokens[3],
		D: tokens[4],
		E: tokens[5],
		F: tokens[6],
	}, nil
}

func (p DatasetPath) String() string {
	return Separator + p.A +
		Separator + p.B +
		Separator + p.C +
		Separator + p.D +
		Separator + p.E +
		Separator + p.F +
		Separator
}

func (p DatasetPath) fields() [6]string {
	return [6]string{p.A, p.B, p.C, p.D, p.E, p.F}
}

// fieldHasPatternSyntax reports whether a field carries regular-expression
// syntax.  Any metacharacter counts, not just the ".*" idiom: a field like
// "L202[01]" is just as unusable as a write target.
func fieldHasPatternSyntax(field string) bool {
	return regexp.QuoteMeta(field) != field
}

// HasWildcard reports whether any field other than D carries pattern syntax.
// D is ignored because two series differing only by date range are the same
// logical dataset for most searches.
func (p DatasetPath) HasWildcard() bool {
	for i, f := range p.fields() {
		if i == 3 {
			continue
		}
		if fieldHasPatternSyntax(f) {
			return true
		}
	}
	return false
}

// HasAnyWildcard reports whether any of the six fields, D included, carries
// pattern syntax.  A path for which this is true is a query pattern and is
// never a valid write target.
func (p DatasetPath) HasAnyWildcard() bool {
	for _, f := range p.fields() {
		if fieldHasPatternSyntax(f) {
			return true
		}
	}
	return false
}

// DropDate returns a copy of the path with the D field cleared.
func (p DatasetPath) DropDate() DatasetPath {
	p.D = ""
	return p
}

// Less orders paths by their field tuple, A through F.
// This is the canonical ordering used for collection iteration.
func (p DatasetPath) Less(other DatasetPath) bool {
	a, b := p.fields(), other.fields()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Matches tests this path against a query pattern, field by field.
// Each candidate field must be a full regular-expression match of the
// corresponding pattern field's text; an empty pattern field matches only an
// empty candidate field.  The D field is not compared; use MatchesDated to
// include it.
//
// Errors:
//
//    - cistern-error-path-malformed -- when a pattern field does not compile as a regular expression.
func (p DatasetPath) Matches(pattern DatasetPath) (bool, error) {
	return p.match(pattern, false)
}

// MatchesDated is Matches with the D field included in the comparison.
//
// Errors:
//
//    - cistern-error-path-malformed -- when a pattern field does not compile as a regular expression.
func (p DatasetPath) MatchesDated(pattern DatasetPath) (bool, error) {
	return p.match(pattern, true)
}

func (p DatasetPath) match(pattern DatasetPath, includeDate bool) (bool, error) {
	cand, pat := p.fields(), pattern.fields()
	for i := range pat {
		if i == 3 && !includeDate {
			continue
		}
		if pat[i] == "" {
			if cand[i] != "" {
				return false, nil
			}
			continue
		}
		re, err := compileField(pat[i])
		if err != nil {
			return false, ErrorPathMalformed(pattern.String(),
				fmt.Sprintf("field %s is not a valid regular expression: %s", fieldNames[i], err))
		}
		if !re.MatchString(cand[i]) {
			return false, nil
		}
	}
	return true, nil
}

// Catalog scans re-test the same handful of pattern fields against every
// member, so compiled patterns are cached for the life of the process,
// keyed by their source text.
var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

func compileField(pattern string) (*regexp.Regexp, error) {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, err
	}
	patternCache[pattern] = re
	return re, nil
}
