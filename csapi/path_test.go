package csapi

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
)

func TestParseDatasetPath(t *testing.T) {
	for _, tt := range []struct {
		testCase string
		input    string
		output   DatasetPath
		err      error
	}{
		{
			testCase: "full concrete path",
			input:    "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
			output:   DatasetPath{A: "CALSIM", B: "PPT_OROV", C: "PRECIP", D: "", E: "1MON", F: "L2020A"},
		},
		{
			testCase: "dated path",
			input:    "/CALSIM/MONTH_DAYS/DAY/01JAN2000 - 31DEC2000/1MON/L2020A/",
			output:   DatasetPath{A: "CALSIM", B: "MONTH_DAYS", C: "DAY", D: "01JAN2000 - 31DEC2000", E: "1MON", F: "L2020A"},
		},
		{
			testCase: "empty interior fields stay empty",
			input:    "//////",
			output:   DatasetPath{},
		},
		{
			testCase: "pattern fields carry through verbatim",
			input:    "/CALSIM/.*/PRECIP//1MON/L2020A/",
			output:   DatasetPath{A: "CALSIM", B: ".*", C: "PRECIP", D: "", E: "1MON", F: "L2020A"},
		},
		{
			testCase: "missing leading separator",
			input:    "CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
			err:      ErrorPathMalformed("CALSIM/PPT_OROV/PRECIP//1MON/L2020A/", `want "/"-delimited form "/A/B/C/D/E/F/", six fields bounded by separators`),
		},
		{
			testCase: "missing trailing separator",
			input:    "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A",
			err:      ErrorPathMalformed("/CALSIM/PPT_OROV/PRECIP//1MON/L2020A", `want "/"-delimited form "/A/B/C/D/E/F/", six fields bounded by separators`),
		},
		{
			testCase: "too few fields",
			input:    "/CALSIM/PPT_OROV/PRECIP/1MON/L2020A/",
			err:      ErrorPathMalformed("/CALSIM/PPT_OROV/PRECIP/1MON/L2020A/", `want "/"-delimited form "/A/B/C/D/E/F/", six fields bounded by separators`),
		},
		{
			testCase: "too many fields",
			input:    "/A/B/C/D/E/F/G/",
			err:      ErrorPathMalformed("/A/B/C/D/E/F/G/", `want "/"-delimited form "/A/B/C/D/E/F/", six fields bounded by separators`),
		},
		{
			testCase: "empty string",
			input:    "",
			err:      ErrorPathMalformed("", `want "/"-delimited form "/A/B/C/D/E/F/", six fields bounded by separators`),
		},
	} {
		t.Run(tt.testCase, func(t *testing.T) {
			result, err := ParseDatasetPath(tt.input)
			if tt.err == nil {
				qt.Assert(t, err, qt.IsNil)
				qt.Check(t, result, qt.Equals, tt.output)
				qt.Check(t, result.String(), qt.Equals, tt.input)
			} else {
				qt.Check(t, err, qt.DeepEquals, tt.err)
			}
		})
	}
}

func TestWildcardClassification(t *testing.T) {
	for _, tt := range []struct {
		testCase    string
		input       string
		hasWildcard bool
		hasAny      bool
	}{
		{
			testCase:    "concrete path",
			input:       "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
			hasWildcard: false,
			hasAny:      false,
		},
		{
			testCase:    "wildcard in B",
			input:       "/CALSIM/.*/PRECIP//1MON/L2020A/",
			hasWildcard: true,
			hasAny:      true,
		},
		{
			testCase:    "wildcard only in D",
			input:       "/A/B/C/.*/E/F/",
			hasWildcard: false,
			hasAny:      true,
		},
		{
			testCase:    "character class counts as pattern syntax",
			input:       "/CALSIM/PPT_OROV/PRECIP//1MON/L202[01]/",
			hasWildcard: true,
			hasAny:      true,
		},
		{
			testCase:    "empty fields are not wildcards",
			input:       "//////",
			hasWildcard: false,
			hasAny:      false,
		},
	} {
		t.Run(tt.testCase, func(t *testing.T) {
			p, err := ParseDatasetPath(tt.input)
			qt.Assert(t, err, qt.IsNil)
			qt.Check(t, p.HasWildcard(), qt.Equals, tt.hasWildcard)
			qt.Check(t, p.HasAnyWildcard(), qt.Equals, tt.hasAny)
		})
	}
}

func TestDropDate(t *testing.T) {
	p := DatasetPath{A: "CALSIM", B: "MONTH_DAYS", C: "DAY", D: "01JAN2000 - 31DEC2000", E: "1MON", F: "L2020A"}
	dropped := p.DropDate()
	qt.Check(t, dropped.D, qt.Equals, "")
	qt.Check(t, dropped.String(), qt.Equals, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/")
	// the receiver is untouched
	qt.Check(t, p.D, qt.Equals, "01JAN2000 - 31DEC2000")
}

func TestMatches(t *testing.T) {
	mustParse := func(text string) DatasetPath {
		p, err := ParseDatasetPath(text)
		qt.Assert(t, err, qt.IsNil)
		return p
	}
	pattern := mustParse("/A/.*/C//E/F/")
	for _, tt := range []struct {
		testCase  string
		candidate string
		pattern   DatasetPath
		matches   bool
	}{
		{
			testCase:  "wildcard field matches anything",
			candidate: "/A/B/C//E/F/",
			pattern:   pattern,
			matches:   true,
		},
		{
			testCase:  "wildcard field matches longer text",
			candidate: "/A/ZZZ/C//E/F/",
			pattern:   pattern,
			matches:   true,
		},
		{
			testCase:  "literal field mismatch",
			candidate: "/A/B/D//E/F/",
			pattern:   pattern,
			matches:   false,
		},
		{
			testCase:  "empty pattern field rejects non-empty candidate",
			candidate: "/A/B/C/01JAN2000/E/F/",
			pattern:   mustParse("/A/B/C//E//"),
			matches:   false,
		},
		{
			testCase:  "date field ignored by default",
			candidate: "/A/B/C/01JAN2000 - 31DEC2000/E/F/",
			pattern:   mustParse("/A/B/C//E/F/"),
			matches:   true,
		},
		{
			testCase:  "partial field text does not match",
			candidate: "/A/BB/C//E/F/",
			pattern:   mustParse("/A/B/C//E/F/"),
			matches:   false,
		},
		{
			testCase:  "case sensitive",
			candidate: "/a/b/c//e/f/",
			pattern:   mustParse("/A/B/C//E/F/"),
			matches:   false,
		},
	} {
		t.Run(tt.testCase, func(t *testing.T) {
			c := mustParse(tt.candidate)
			ok, err := c.Matches(tt.pattern)
			qt.Assert(t, err, qt.IsNil)
			qt.Check(t, ok, qt.Equals, tt.matches)
		})
	}
}

func TestMatchesSelf(t *testing.T) {
	for _, text := range []string{
		"/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
		"/CALSIM/MONTH_DAYS/DAY/01JAN2000 - 31DEC2000/1MON/L2020A/",
		"//////",
	} {
		p, err := ParseDatasetPath(text)
		qt.Assert(t, err, qt.IsNil)
		ok, err := p.Matches(p)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, ok, qt.IsTrue, qt.Commentf("path %q should match itself", text))
	}
}

func TestMatchesDated(t *testing.T) {
	candidate := DatasetPath{A: "A", B: "B", C: "C", D: "01JAN2000", E: "E", F: "F"}
	pattern := DatasetPath{A: "A", B: "B", C: "C", D: "02FEB2001", E: "E", F: "F"}

	ok, err := candidate.Matches(pattern)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, ok, qt.IsTrue)

	ok, err = candidate.MatchesDated(pattern)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, ok, qt.IsFalse)

	ok, err = candidate.MatchesDated(candidate)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, ok, qt.IsTrue)
}

func TestMatchesBadPattern(t *testing.T) {
	candidate := DatasetPath{A: "A", B: "B", C: "C", E: "E", F: "F"}
	pattern := DatasetPath{A: "A", B: "[", C: "C", E: "E", F: "F"}
	_, err := candidate.Matches(pattern)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, ECodePathMalformed)
}

func TestPathOrdering(t *testing.T) {
	a := DatasetPath{A: "CALSIM", B: "MONTH_DAYS", C: "DAY", E: "1MON", F: "L2020A"}
	b := DatasetPath{A: "CALSIM", B: "PPT_OROV", C: "PRECIP", E: "1MON", F: "L2020A"}
	qt.Check(t, a.Less(b), qt.IsTrue)
	qt.Check(t, b.Less(a), qt.IsFalse)
	qt.Check(t, a.Less(a), qt.IsFalse)
}
