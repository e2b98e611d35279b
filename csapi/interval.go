package csapi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Interval is the nominal spacing between consecutive values of a regular
// timeseries, e.g. "1MON", "6HOUR", "IR-YEAR".  The textual form is a
// multiplier (defaulting to 1) followed by a base unit from the vocabulary
// below.  Irregular bases (the "IR-" family) describe block sizes rather
// than fixed steps and have no nominal duration.
//
// The original spelling is preserved; comparison is by nominal duration, so
// "MON" and "1MON" are equal intervals.
type Interval struct {
	text string
	n    int64
	base string
}

var intervalPattern = regexp.MustCompile(`\A(\d+)?([a-zA-Z\-]+)\z`)

// Nominal seconds per base unit.  Calendar-varying units carry their
// conventional nominal length; irregular units have none.
var intervalSeconds = map[string]int64{
	"YEAR":       365 * 86400,
	"MON":        30 * 86400,
	"MONTH":      30 * 86400,
	"SEMI-MONTH": 15 * 86400,
	"TRI-MONTH":  10 * 86400,
	"WEEK":       7 * 86400,
	"DAY":        86400,
	"HOUR":       3600,
	"MIN":        60,
	"MINUTE":     60,
	"SECOND":     1,
	"IR-CENTURY": 0,
	"IR-DECADE":  0,
	"IR-YEAR":    0,
	"IR-MONTH":   0,
	"IR-DAY":     0,
}

// ParseInterval parses the textual form of an interval.
//
// Errors:
//
//    - cistern-error-validation -- when the text does not parse or names an unknown base unit.
func ParseInterval(text string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(text)
	if m == nil {
		return Interval{}, ErrorValidation("interval",
			fmt.Sprintf("%q does not have the form <multiplier><base-unit>", text))
	}
	base := strings.ToUpper(m[2])
	if _, ok := intervalSeconds[base]; !ok {
		return Interval{}, ErrorValidation("interval",
			fmt.Sprintf("unknown base unit %q in %q", m[2], text))
	}
	n := int64(1)
	if m[1] != "" {
		parsed, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || parsed < 1 {
			return Interval{}, ErrorValidation("interval",
				fmt.Sprintf("bad multiplier %q in %q", m[1], text))
		}
		n = parsed
	}
	return Interval{text: text, n: n, base: base}, nil
}

func (iv Interval) String() string {
	return iv.text
}

// Seconds is the nominal duration of one step, zero for irregular bases.
func (iv Interval) Seconds() int64 {
	return iv.n * intervalSeconds[iv.base]
}

// IsIrregular reports whether the interval describes an irregular series.
func (iv Interval) IsIrregular() bool {
	return strings.HasPrefix(iv.base, "IR-")
}

// Equal compares intervals by nominal duration.
func (iv Interval) Equal(other Interval) bool {
	if iv.IsIrregular() || other.IsIrregular() {
		return iv.base == other.base && iv.n == other.n
	}
	return iv.Seconds() == other.Seconds()
}

// Less orders intervals by nominal duration; irregular intervals sort below
// all regular ones.
func (iv Interval) Less(other Interval) bool {
	return iv.Seconds() < other.Seconds()
}
