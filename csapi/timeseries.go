package csapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RegularTimeseries is one dataset: a concrete path, parallel value and
// timestamp sequences of equal length, and descriptive metadata.
// Timestamps are strictly increasing with nominal spacing given by Interval.
// It is created by parsing a SeriesDocument or by an engine read, and is
// plain value data thereafter.
type RegularTimeseries struct {
	Path       DatasetPath
	Values     []float64
	Dates      []time.Time
	PeriodType PeriodType
	Units      string
	Interval   Interval
}

// SeriesDocument is the structured interchange form of a RegularTimeseries:
// the textual path, float values, ISO-8601 date strings, and textual
// metadata.  It is what the JSON form of a series looks like on the wire.
//
// This shape is deliberately plain JSON rather than part of the vessel
// schema: values are JSON numbers, and the IPLD json codec cannot round-trip
// a whole-numbered float (it serializes without a fraction, which decodes as
// an int and is refused by the typed assembler).
type SeriesDocument struct {
	Path       string    `json:"path"`
	Values     []float64 `json:"values"`
	Dates      []string  `json:"dates"`
	PeriodType string    `json:"periodType"`
	Units      string    `json:"units"`
	Interval   string    `json:"interval"`
}

// NewRegularTimeseries validates the construction invariants and builds the
// record.  Every violated invariant is named in the error, not only the
// first one found.
//
// Errors:
//
//    - cistern-error-validation -- when the path is not concrete, the value and
//      date sequences differ in length, or the dates are not strictly increasing.
func NewRegularTimeseries(path DatasetPath, values []float64, dates []time.Time, periodType PeriodType, units string, interval Interval) (*RegularTimeseries, error) {
	var reasons []string
	if path.HasAnyWildcard() {
		reasons = append(reasons, fmt.Sprintf("path %q is a query pattern, series need a concrete path", path))
	}
	if len(values) != len(dates) {
		reasons = append(reasons, fmt.Sprintf("values and dates differ in length: %d != %d", len(values), len(dates)))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			reasons = append(reasons, fmt.Sprintf("dates are not strictly increasing at index %d", i))
			break
		}
	}
	if periodType == "" {
		reasons = append(reasons, "period type is empty")
	}
	if len(reasons) > 0 {
		return nil, ErrorValidation("regular timeseries", strings.Join(reasons, "; "),
			[2]string{"path", path.String()})
	}
	return &RegularTimeseries{
		Path:       path,
		Values:     values,
		Dates:      dates,
		PeriodType: periodType,
		Units:      units,
		Interval:   interval,
	}, nil
}

// Len reports the number of (date, value) pairs.
func (rts *RegularTimeseries) Len() int {
	return len(rts.Values)
}

// At returns the i'th (date, value) pair.
func (rts *RegularTimeseries) At(i int) (time.Time, float64) {
	return rts.Dates[i], rts.Values[i]
}

// Equal compares two series for exact equality: path, metadata, and every
// value and timestamp.  Intervals compare by nominal duration.
func (rts *RegularTimeseries) Equal(other *RegularTimeseries) bool {
	if rts.Path != other.Path ||
		rts.PeriodType != other.PeriodType ||
		rts.Units != other.Units ||
		!rts.Interval.Equal(other.Interval) ||
		len(rts.Values) != len(other.Values) ||
		len(rts.Dates) != len(other.Dates) {
		return false
	}
	for i := range rts.Values {
		if rts.Values[i] != other.Values[i] {
			return false
		}
	}
	for i := range rts.Dates {
		if !rts.Dates[i].Equal(other.Dates[i]) {
			return false
		}
	}
	return true
}

// Document renders the series into its structured interchange form.
func (rts *RegularTimeseries) Document() SeriesDocument {
	dates := make([]string, len(rts.Dates))
	for i, d := range rts.Dates {
		dates[i] = d.UTC().Format(time.RFC3339)
	}
	values := make([]float64, len(rts.Values))
	copy(values, rts.Values)
	return SeriesDocument{
		Path:       rts.Path.String(),
		Values:     values,
		Dates:      dates,
		PeriodType: string(rts.PeriodType),
		Units:      rts.Units,
		Interval:   rts.Interval.String(),
	}
}

// dateLayouts lists the accepted ISO-8601 shapes, most to least specific.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses one ISO-8601 timestamp as used in series documents.
//
// Errors:
//
//    - cistern-error-validation -- when the text matches none of the accepted layouts.
func ParseDate(text string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrorValidation("date", fmt.Sprintf("%q is not an ISO-8601 timestamp", text))
}

// FromDocument builds a RegularTimeseries from its interchange form.
// Validation is one pass over the whole document: the error names every
// malformed field, so a caller fixing a document does not have to iterate
// one mistake at a time.
//
// Errors:
//
//    - cistern-error-validation -- when any field of the document is malformed.
func FromDocument(doc SeriesDocument) (*RegularTimeseries, error) {
	var reasons []string
	path, err := ParseDatasetPath(doc.Path)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("path: %q does not parse", doc.Path))
	} else if path.HasAnyWildcard() {
		reasons = append(reasons, fmt.Sprintf("path: %q is a query pattern, series need a concrete path", doc.Path))
	}
	dates := make([]time.Time, 0, len(doc.Dates))
	badDates := 0
	for _, text := range doc.Dates {
		t, err := ParseDate(text)
		if err != nil {
			badDates++
			continue
		}
		dates = append(dates, t)
	}
	if badDates > 0 {
		reasons = append(reasons, fmt.Sprintf("dates: %d of %d are not ISO-8601 timestamps", badDates, len(doc.Dates)))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			reasons = append(reasons, fmt.Sprintf("dates: not strictly increasing at index %d", i))
			break
		}
	}
	if len(doc.Values) != len(doc.Dates) {
		reasons = append(reasons, fmt.Sprintf("values and dates differ in length: %d != %d", len(doc.Values), len(doc.Dates)))
	}
	interval, err := ParseInterval(doc.Interval)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("interval: %q does not parse", doc.Interval))
	}
	if doc.PeriodType == "" {
		reasons = append(reasons, "periodType: empty")
	}
	if len(reasons) > 0 {
		return nil, ErrorValidation("series document", strings.Join(reasons, "; "),
			[2]string{"path", doc.Path})
	}
	return &RegularTimeseries{
		Path:       path,
		Values:     doc.Values,
		Dates:      dates,
		PeriodType: PeriodType(doc.PeriodType),
		Units:      doc.Units,
		Interval:   interval,
	}, nil
}

// MarshalJSON renders the series document form.
func (rts *RegularTimeseries) MarshalJSON() ([]byte, error) {
	doc := rts.Document()
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ErrorSerialization("marshalling series document", err)
	}
	return data, nil
}

// UnmarshalJSON parses the series document form, with full validation.
func (rts *RegularTimeseries) UnmarshalJSON(data []byte) error {
	var doc SeriesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ErrorSerialization("unmarshalling series document", err)
	}
	parsed, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*rts = *parsed
	return nil
}

// SeriesUpdate names replacement fields for RegularTimeseries.Update.
// Nil members keep the current value.
type SeriesUpdate struct {
	Path       *DatasetPath
	Values     []float64
	Dates      []time.Time
	PeriodType *PeriodType
	Units      *string
	Interval   *Interval
}

// Update returns a copy of the series with the named fields replaced,
// re-validating the construction invariants on the result.
//
// Errors:
//
//    - cistern-error-validation -- when the updated fields violate an invariant.
func (rts *RegularTimeseries) Update(u SeriesUpdate) (*RegularTimeseries, error) {
	path := rts.Path
	if u.Path != nil {
		path = *u.Path
	}
	values := rts.Values
	if u.Values != nil {
		values = u.Values
	}
	dates := rts.Dates
	if u.Dates != nil {
		dates = u.Dates
	}
	periodType := rts.PeriodType
	if u.PeriodType != nil {
		periodType = *u.PeriodType
	}
	units := rts.Units
	if u.Units != nil {
		units = *u.Units
	}
	interval := rts.Interval
	if u.Interval != nil {
		interval = *u.Interval
	}
	return NewRegularTimeseries(path, values, dates, periodType, units, interval)
}

// Add sums two series pointwise over the intersection of their dates.
// Interval, period type, and units must agree.  Path fields that agree are
// kept; fields that differ concatenate with "&" (not "+", which is pattern
// syntax and would make the result unusable as a write target).  Adding a
// series to itself concatenates the B fields so the result names the
// operation.
//
// Errors:
//
//    - cistern-error-validation -- when the metadata of the two series disagree.
func (rts *RegularTimeseries) Add(other *RegularTimeseries) (*RegularTimeseries, error) {
	var reasons []string
	if !rts.Interval.Equal(other.Interval) {
		reasons = append(reasons, fmt.Sprintf("intervals differ: %s, %s", rts.Interval, other.Interval))
	}
	if rts.PeriodType != other.PeriodType {
		reasons = append(reasons, fmt.Sprintf("period types differ: %s, %s", rts.PeriodType, other.PeriodType))
	}
	if rts.Units != other.Units {
		reasons = append(reasons, fmt.Sprintf("units differ: %s, %s", rts.Units, other.Units))
	}
	if len(reasons) > 0 {
		return nil, ErrorValidation("series addition", strings.Join(reasons, "; "))
	}

	a, b := rts.Path.fields(), other.Path.fields()
	var merged [6]string
	for i := range a {
		if a[i] == b[i] {
			merged[i] = a[i]
		} else {
			merged[i] = a[i] + "&" + b[i]
		}
	}
	if rts.Path == other.Path {
		merged[1] = a[1] + "&" + b[1]
	}
	path := DatasetPath{A: merged[0], B: merged[1], C: merged[2], D: merged[3], E: merged[4], F: merged[5]}

	var dates []time.Time
	var values []float64
	i, j := 0, 0
	for i < len(rts.Dates) && j < len(other.Dates) {
		switch {
		case rts.Dates[i].Before(other.Dates[j]):
			i++
		case other.Dates[j].Before(rts.Dates[i]):
			j++
		default:
			dates = append(dates, rts.Dates[i])
			values = append(values, rts.Values[i]+other.Values[j])
			i++
			j++
		}
	}

	return NewRegularTimeseries(path, values, dates, rts.PeriodType, rts.Units, rts.Interval)
}
