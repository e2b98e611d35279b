package csapi

// PeriodType describes how a value relates to its time step: sampled at an
// instant, accumulated to an instant, averaged over the period, or
// accumulated over the period.
//
// The standard vocabulary below is what most containers carry, but engines
// must preserve any value losslessly; whether a non-standard period type is
// representable is a per-format concern.
type PeriodType string

const (
	PeriodInstVal PeriodType = "INST-VAL"
	PeriodInstCum PeriodType = "INST-CUM"
	PeriodAver    PeriodType = "PER-AVER"
	PeriodCum     PeriodType = "PER-CUM"
)

// StandardPeriodTypes lists the period types every bundled container format
// version can represent.
func StandardPeriodTypes() []PeriodType {
	return []PeriodType{PeriodInstVal, PeriodInstCum, PeriodAver, PeriodCum}
}

// IsStandard reports membership in the standard vocabulary.
func (pt PeriodType) IsStandard() bool {
	switch pt {
	case PeriodInstVal, PeriodInstCum, PeriodAver, PeriodCum:
		return true
	}
	return false
}
