package remark

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Band is a discrete score category. The zero value is Unclassified.
type Band int

const (
	Unclassified Band = iota
	BelowFive
	Five
	Six
	Seven
	Eight
	NineToTen
)

// bandLabels is the only place band values meet the phrases used in
// "### MỨC ĐIỂM <label>" headers. Unclassified has no entry on purpose.
var bandLabels = map[Band]string{
	NineToTen: "9-10",
	Eight:     "8",
	Seven:     "7",
	Six:       "6",
	Five:      "5",
	BelowFive: "<5",
}

var labelBands = func() map[string]Band {
	m := make(map[string]Band, len(bandLabels))
	for b, l := range bandLabels {
		m[l] = b
	}
	return m
}()

// thresholds are evaluated top down; the first minimum the score reaches wins.
var thresholds = []struct {
	min  float64
	band Band
}{
	{9, NineToTen},
	{8, Eight},
	{7, Seven},
	{6, Six},
	{5, Five},
}

// Bands returns the classified bands from highest to lowest.
func Bands() []Band {
	return []Band{NineToTen, Eight, Seven, Six, Five, BelowFive}
}

// Label returns the header phrase of the band. ok is false for Unclassified.
func (b Band) Label() (label string, ok bool) {
	label, ok = bandLabels[b]
	return label, ok
}

func (b Band) String() string {
	if l, ok := bandLabels[b]; ok {
		return l
	}
	return "unclassified"
}

// ParseBand maps a header phrase such as "9-10" or "<5" back to its band.
func ParseBand(label string) (Band, bool) {
	b, ok := labelBands[strings.TrimSpace(label)]
	return b, ok
}

// ClassifyFloat bands a numeric score. NaN is Unclassified.
func ClassifyFloat(s float64) Band {
	if math.IsNaN(s) {
		return Unclassified
	}
	for _, t := range thresholds {
		if s >= t.min {
			return t.band
		}
	}
	return BelowFive
}

// Classify bands a raw score value as it comes out of a spreadsheet cell or a
// request payload. Anything that does not convert to a number is Unclassified.
func Classify(score any) Band {
	f, ok := toFloat(score)
	if !ok {
		return Unclassified
	}
	return ClassifyFloat(f)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}
