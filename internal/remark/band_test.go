package remark

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFloat(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  Band
	}{
		{"perfect", 10, NineToTen},
		{"top boundary", 9.0, NineToTen},
		{"just below nine", 8.999, Eight},
		{"eight", 8.0, Eight},
		{"seven", 7.25, Seven},
		{"six", 6, Six},
		{"five boundary", 5.0, Five},
		{"just below five", 4.999, BelowFive},
		{"zero", 0, BelowFive},
		{"negative", -3, BelowFive},
		{"above ten", 12, NineToTen},
		{"positive infinity", math.Inf(1), NineToTen},
		{"negative infinity", math.Inf(-1), BelowFive},
		{"nan", math.NaN(), Unclassified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyFloat(tc.score))
		})
	}
}

func TestClassify_RawValues(t *testing.T) {
	cases := []struct {
		name  string
		score any
		want  Band
	}{
		{"nil", nil, Unclassified},
		{"text", "abc", Unclassified},
		{"empty string", "", Unclassified},
		{"numeric string", "8.5", Eight},
		{"padded string", "  9 ", NineToTen},
		{"comma decimal", "8,5", Unclassified},
		{"int", 7, Seven},
		{"int64", int64(5), Five},
		{"uint8", uint8(4), BelowFive},
		{"float32", float32(6.5), Six},
		{"json number", json.Number("9.5"), NineToTen},
		{"bad json number", json.Number("x"), Unclassified},
		{"bool", true, Unclassified},
		{"struct", struct{}{}, Unclassified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, Classify(tc.score))
			})
		})
	}
}

func TestClassify_AlwaysOneOfSixBands(t *testing.T) {
	valid := map[Band]bool{}
	for _, b := range Bands() {
		valid[b] = true
	}
	for s := -2.0; s <= 11.0; s += 0.125 {
		assert.True(t, valid[ClassifyFloat(s)], "score %v", s)
	}
}

func TestBandLabels(t *testing.T) {
	want := []string{"9-10", "8", "7", "6", "5", "<5"}
	got := make([]string, 0, len(want))
	for _, b := range Bands() {
		l, ok := b.Label()
		assert.True(t, ok)
		got = append(got, l)
	}
	assert.Equal(t, want, got)

	_, ok := Unclassified.Label()
	assert.False(t, ok)
	assert.Equal(t, "unclassified", Unclassified.String())

	for _, l := range want {
		b, ok := ParseBand(l)
		assert.True(t, ok)
		assert.Equal(t, l, b.String())
	}

	_, ok = ParseBand("")
	assert.False(t, ok, "the empty header key must not map to a band")
}
