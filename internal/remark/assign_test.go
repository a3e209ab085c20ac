package remark

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_FIFOThenFallback(t *testing.T) {
	pools := PoolsFromMap(map[string][]string{"7": {"R1", "R2"}})
	bands := []Band{Seven, Seven, Seven}

	got := Assign(bands, pools, "F")

	assert.Equal(t, []string{"R1", "R2", "F"}, Remarks(got))
	assert.False(t, got[0].Fallback)
	assert.False(t, got[1].Fallback)
	assert.True(t, got[2].Fallback)
	assert.Equal(t, 0, pools.Len("7"))
}

func TestAssign_PoolsAreConsumed(t *testing.T) {
	pools := PoolsFromMap(map[string][]string{"7": {"R1", "R2"}})
	bands := []Band{Seven, Seven, Seven}

	_ = Assign(bands, pools, "F")
	again := Assign(bands, pools, "F")

	assert.Equal(t, []string{"F", "F", "F"}, Remarks(again))
	for _, a := range again {
		assert.True(t, a.Fallback)
	}
}

func TestAssign_InterleavedBandsKeepOrder(t *testing.T) {
	pools := Parse("### MỨC ĐIỂM 9-10\n- top one\n- top two\n### MỨC ĐIỂM <5\n- low one")
	scores := []any{9.5, "3", 10, 4.2, "abc", 9}

	got := AssignScores(scores, pools, DefaultFallback)

	require.Len(t, got, len(scores))
	assert.Equal(t, []string{
		"Top one",
		"Low one",
		"Top two",
		DefaultFallback,
		DefaultFallback,
		DefaultFallback,
	}, Remarks(got))
	assert.Equal(t, Unclassified, got[4].Band)
	assert.True(t, got[4].Fallback)
}

func TestAssign_UnclassifiedNeverTakesEmptyKey(t *testing.T) {
	pools := Parse("### MỨC ĐIỂM\n- degenerate")

	got := AssignScores([]any{nil, "n/a"}, pools, "F")

	assert.Equal(t, []string{"F", "F"}, Remarks(got))
	assert.Equal(t, 1, pools.Len(""))
}

func TestAssign_NilPools(t *testing.T) {
	got := Assign([]Band{Eight, Five}, nil, "F")
	assert.Equal(t, []string{"F", "F"}, Remarks(got))
}

func TestAssign_EveryRowGetsExactlyOne(t *testing.T) {
	for rows := 0; rows <= 40; rows += 7 {
		for supply := 0; supply <= 5; supply++ {
			t.Run(fmt.Sprintf("rows=%d supply=%d", rows, supply), func(t *testing.T) {
				m := map[string][]string{}
				for _, b := range Bands() {
					l, _ := b.Label()
					for i := 0; i < supply; i++ {
						m[l] = append(m[l], fmt.Sprintf("%s#%d", l, i))
					}
				}
				pools := PoolsFromMap(m)
				before := pools.Total()

				scores := make([]any, rows)
				for i := range scores {
					scores[i] = float64(i%12) - 0.5
				}

				got := AssignScores(scores, pools, "F")
				require.Len(t, got, rows)

				used := map[string]bool{}
				pooled := 0
				for _, a := range got {
					if a.Fallback {
						assert.Equal(t, "F", a.Remark)
						continue
					}
					assert.False(t, used[a.Remark], "remark %q handed out twice", a.Remark)
					used[a.Remark] = true
					pooled++
				}
				assert.Equal(t, before-pooled, pools.Total())
			})
		}
	}
}

func TestSummarize(t *testing.T) {
	bands := ClassifyAll([]any{9, 9.5, 8, 4, "x", nil, 5, 4.99})

	d := Summarize(bands)

	assert.Equal(t, []BandCount{
		{Band: NineToTen, Count: 2},
		{Band: Eight, Count: 1},
		{Band: Five, Count: 1},
		{Band: BelowFive, Count: 2},
	}, d.Counts)
	assert.Equal(t, 2, d.Unclassified)
	assert.Equal(t, 6, d.Total())
	assert.Equal(t, map[string]int{"9-10": 2, "8": 1, "5": 1, "<5": 2}, d.ByLabel())
}

func TestSummarize_Empty(t *testing.T) {
	d := Summarize(nil)
	assert.Empty(t, d.Counts)
	assert.Zero(t, d.Unclassified)
	assert.Empty(t, d.ByLabel())
}
