package remark

// DefaultFallback is given to a row whose band has no remark left.
const DefaultFallback = "Hoàn thành nhiệm vụ học tập theo yêu cầu."

// Assignment is the remark chosen for one roster row.
type Assignment struct {
	Band     Band
	Remark   string
	Fallback bool
}

// Assign walks the rows in order and pops the next remark of each row's band.
// Rows whose band queue is empty or missing, and Unclassified rows, get the
// fallback. The pools are drained as a side effect.
func Assign(bands []Band, pools *Pools, fallback string) []Assignment {
	out := make([]Assignment, len(bands))
	for i, b := range bands {
		out[i] = assignOne(b, pools, fallback)
	}
	return out
}

// AssignScores classifies every raw score and assigns as Assign does.
func AssignScores(scores []any, pools *Pools, fallback string) []Assignment {
	return Assign(ClassifyAll(scores), pools, fallback)
}

// ClassifyAll bands each score, keeping row order.
func ClassifyAll(scores []any) []Band {
	bands := make([]Band, len(scores))
	for i, s := range scores {
		bands[i] = Classify(s)
	}
	return bands
}

func assignOne(b Band, pools *Pools, fallback string) Assignment {
	key, ok := b.Label()
	if !ok {
		return Assignment{Band: b, Remark: fallback, Fallback: true}
	}
	if r, ok := pools.Pop(key); ok {
		return Assignment{Band: b, Remark: r}
	}
	return Assignment{Band: b, Remark: fallback, Fallback: true}
}

// Remarks flattens assignments into the remark column.
func Remarks(as []Assignment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Remark
	}
	return out
}

// BandCount is the number of rows in one band.
type BandCount struct {
	Band  Band
	Count int
}

// Distribution summarises a roster by band. Counts only lists bands that have
// at least one row, highest band first.
type Distribution struct {
	Counts       []BandCount
	Unclassified int
}

// Summarize counts rows per band.
func Summarize(bands []Band) Distribution {
	tally := make(map[Band]int)
	var d Distribution
	for _, b := range bands {
		if b == Unclassified {
			d.Unclassified++
			continue
		}
		tally[b]++
	}
	for _, b := range Bands() {
		if n := tally[b]; n > 0 {
			d.Counts = append(d.Counts, BandCount{Band: b, Count: n})
		}
	}
	return d
}

// Total is the number of classified rows.
func (d Distribution) Total() int {
	n := 0
	for _, c := range d.Counts {
		n += c.Count
	}
	return n
}

// ByLabel returns the counts keyed by header label.
func (d Distribution) ByLabel() map[string]int {
	out := make(map[string]int, len(d.Counts))
	for _, c := range d.Counts {
		l, _ := c.Band.Label()
		out[l] = c.Count
	}
	return out
}
