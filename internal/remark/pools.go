package remark

import "sort"

// Pools holds one FIFO queue of remarks per band key. A Pools value is built
// once per run and drained by Assign; it is not safe for concurrent use and
// must not be reused for a second roster.
type Pools struct {
	order  []string
	queues map[string][]string
}

// NewPools returns an empty Pools.
func NewPools() *Pools {
	return &Pools{queues: make(map[string][]string)}
}

// PoolsFromMap builds Pools from an already parsed mapping. Keys are ordered
// by band (highest first), unknown keys after them in lexical order.
func PoolsFromMap(m map[string][]string) *Pools {
	p := NewPools()
	for _, b := range Bands() {
		l, _ := b.Label()
		if remarks, ok := m[l]; ok {
			p.reset(l)
			p.queues[l] = append(p.queues[l], remarks...)
		}
	}
	var rest []string
	for k := range m {
		if _, ok := ParseBand(k); !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		p.reset(k)
		p.queues[k] = append(p.queues[k], m[k]...)
	}
	return p
}

// reset starts a fresh, empty queue for key, dropping anything collected for
// it earlier.
func (p *Pools) reset(key string) {
	if _, ok := p.queues[key]; !ok {
		p.order = append(p.order, key)
	}
	p.queues[key] = []string{}
}

func (p *Pools) push(key, remark string) {
	p.queues[key] = append(p.queues[key], remark)
}

// Pop removes and returns the head of the key's queue.
func (p *Pools) Pop(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	q := p.queues[key]
	if len(q) == 0 {
		return "", false
	}
	head := q[0]
	p.queues[key] = q[1:]
	return head, true
}

// Len reports how many remarks remain for key. Missing keys have zero.
func (p *Pools) Len(key string) int {
	if p == nil {
		return 0
	}
	return len(p.queues[key])
}

// Has reports whether a header for key was seen, even if its queue is empty.
func (p *Pools) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.queues[key]
	return ok
}

// Keys returns the band keys in order of first appearance.
func (p *Pools) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Remarks returns a copy of the remaining remarks for key.
func (p *Pools) Remarks(key string) []string {
	if p == nil {
		return nil
	}
	q := p.queues[key]
	out := make([]string, len(q))
	copy(out, q)
	return out
}

// Total is the number of remarks left across all keys.
func (p *Pools) Total() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Map returns a copy of the remaining queues.
func (p *Pools) Map() map[string][]string {
	out := make(map[string][]string)
	if p == nil {
		return out
	}
	for k, q := range p.queues {
		c := make([]string, len(q))
		copy(c, q)
		out[k] = c
	}
	return out
}
