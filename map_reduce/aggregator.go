package map_reduce

import (
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCount = fmt.Errorf("value is not an integer")

// Accumulator holds running totals keyed by token. Keys are reported in the
// order they were first seen.
type Accumulator struct {
	totals map[string]int
	order  []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{totals: make(map[string]int)}
}

func (a *Accumulator) Add(key string, n int) {
	if _, seen := a.totals[key]; !seen {
		a.order = append(a.order, key)
	}
	a.totals[key] = a.Get(key) + n
}

// Get returns the running total for key, zero if it was never added.
func (a *Accumulator) Get(key string) int {
	return a.totals[key]
}

func (a *Accumulator) Len() int {
	return len(a.order)
}

func (a *Accumulator) Totals() []KeyValue {
	kvs := make([]KeyValue, 0, len(a.order))
	for _, k := range a.order {
		kvs = append(kvs, KeyValue{Key: k, Value: strconv.Itoa(a.totals[k])})
	}
	return kvs
}

// Aggregator sums "<key>\t<value>" lines per key. It assumes every pair for a
// key arrives in the same invocation but does not require them to be adjacent.
type Aggregator struct{}

func (r *Aggregator) Reduce(lines []string) ([]KeyValue, error) {
	acc := NewAccumulator()

	for i, line := range lines {
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", i+1, parts[1], ErrBadCount)
		}
		acc.Add(parts[0], n)
	}

	return acc.Totals(), nil
}
