package map_reduce

import (
	"fmt"
	"sort"
)

type Runner struct {
	mapper  Mapper
	reducer Reducer
}

func NewRunner(m Mapper, r Reducer) *Runner {
	return &Runner{
		mapper:  m,
		reducer: r,
	}
}

// Run maps every input, sorts the pairs by key the way the shuffle would, and
// feeds them to the reducer as a single partition.
func (r *Runner) Run(inputs map[string]string) ([]KeyValue, error) {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var mappedKVs []KeyValue
	for _, name := range names {
		kvs, err := r.mapper.Map(name, inputs[name])
		if err != nil {
			return nil, fmt.Errorf("mapping error: %w", err)
		}
		mappedKVs = append(mappedKVs, kvs...)
	}

	sort.SliceStable(mappedKVs, func(i, j int) bool {
		return mappedKVs[i].Key < mappedKVs[j].Key
	})

	results, err := r.reducer.Reduce(Lines(mappedKVs))
	if err != nil {
		return nil, fmt.Errorf("reduce error: %w", err)
	}

	return results, nil
}

// Lines renders pairs in the "<key>\t<value>" streaming format.
func Lines(kvs []KeyValue) []string {
	lines := make([]string, len(kvs))
	for i, kv := range kvs {
		lines[i] = kv.Key + "\t" + kv.Value
	}
	return lines
}
