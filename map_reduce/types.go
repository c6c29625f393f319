package map_reduce

type KeyValue struct {
	Key   string
	Value string
}

// Mapper turns one buffered input into intermediate pairs.
type Mapper interface {
	Map(filename string, contents string) ([]KeyValue, error)
}

// Reducer consumes "<key>\t<value>" lines and returns the final pairs.
type Reducer interface {
	Reduce(lines []string) ([]KeyValue, error)
}
