package aggregation

// Aggregator is a metric combining function: the operation applied when
// rollup merges two or more rows sharing the same (time, dimensions) key.
// Every Aggregator must be associative and commutative so that combining
// rows in any order, or combining partial combines from different inputs,
// produces the same result.
type Aggregator interface {
	// Add folds a single raw metric value into the aggregator's state.
	Add(value float64)
	// Combine folds another aggregator of the same kind into this one.
	// The argument is never mutated.
	Combine(other Aggregator)
	// Result returns the aggregator's current value.
	Result() float64
	// Reset clears the aggregator back to its zero state.
	Reset()
}

// Factory constructs a fresh, zero-valued Aggregator for a combining
// function name ("sum", "min", "max", "count", "first", "last", "mean").
type Factory func() Aggregator

var registry = map[string]Factory{
	"sum":   func() Aggregator { return &sumAggregator{} },
	"min":   func() Aggregator { return &minAggregator{initialized: false} },
	"max":   func() Aggregator { return &maxAggregator{initialized: false} },
	"count": func() Aggregator { return &countAggregator{} },
	"first": func() Aggregator { return &firstAggregator{} },
	"last":  func() Aggregator { return &lastAggregator{} },
	"mean":  func() Aggregator { return &meanAggregator{} },
}

// NewAggregator constructs a combining aggregator by name. The ok return
// is false for an unregistered name.
func NewAggregator(name string) (Aggregator, bool) {
	factory, ok := registry[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// RegisterAggregator adds or overrides a combining function by name. Used
// by callers that need a custom metric selector beyond the built-ins.
func RegisterAggregator(name string, factory Factory) {
	registry[name] = factory
}
