package spreadsheet

import (
	"math"
	"sort"
)

// Reducer folds a variadic list of numbers into one number
type Reducer func(args ...float64) float64

// BuiltInFunctions is the fixed, case-sensitive mapping from upper-case
// function names to reducers
type BuiltInFunctions struct {
	reducers map[string]Reducer
}

// NewDefaultBuiltInFunctions creates the registry of recognised functions
// with their synonyms
func NewDefaultBuiltInFunctions() *BuiltInFunctions {
	bf := &BuiltInFunctions{}
	bf.reducers = map[string]Reducer{
		"SUM":     bf.SUM,
		"PRODUCT": bf.PRODUCT,
		"PROD":    bf.PRODUCT,
		"AVERAGE": bf.AVERAGE,
		"AVG":     bf.AVERAGE,
	}
	return bf
}

// Register adds or replaces the reducer for name. names are matched
// exactly, so name should be upper-case to be reachable from formulas.
func (bf *BuiltInFunctions) Register(name string, reducer Reducer) {
	bf.reducers[name] = reducer
}

// Has reports whether name is a recognised function
func (bf *BuiltInFunctions) Has(name string) bool {
	_, ok := bf.reducers[name]
	return ok
}

// Names lists the recognised function names, synonyms included, sorted
func (bf *BuiltInFunctions) Names() []string {
	names := make([]string, 0, len(bf.reducers))
	for name := range bf.reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a built-in function by name with the given arguments
func (bf *BuiltInFunctions) Call(name string, args ...float64) (float64, error) {
	reducer, ok := bf.reducers[name]
	if !ok {
		return 0, newErrorf(ErrorCodeUnknownFunction, "Function %s does not exist", name)
	}
	return reducer(args...), nil
}

func (bf *BuiltInFunctions) SUM(args ...float64) float64 {
	sum := 0.0
	for _, arg := range args {
		sum += arg
	}
	return sum
}

func (bf *BuiltInFunctions) PRODUCT(args ...float64) float64 {
	product := 1.0
	for _, arg := range args {
		product *= arg
	}
	return product
}

// AVERAGE of no arguments is NaN rather than an error; only the division
// operators raise DivideByZero
func (bf *BuiltInFunctions) AVERAGE(args ...float64) float64 {
	if len(args) == 0 {
		return math.NaN()
	}
	return bf.SUM(args...) / float64(len(args))
}
