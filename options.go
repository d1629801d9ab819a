package tinylisp

import "github.com/tinylisp/tinylisp/internal/heap"

// Option configures a new [Interpreter]. Grounded on the teacher's
// CompileOption/UnmarshalOption pattern: a struct wrapping a closure rather
// than an interface, since the closure is cheap here and symmetry with a
// second option type isn't a concern tinylisp has.
type Option struct{ apply func(*heap.Config) }

// WithInitialCapacity sets the number of bytes each semi-space starts with.
func WithInitialCapacity(bytes int) Option {
	return Option{func(c *heap.Config) { c.InitialCapacity = bytes }}
}

// WithGrowthCeiling sets the byte ceiling past which allocation fails
// instead of growing the arenas further. Zero (the default) means
// unlimited growth.
func WithGrowthCeiling(bytes int) Option {
	return Option{func(c *heap.Config) { c.GrowthCeiling = bytes }}
}
