package heap

// Roots is the explicit shadow stack the evaluator pins its in-flight
// values into before any call that might allocate (and thus might
// collect), per spec §4.2's root-set contract and §9's "simplest correct
// design is a shadow stack maintained by the evaluator" note.
//
// A Roots is built fresh for each top-level form: internal/env.Frame's
// CollectRoots pushes pointers to every value cell reachable through the
// current lexical scope once, and the evaluator pushes/pops pointers to its
// own locals (an accumulating argument list, an evaluated operator) around
// each allocating call.
type Roots struct {
	stack []*Value
}

// Push pins the given value pointers so that collect will rewrite them (and
// trace their children) if it runs before the matching pop.
func (r *Roots) Push(vs ...*Value) {
	r.stack = append(r.stack, vs...)
}

// pop unpins the n most recently pushed values. Unexported: only this
// package's own constructors need precise push/pop discipline around a
// single allocation; env's frame-wide roots are pushed once per eval call
// and never individually popped, since frame storage is stable for the
// call's whole duration.
func (r *Roots) pop(n int) {
	r.stack = r.stack[:len(r.stack)-n]
}
