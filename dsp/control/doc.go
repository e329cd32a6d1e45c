// Package control provides dynamic scalar inputs for effect parameters.
//
// An [Input] is polled once per processing block and returns a float. A
// [Constant] always returns the same value; [LFO] and [Ramp] evolve with the
// block's position on the output timeline; [Func] adapts any function.
// Consumers must not assume anything about how a signal evolves between
// blocks.
package control
