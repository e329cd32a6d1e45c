// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation (default for tap reads)
//   - [Hermite4]: 4-point cubic Hermite
//
// The [Mode] enum and the [delay.Ring] type allow selecting the
// interpolation algorithm at construction time.
package interp
