// Package buffer provides preallocated storage for allocation-free block
// processing: [Block] holds interleaved float64 working frames, and
// [Staging] hands out two alternating byte buffers so the block returned to
// a consumer stays valid while the next one is being produced.
package buffer
