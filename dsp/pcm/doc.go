// Package pcm converts raw interleaved PCM blocks to and from the float64
// working representation used by the effects in this module, and defines the
// pull contract ([Source]) between audio samples and the effects that consume
// them.
//
// Supported formats are 8 and 16 bit, signed or unsigned, little-endian,
// mono or stereo. Working samples live on the signed 16-bit scale
// ([MinSample], [MaxSample]); 8-bit data is shifted up by eight bits so both
// depths share one scale.
//
// Channel count mismatches are resolved deterministically: output channel c
// reads input channel min(c, inputChannels-1). A mono input is therefore
// duplicated across a stereo output, and a stereo input feeding a mono output
// keeps its first (left) channel.
package pcm
