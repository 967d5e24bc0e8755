// Package hilbert maps pairs of 32-bit coordinates to positions on a Hilbert
// curve over the 2^32 x 2^32 grid, and back.
//
// Entangle and Detangle are exact inverses. Both consume the index one byte
// (four curve levels) at a time through precomputed tables, most significant
// byte first. A Decoder additionally remembers the work done for the previous
// index, so decoding a sorted run of nearby indices only redoes the low-order
// bytes that changed.
package hilbert
