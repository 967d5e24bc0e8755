// Package format defines the on-disk graph layouts and their writers.
//
// A CSR graph is a pair of files: <prefix>.nodes holds (id, degree) records
// and <prefix>.edges holds the destinations of each listed node, in node
// order. A curve-split graph is <prefix>.upper, one (ux, uy, count) record
// per occupied 2^16 x 2^16 block in Hilbert order, and <prefix>.lower, the
// low halves of each block's edges. All multi-byte fields are little-endian.
//
// The delta format is a byte stream of gaps between consecutive sorted
// Hilbert indices. A gap below 256 is one byte. A gap that needs m >= 2
// bytes is written as m-1 zero bytes followed by its m big-endian bytes.
package format
