// Package signal provides the periodic drive signal that modulates the rod
// population and the camera orbit.
//
// A [Curve] maps a normalized cycle position (phase) to an intensity in
// [0,1]. A [Signal] derives the cycle state from elapsed time:
//
//	cycle   = floor(elapsed / period)
//	phase   = (elapsed mod period) / period
//	reverse = alternate && cycle is odd
//
// Samples are value objects recomputed on every query; nothing is cached
// between ticks.
package signal
