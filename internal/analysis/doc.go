// Package analysis characterises recorded runs.
//
// The package includes:
//
//   - [Resample]: population step trace sampled at a fixed rate
//   - [Spectrum]: Hann-windowed magnitude spectrum via go-dsp
//   - [DominantPeriod]: the strongest non-DC period of a trace
//   - [Delays]: distribution of scheduled inter-tick delays
//   - [Analyze]: all of the above for one run
//
// # Growth Rhythm
//
// With direction alternation on, the population rises for one cycle and falls
// for the next, so the dominant period of the population trace is close to
// two cycle lengths:
//
//	rep, _ := analysis.Analyze(ticks, duration, analysis.DefaultRate)
//	fmt.Println(rep.DominantPeriod)
package analysis
