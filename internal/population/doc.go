// Package population owns the active rod collection and decides, one tick at
// a time, whether to add or remove a rod and how long to wait before the next
// decision.
//
// The scheduler has two derived states. Growing places a new rod; Shrinking
// removes a uniformly random one (a no-op on an empty collection). Which
// state applies is a pure function of the current drive sample and the
// configured [Policy]; there is no separate state timer.
//
// The delay until the next tick follows the drive intensity:
//
//	delay = min + (max - min) * (1 - intensity)^sharpness
//
// so rods churn quickly near the peak of the curve and slowly in its troughs.
package population
