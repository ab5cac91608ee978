package audio

// CensorRegion is a time interval to replace with a bleep tone or
// silence, widened by padding on both sides.
type CensorRegion struct {
	StartTime float64
	EndTime   float64
	Padding   float64
}

// EffectiveStart returns the padded start time, clamped to zero.
func (r CensorRegion) EffectiveStart() float64 {
	return max(r.StartTime-r.Padding, 0.0)
}

// EffectiveEnd returns the padded end time.
func (r CensorRegion) EffectiveEnd() float64 {
	return r.EndTime + r.Padding
}
