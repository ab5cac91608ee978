package audio

import "math"

// Tier selects a voice disguise preset.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

const (
	// DefaultBaseSemitones is the pitch shift shared by all three tiers.
	DefaultBaseSemitones = 2.5

	// contourWarpRange bounds the High tier's random-walk offset from
	// the base shift, in semitones.
	contourWarpRange = 0.5
	// contourStepSize scales the random walk's per-mark step.
	contourStepSize = 0.1
	// voiceMorphSeed makes the High tier's random walk reproducible.
	voiceMorphSeed = 42
)

// VoiceDisguise applies one of three nested PSOLA-based tiers: Low is
// a fixed pitch shift, Medium adds a formant warp, and High replaces
// the fixed shift with a deterministic bounded random walk before the
// formant warp.
type VoiceDisguise struct {
	Tier    Tier
	psola   *PSOLA
	formant *FormantWarp
}

// NewVoiceDisguise builds a VoiceDisguise for the given tier.
func NewVoiceDisguise(tier Tier) *VoiceDisguise {
	return &VoiceDisguise{
		Tier:    tier,
		psola:   NewPSOLA(),
		formant: NewFormantWarp(DefaultFormantShiftRatio),
	}
}

// Transform implements Transformer.
func (v *VoiceDisguise) Transform(seg *Segment) error {
	switch v.Tier {
	case TierLow:
		ratio := semitonesToRatio(DefaultBaseSemitones)
		*seg = v.psola.Shift(*seg, func(int) float64 { return ratio })
		return nil

	case TierMedium:
		ratio := semitonesToRatio(DefaultBaseSemitones)
		*seg = v.psola.Shift(*seg, func(int) float64 { return ratio })
		return v.formant.Transform(seg)

	case TierHigh:
		rng := newLCG(voiceMorphSeed)
		warpOffset := 0.0
		*seg = v.psola.Shift(*seg, func(int) float64 {
			warpOffset += rng.nextFloat64() * contourStepSize * contourWarpRange
			warpOffset = math.Max(-contourWarpRange, math.Min(contourWarpRange, warpOffset))
			return semitonesToRatio(DefaultBaseSemitones + warpOffset)
		})
		return v.formant.Transform(seg)

	default:
		return nil
	}
}
