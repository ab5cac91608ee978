package config

import "fmt"

var validShapes = map[string]bool{"ellipse": true, "rect": true}

var validVoiceDisguiseTiers = map[string]bool{"off": true, "low": true, "medium": true, "high": true}

// Validate checks cfg for internal consistency, defaulting fields the
// distilled CLI surface allows to be omitted.
func Validate(cfg *Config) error {
	if cfg.Detector.Confidence < 0 || cfg.Detector.Confidence > 1 {
		return fmt.Errorf("detector.confidence must be in [0, 1], got %v", cfg.Detector.Confidence)
	}

	if cfg.Blur.Strength <= 0 || cfg.Blur.Strength%2 == 0 {
		return fmt.Errorf("blur.strength must be odd and positive, got %d", cfg.Blur.Strength)
	}
	if !validShapes[cfg.Blur.Shape] {
		return fmt.Errorf("blur.shape must be 'ellipse' or 'rect', got %q", cfg.Blur.Shape)
	}

	if cfg.Pipeline.LookaheadFrames <= 0 {
		return fmt.Errorf("pipeline.lookahead_frames must be > 0, got %d", cfg.Pipeline.LookaheadFrames)
	}
	if cfg.Pipeline.SkipFrames <= 0 {
		return fmt.Errorf("pipeline.skip_frames must be > 0, got %d", cfg.Pipeline.SkipFrames)
	}

	if cfg.Output.Quality < 0 || cfg.Output.Quality > 51 {
		return fmt.Errorf("output.quality (CRF) must be in [0, 51], got %d", cfg.Output.Quality)
	}
	if len(cfg.Output.BlurIDs) > 0 && len(cfg.Output.ExcludeIDs) > 0 {
		return fmt.Errorf("output.blur_ids and output.exclude_ids are mutually exclusive")
	}

	if cfg.Audio.VoiceDisguise == "" {
		cfg.Audio.VoiceDisguise = "off"
	}
	if !validVoiceDisguiseTiers[cfg.Audio.VoiceDisguise] {
		return fmt.Errorf("audio.voice_disguise must be one of off/low/medium/high, got %q", cfg.Audio.VoiceDisguise)
	}

	return nil
}
