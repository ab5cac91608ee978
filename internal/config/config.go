// Package config loads and validates the YAML configuration file the
// composition root layers CLI flag overrides on top of.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete faceguard configuration.
type Config struct {
	Detector DetectorConfig `yaml:"detector"`
	Blur     BlurConfig     `yaml:"blur"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Audio    AudioConfig    `yaml:"audio"`
	Models   ModelsConfig   `yaml:"models"`
}

// DetectorConfig controls face-region detection.
type DetectorConfig struct {
	Confidence float64 `yaml:"confidence"` // minimum detection confidence, 0..1
}

// BlurConfig controls the blur backend.
type BlurConfig struct {
	Strength int    `yaml:"strength"` // Gaussian kernel size, odd and positive
	Shape    string `yaml:"shape"`    // "ellipse" or "rect"
}

// PipelineConfig controls the detect/blur/merge executor.
type PipelineConfig struct {
	LookaheadFrames int `yaml:"lookahead_frames"`
	SkipFrames      int `yaml:"skip_frames"` // detect every Nth frame
}

// OutputConfig controls encoder and track-selection behavior.
type OutputConfig struct {
	Quality    int      `yaml:"quality"` // H.264 CRF hint
	BlurIDs    []uint32 `yaml:"blur_ids,omitempty"`
	ExcludeIDs []uint32 `yaml:"exclude_ids,omitempty"`
}

// AudioConfig controls the optional keyword-bleep and voice-disguise
// pass.
type AudioConfig struct {
	Keywords      []string `yaml:"keywords,omitempty"`
	VoiceDisguise string   `yaml:"voice_disguise"` // off/low/medium/high
}

// ModelsConfig names the detector and speech-recognition models to
// resolve through internal/resolver.
type ModelsConfig struct {
	DetectorModel   ModelRef `yaml:"detector_model"`
	RecognizerModel ModelRef `yaml:"recognizer_model"`
	CacheDir        string   `yaml:"cache_dir"`
}

// ModelRef names a single model by logical name and source URL.
type ModelRef struct {
	Name      string `yaml:"name"`
	SourceURL string `yaml:"source_url"`
}

// Default returns a Config populated with the CLI surface's documented
// defaults.
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{Confidence: 0.5},
		Blur:     BlurConfig{Strength: 201, Shape: "ellipse"},
		Pipeline: PipelineConfig{LookaheadFrames: 10, SkipFrames: 2},
		Output:   OutputConfig{Quality: 18},
		Audio:    AudioConfig{VoiceDisguise: "off"},
		Models: ModelsConfig{
			DetectorModel:   ModelRef{Name: "face-detector"},
			RecognizerModel: ModelRef{Name: "ggml-tiny.en", SourceURL: ""},
			CacheDir:        "",
		},
	}
}

// Load reads and parses a YAML configuration file, applying defaults
// for any field the file leaves zero before validating.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}
