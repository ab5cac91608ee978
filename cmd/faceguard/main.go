// Command faceguard blurs or previews faces in a video or image, and
// optionally bleeps keyword hits and disguises the voice in the audio
// track. It is a thin composition root: it parses flags, builds the
// domain components, and delegates everything else to internal/usecase.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/neutrinographics/faceguard/internal/audio"
	"github.com/neutrinographics/faceguard/internal/audio/whisperasr"
	"github.com/neutrinographics/faceguard/internal/blur"
	"github.com/neutrinographics/faceguard/internal/config"
	"github.com/neutrinographics/faceguard/internal/detect"
	"github.com/neutrinographics/faceguard/internal/detect/onnxyolo"
	"github.com/neutrinographics/faceguard/internal/imageio"
	"github.com/neutrinographics/faceguard/internal/resolver"
	"github.com/neutrinographics/faceguard/internal/telemetry"
	"github.com/neutrinographics/faceguard/internal/usecase"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

const defaultInputSize = onnxyolo.DefaultInputSize

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	confidence := flag.Float64("confidence", -1, "Detector confidence threshold")
	blurStrength := flag.Int("blur-strength", -1, "Gaussian kernel size (odd, positive)")
	blurShape := flag.String("blur-shape", "", "ellipse or rect")
	lookahead := flag.Int("lookahead", -1, "Frames buffered for slide-in")
	skipFrames := flag.Int("skip-frames", -1, "Detect every Nth frame")
	previewDir := flag.String("preview", "", "Save thumbnails to this directory; skip blur")
	blurIDs := flag.String("blur-ids", "", "Comma-separated track IDs to blur (mutually exclusive with --exclude-ids)")
	excludeIDs := flag.String("exclude-ids", "", "Comma-separated track IDs to preserve")
	quality := flag.Int("quality", -1, "H.264 CRF encoder hint")
	audioKeywords := flag.String("audio-keywords", "", "Comma-separated keywords that trigger a bleep")
	voiceDisguise := flag.String("voice-disguise", "", "off, low, medium, or high")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: faceguard [flags] <input> [output]")
		os.Exit(2)
	}
	inputPath := args[0]
	var outputPath string
	if len(args) > 1 {
		outputPath = args[1]
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, flagOverrides{
		confidence:    *confidence,
		blurStrength:  *blurStrength,
		blurShape:     *blurShape,
		lookahead:     *lookahead,
		skipFrames:    *skipFrames,
		blurIDs:       *blurIDs,
		excludeIDs:    *excludeIDs,
		quality:       *quality,
		audioKeywords: *audioKeywords,
		voiceDisguise: *voiceDisguise,
	})
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration after flag overrides", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal, cancelling job", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, inputPath, outputPath, *previewDir); err != nil {
		slog.Error("job failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

type flagOverrides struct {
	confidence                float64
	blurStrength, lookahead   int
	skipFrames, quality       int
	blurShape, blurIDs        string
	excludeIDs, audioKeywords string
	voiceDisguise             string
}

// applyFlagOverrides layers explicitly-set CLI flags on top of cfg,
// the way a tool that supports both a config file and ad-hoc flags
// should: a flag left at its sentinel default never clobbers the
// config file's value.
func applyFlagOverrides(cfg *config.Config, f flagOverrides) {
	if f.confidence >= 0 {
		cfg.Detector.Confidence = f.confidence
	}
	if f.blurStrength > 0 {
		cfg.Blur.Strength = f.blurStrength
	}
	if f.blurShape != "" {
		cfg.Blur.Shape = f.blurShape
	}
	if f.lookahead > 0 {
		cfg.Pipeline.LookaheadFrames = f.lookahead
	}
	if f.skipFrames > 0 {
		cfg.Pipeline.SkipFrames = f.skipFrames
	}
	if f.quality >= 0 {
		cfg.Output.Quality = f.quality
	}
	if f.blurIDs != "" {
		cfg.Output.BlurIDs = parseIDList(f.blurIDs)
		cfg.Output.ExcludeIDs = nil
	}
	if f.excludeIDs != "" {
		cfg.Output.ExcludeIDs = parseIDList(f.excludeIDs)
		cfg.Output.BlurIDs = nil
	}
	if f.audioKeywords != "" {
		cfg.Audio.Keywords = strings.Split(f.audioKeywords, ",")
	}
	if f.voiceDisguise != "" {
		cfg.Audio.VoiceDisguise = f.voiceDisguise
	}
}

func parseIDList(s string) []uint32 {
	parts := strings.Split(s, ",")
	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint32(n))
	}
	return ids
}

func idSet(ids []uint32) map[uint32]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tiff": true}

func isImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

func run(ctx context.Context, cfg *config.Config, inputPath, outputPath, previewDir string) error {
	metrics := telemetry.NewNoop()
	jobID := uuid.NewString()
	start := time.Now()
	metrics.RecordJobStart(ctx, jobID)
	defer func() { metrics.RecordJobEnd(ctx, jobID, time.Since(start).Seconds()) }()

	cacheDir := cfg.Models.CacheDir
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		cacheDir = filepath.Join(dir, "faceguard", "models")
	}
	modelResolver, err := resolver.New(cacheDir)
	if err != nil {
		return fmt.Errorf("faceguard: build model resolver: %w", err)
	}

	detectorModelPath, err := modelResolver.Resolve(ctx, resolver.ModelSpec{
		Name:      cfg.Models.DetectorModel.Name,
		SourceURL: cfg.Models.DetectorModel.SourceURL,
	}, logProgress("detector model"))
	if err != nil {
		return fmt.Errorf("faceguard: resolve detector model: %w", err)
	}

	detector, closeDetector, err := buildDetector(detectorModelPath, cfg)
	if err != nil {
		return fmt.Errorf("faceguard: build detector: %w", err)
	}
	defer closeDetector()

	blurShape := blur.ShapeElliptical
	if cfg.Blur.Shape == "rect" {
		blurShape = blur.ShapeRectangular
	}
	blurrer := blur.NewFactory(blurShape, cfg.Blur.Strength, slog.Default())

	cancelled := &atomic.Bool{}
	onProgress := func(processed, total int) bool {
		fmt.Fprintf(os.Stderr, "\rprocessed %d/%d frames", processed, total)
		return ctx.Err() == nil
	}

	if outputPath == "" && previewDir == "" {
		return fmt.Errorf("faceguard: output path is required unless --preview is set")
	}

	// BlurImage opens its own reader/writer, so an image job with no
	// preview never needs the shared reader below.
	if isImagePath(inputPath) && previewDir == "" {
		return usecase.NewBlurImage(imageio.NewReader(), imageio.NewWriter(), detector, blurrer,
			idSet(cfg.Output.BlurIDs), idSet(cfg.Output.ExcludeIDs)).
			Execute(ctx, inputPath, outputPath)
	}

	var reader videoio.Reader
	var writer videoio.Writer
	if isImagePath(inputPath) {
		reader = imageio.NewReader()
		writer = imageio.NewWriter()
	} else {
		reader = videoio.NewGstReader()
		writer = videoio.NewGstWriter()
	}

	metadata, err := reader.Open(inputPath)
	if err != nil {
		return fmt.Errorf("faceguard: open input: %w", err)
	}

	if previewDir != "" {
		defer reader.Close()
		result, err := usecase.NewPreviewFaces(reader, detector, onProgress).Execute(ctx, metadata, previewDir)
		if err != nil {
			return fmt.Errorf("faceguard: preview: %w", err)
		}
		fmt.Fprintf(os.Stderr, "\nsaved %d face thumbnail(s) to %s\n", len(result.Crops), previewDir)
		return nil
	}

	merger := detect.NewMerger()
	blurFaces := usecase.NewBlurFaces(reader, writer, detector, blurrer, merger,
		cfg.Pipeline.LookaheadFrames, idSet(cfg.Output.BlurIDs), idSet(cfg.Output.ExcludeIDs), onProgress, cancelled)

	if err := blurFaces.Execute(ctx, metadata, outputPath); err != nil {
		return fmt.Errorf("faceguard: blur: %w", err)
	}
	fmt.Fprintln(os.Stderr)

	if len(cfg.Audio.Keywords) > 0 || cfg.Audio.VoiceDisguise != "off" {
		if err := runAudioPass(ctx, cfg, modelResolver, outputPath); err != nil {
			slog.Warn("audio pass failed, output video keeps its original audio", "error", err)
		}
	}

	return nil
}

func buildDetector(modelPath string, cfg *config.Config) (detect.Detector, func(), error) {
	smoother := detect.NewDefaultEMASmoother()
	regionBuilder := detect.NewRegionBuilder(detect.DefaultPadding, smoother)
	tracker := detect.NewByteTracker(30)

	base, err := onnxyolo.New(modelPath, defaultInputSize, regionBuilder, tracker, cfg.Detector.Confidence)
	if err != nil {
		return nil, func() {}, err
	}

	skipped, err := detect.NewSkipFrameDecorator(base, cfg.Pipeline.SkipFrames)
	if err != nil {
		return nil, func() { base.Close() }, err
	}
	return skipped, func() { base.Close() }, nil
}

func runAudioPass(ctx context.Context, cfg *config.Config, modelResolver *resolver.Resolver, outputPath string) error {
	var recognizer audio.Recognizer
	if len(cfg.Audio.Keywords) > 0 {
		modelPath, err := modelResolver.Resolve(ctx, resolver.ModelSpec{
			Name:      cfg.Models.RecognizerModel.Name,
			SourceURL: cfg.Models.RecognizerModel.SourceURL,
		}, logProgress("recognizer model"))
		if err != nil {
			return fmt.Errorf("resolve recognizer model: %w", err)
		}
		r, err := whisperasr.New(modelPath, "en")
		if err != nil {
			return fmt.Errorf("load recognizer: %w", err)
		}
		defer r.Close()
		recognizer = r
	}

	var transformer audio.Transformer
	switch cfg.Audio.VoiceDisguise {
	case "low":
		transformer = audio.NewVoiceDisguise(audio.TierLow)
	case "medium":
		transformer = audio.NewVoiceDisguise(audio.TierMedium)
	case "high":
		transformer = audio.NewVoiceDisguise(audio.TierHigh)
	}

	pass := audio.NewPass(audio.NewGstReader(), audio.NewGstWriter(), recognizer, transformer, cfg.Audio.Keywords, audio.BleepTone)
	return pass.Run(ctx, outputPath, outputPath)
}

func logProgress(label string) func(downloaded, total int64) {
	return func(downloaded, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\rdownloading %s: %d/%d bytes", label, downloaded, total)
		}
	}
}
