package blur

import (
	"log/slog"

	"github.com/neutrinographics/faceguard/internal/blur/cpublur"
	"github.com/neutrinographics/faceguard/internal/blur/gpublur"
)

// NewFactory builds the best available Blurrer for shape, preferring
// the GPU backend when a compute adapter is available, falling back
// to the CPU backend otherwise. The probe runs exactly once, at job
// start.
func NewFactory(shape Shape, kernelSize int, logger *slog.Logger) Blurrer {
	switch shape {
	case ShapeRectangular:
		if b, ok := gpublur.ProbeRectangular(kernelSize); ok {
			logger.Info("using GPU backend for blur", "shape", shape, "kernel_size", kernelSize)
			return b
		}
	default:
		if b, ok := gpublur.Probe(kernelSize); ok {
			logger.Info("using GPU backend for blur", "shape", shape, "kernel_size", kernelSize)
			return b
		}
	}

	logger.Info("no GPU available, using CPU backend for blur", "shape", shape, "kernel_size", kernelSize)
	switch shape {
	case ShapeRectangular:
		return cpublur.NewRectangularBlurrer(kernelSize)
	default:
		return cpublur.NewEllipticalBlurrer(kernelSize)
	}
}
