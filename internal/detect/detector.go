// Package detect implements face region detection: converting raw model
// output into stable, smoothed, edge-aware blur regions.
package detect

import (
	"context"

	"github.com/neutrinographics/faceguard/internal/core"
)

// Detector produces face regions for a single decoded frame.
type Detector interface {
	Detect(ctx context.Context, frame core.Frame) ([]core.Region, error)
}
