package classify

import (
	"context"
	"log"
	"strconv"

	"github.com/Quickstand/PhotoVault/internal/classify/gvision"
	"github.com/wb-go/wbf/config"
)

const (
	defaultMaxLabels     = 100
	defaultMinConfidence = 80.0
)

// NewLabelDetector reads the label-detection thresholds from config and
// builds the Vision-backed classifier. Credentials come from the standard
// GOOGLE_APPLICATION_CREDENTIALS environment (ADC).
func NewLabelDetector(ctx context.Context, cfg *config.Config, source gvision.BlobSource) (*gvision.LabelDetector, error) {
	maxLabels := defaultMaxLabels
	if raw := cfg.GetString("MAX_LABELS"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			log.Printf("Incorrect MAX_LABELS value %q. Using default %d...", raw, defaultMaxLabels)
		} else {
			maxLabels = val
		}
	}

	minConfidence := defaultMinConfidence
	if raw := cfg.GetString("MIN_CONFIDENCE"); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || val < 0 {
			log.Printf("Incorrect MIN_CONFIDENCE value %q. Using default %v...", raw, defaultMinConfidence)
		} else {
			minConfidence = val
		}
	}

	return gvision.New(ctx, source, maxLabels, minConfidence)
}
