// Package gvision labels stored images through the Google Cloud Vision API
package gvision

import (
	"bytes"
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"

	"github.com/Quickstand/PhotoVault/internal/model"
)

// BlobSource - откуда брать байты по bucket-ключу; Vision не умеет ходить
// в наш minio напрямую, поэтому объект выкачивается и шлется контентом
type BlobSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type LabelDetector struct {
	client        *vision.ImageAnnotatorClient
	source        BlobSource
	maxLabels     int
	minConfidence float64
}

func New(ctx context.Context, source BlobSource, maxLabels int, minConfidence float64) (*LabelDetector, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &LabelDetector{
		client:        client,
		source:        source,
		maxLabels:     maxLabels,
		minConfidence: minConfidence,
	}, nil
}

// Classify fetches the object stored under key and returns its labels.
// Scores are reported on a 0-100 scale to match the configured threshold.
// Any failure here is an ordinary server-side fault for the caller.
func (d *LabelDetector) Classify(ctx context.Context, key string) ([]model.DetectedLabel, error) {
	data, err := d.source.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch blob %q for classification: %w", key, err)
	}

	img, err := vision.NewImageFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build vision image for %q: %w", key, err)
	}

	annotations, err := d.client.DetectLabels(ctx, img, nil, d.maxLabels)
	if err != nil {
		return nil, fmt.Errorf("detect labels for %q: %w", key, err)
	}

	labels := make([]model.DetectedLabel, 0, len(annotations))
	for _, ann := range annotations {
		confidence := float64(ann.GetScore()) * 100
		if confidence < d.minConfidence {
			continue
		}
		labels = append(labels, model.DetectedLabel{
			Label:      ann.GetDescription(),
			Confidence: confidence,
		})
	}

	return labels, nil
}

func (d *LabelDetector) Close() error {
	return d.client.Close()
}
