package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Quickstand/PhotoVault/internal/mwlogger"
)

const (
	eventAssetCreated = "asset_created"
	eventAssetsPurged = "assets_purged"
)

type assetEvent struct {
	Event   string `json:"event"`
	AssetID int64  `json:"assetid,omitempty"`
	Count   int64  `json:"count,omitempty"`
}

// publishEvent emits a post-commit notification for downstream consumers.
// The operation it reports has already succeeded, so a publish failure is
// logged and swallowed.
func (s *PhotoService) publishEvent(ctx context.Context, name string, value int64) {
	if s.publisher == nil {
		return
	}

	ev := assetEvent{Event: name}
	switch name {
	case eventAssetCreated:
		ev.AssetID = value
	case eventAssetsPurged:
		ev.Count = value
	}

	logger := mwlogger.LoggerFromContext(ctx)

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal event payload")
		return
	}

	key := []byte(strconv.FormatInt(value, 10))
	if err := s.publisher.SendWithRetry(ctx, publishStrategy, key, payload); err != nil {
		logger.Error().Err(err).Msg("Failed to publish event to task-queue")
	}
}
