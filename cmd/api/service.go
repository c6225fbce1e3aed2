package main

import (
	"context"

	"github.com/Quickstand/PhotoVault/internal/model"
)

type PhotoAPIService interface {
	Ingest(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error)
	PurgeAll(ctx context.Context) error
	ListUsers(ctx context.Context) ([]model.User, error)
	ListAssets(ctx context.Context, ownerID *int64) ([]model.Asset, error)
	FetchAsset(ctx context.Context, assetID int64) (*model.Asset, []byte, error)
	AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error)
	SearchLabels(ctx context.Context, fragment string) ([]model.AssetLabel, error)
}
