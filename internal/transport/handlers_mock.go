package transport

import (
	"context"

	"github.com/Quickstand/PhotoVault/internal/model"
)

// MOCK SERVICE

type mockPhotoService struct {
	ingestFn       func(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error)
	purgeAllFn     func(ctx context.Context) error
	listUsersFn    func(ctx context.Context) ([]model.User, error)
	listAssetsFn   func(ctx context.Context, ownerID *int64) ([]model.Asset, error)
	fetchAssetFn   func(ctx context.Context, assetID int64) (*model.Asset, []byte, error)
	assetLabelsFn  func(ctx context.Context, assetID int64) ([]model.Label, error)
	searchLabelsFn func(ctx context.Context, fragment string) ([]model.AssetLabel, error)
}

func (m *mockPhotoService) Ingest(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error) {
	return m.ingestFn(ctx, ownerID, localName, data)
}

func (m *mockPhotoService) PurgeAll(ctx context.Context) error {
	return m.purgeAllFn(ctx)
}

func (m *mockPhotoService) ListUsers(ctx context.Context) ([]model.User, error) {
	return m.listUsersFn(ctx)
}

func (m *mockPhotoService) ListAssets(ctx context.Context, ownerID *int64) ([]model.Asset, error) {
	return m.listAssetsFn(ctx, ownerID)
}

func (m *mockPhotoService) FetchAsset(ctx context.Context, assetID int64) (*model.Asset, []byte, error) {
	return m.fetchAssetFn(ctx, assetID)
}

func (m *mockPhotoService) AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error) {
	return m.assetLabelsFn(ctx, assetID)
}

func (m *mockPhotoService) SearchLabels(ctx context.Context, fragment string) ([]model.AssetLabel, error) {
	return m.searchLabelsFn(ctx, fragment)
}
