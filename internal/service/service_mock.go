package service

import (
	"context"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/Quickstand/PhotoVault/internal/repository"
	"github.com/wb-go/wbf/retry"
)

// MOCK SESSION + OPENER

type mockSession struct {
	usersFn       func(ctx context.Context) ([]model.User, error)
	usernameFn    func(ctx context.Context, userID int64) (string, error)
	insertAssetFn func(ctx context.Context, userID int64, localName, bucketKey string) (int64, error)
	insertLabelFn func(ctx context.Context, assetID int64, label string, confidence float64) error
	assetsFn      func(ctx context.Context, userID *int64) ([]model.Asset, error)
	assetFn       func(ctx context.Context, assetID int64) (*model.Asset, error)
	assetLabelsFn func(ctx context.Context, assetID int64) ([]model.Label, error)
	labelSearchFn func(ctx context.Context, fragment string) ([]model.AssetLabel, error)
	bucketKeysFn  func(ctx context.Context) ([]string, error)
	purgeAllFn    func(ctx context.Context) error
	commitFn      func() error

	commits   int
	rollbacks int
	closes    int
}

func (m *mockSession) Users(ctx context.Context) ([]model.User, error) {
	return m.usersFn(ctx)
}

func (m *mockSession) Username(ctx context.Context, userID int64) (string, error) {
	return m.usernameFn(ctx, userID)
}

func (m *mockSession) InsertAsset(ctx context.Context, userID int64, localName, bucketKey string) (int64, error) {
	return m.insertAssetFn(ctx, userID, localName, bucketKey)
}

func (m *mockSession) InsertLabel(ctx context.Context, assetID int64, label string, confidence float64) error {
	return m.insertLabelFn(ctx, assetID, label, confidence)
}

func (m *mockSession) Assets(ctx context.Context, userID *int64) ([]model.Asset, error) {
	return m.assetsFn(ctx, userID)
}

func (m *mockSession) Asset(ctx context.Context, assetID int64) (*model.Asset, error) {
	return m.assetFn(ctx, assetID)
}

func (m *mockSession) AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error) {
	return m.assetLabelsFn(ctx, assetID)
}

func (m *mockSession) LabelSearch(ctx context.Context, fragment string) ([]model.AssetLabel, error) {
	return m.labelSearchFn(ctx, fragment)
}

func (m *mockSession) BucketKeys(ctx context.Context) ([]string, error) {
	return m.bucketKeysFn(ctx)
}

func (m *mockSession) PurgeAll(ctx context.Context) error {
	return m.purgeAllFn(ctx)
}

func (m *mockSession) Commit() error {
	m.commits++
	if m.commitFn != nil {
		return m.commitFn()
	}
	return nil
}

func (m *mockSession) Rollback() {
	m.rollbacks++
}

func (m *mockSession) Close() {
	m.closes++
}

type mockOpener struct {
	openFn func(ctx context.Context) (repository.Session, error)
	opens  int
}

func (m *mockOpener) Open(ctx context.Context) (repository.Session, error) {
	m.opens++
	return m.openFn(ctx)
}

// openerOf wraps a single session for tests where every attempt may reuse
// the same recording mock.
func openerOf(sess *mockSession) *mockOpener {
	return &mockOpener{
		openFn: func(ctx context.Context) (repository.Session, error) {
			return sess, nil
		},
	}
}

// MOCK STORAGE

type mockStorage struct {
	putFn        func(ctx context.Context, key string, data []byte, contentType string) error
	getFn        func(ctx context.Context, key string) ([]byte, error)
	deleteFn     func(ctx context.Context, key string) error
	bulkDeleteFn func(ctx context.Context, keys []string)

	puts        int
	deletes     int
	bulkDeletes int
}

func (m *mockStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.puts++
	if m.putFn != nil {
		return m.putFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deletes++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStorage) BulkDelete(ctx context.Context, keys []string) {
	m.bulkDeletes++
	if m.bulkDeleteFn != nil {
		m.bulkDeleteFn(ctx, keys)
	}
}

// MOCK CLASSIFIER

type mockClassifier struct {
	classifyFn func(ctx context.Context, key string) ([]model.DetectedLabel, error)
}

func (m *mockClassifier) Classify(ctx context.Context, key string) ([]model.DetectedLabel, error) {
	return m.classifyFn(ctx, key)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
	sends  int
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	m.sends++
	if m.sendFn != nil {
		return m.sendFn(ctx, s, key, v)
	}
	return nil
}
