// Package service provides business-logic for the app
package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/Quickstand/PhotoVault/internal/mwlogger"
	"github.com/Quickstand/PhotoVault/internal/repository"
	"github.com/Quickstand/PhotoVault/internal/retrier"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

// DefaultLocalName подставляется если клиент не прислал имя файла
const DefaultLocalName = "image.jpg"

type PhotoService struct {
	repo       repository.SessionOpener
	storage    ImageStorage
	classifier LabelClassifier
	publisher  EventPublisher
	strategy   retry.Strategy
}

func NewPhotoService(repo repository.SessionOpener, strg ImageStorage, clf LabelClassifier, pub EventPublisher) *PhotoService {
	return &PhotoService{
		repo:       repo,
		storage:    strg,
		classifier: clf,
		publisher:  pub,
		strategy:   retrier.DefaultStrategy,
	}
}

// ImageStorage - контракт для работы с хранилищем
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	BulkDelete(ctx context.Context, keys []string)
}

// LabelClassifier - контракт сервиса классификации
type LabelClassifier interface {
	Classify(ctx context.Context, key string) ([]model.DetectedLabel, error)
}

// EventPublisher - контракт для отправки событий в очередь
type EventPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// Стратегия ретрая отправки событий - можно потом вынести значения в конфиг/env
var publishStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

//-------------------

// ingestState is threaded through the ingestion steps so the failure path
// knows exactly what to compensate. Once uploaded is set, every error must
// end with a best-effort delete of bucketKey.
type ingestState struct {
	bucketKey string
	uploaded  bool
	assetID   int64
}

// Ingest stores the image bytes, inserts the asset row and its labels in
// one transaction, and returns the generated asset id. On failure the
// returned id is -1 and the store holds no trace of the attempt (except
// the documented crash window between upload and compensation).
func (s *PhotoService) Ingest(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(data) == 0 {
		return -1, model.ErrMissingData
	}
	if localName == "" {
		localName = DefaultLocalName
	}

	var assetID int64 = -1
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		id, err := s.ingestOnce(ctx, ownerID, localName, data)
		if err != nil {
			return err
		}
		assetID = id
		return nil
	})
	if err != nil {
		if !model.IsClientErr(err) {
			logger.Error().Err(err).Msg("Failed to ingest image")
		}
		return -1, err
	}

	s.publishEvent(ctx, eventAssetCreated, assetID)
	return assetID, nil
}

// одна попытка саги: свежая сессия, при любом сбое - откат и компенсация
func (s *PhotoService) ingestOnce(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error) {
	sess, err := s.repo.Open(ctx)
	if err != nil {
		return -1, err
	}
	defer sess.Close()

	st := &ingestState{}
	if err := s.ingestSteps(ctx, sess, st, ownerID, localName, data); err != nil {
		sess.Rollback()
		if st.uploaded {
			s.compensateUpload(ctx, st.bucketKey)
		}
		return -1, err
	}

	return st.assetID, nil
}

func (s *PhotoService) ingestSteps(ctx context.Context, sess repository.Session, st *ingestState, ownerID int64, localName string, data []byte) error {
	// владелец проверяется в той же транзакции, что и вставка;
	// клиентская ошибка - до аплоада, компенсировать нечего
	username, err := sess.Username(ctx, ownerID)
	if err != nil {
		return err
	}

	st.bucketKey = fmt.Sprintf("%s/%s-%s", username, uuid.New().String(), localName)

	if err := s.storage.Put(ctx, st.bucketKey, data, http.DetectContentType(data)); err != nil {
		return err
	}
	st.uploaded = true // граница компенсации

	st.assetID, err = sess.InsertAsset(ctx, ownerID, localName, st.bucketKey)
	if err != nil {
		return err
	}

	// сбой классификации равен сбою базы: полный откат
	labels, err := s.classifier.Classify(ctx, st.bucketKey)
	if err != nil {
		return err
	}

	for _, l := range labels {
		if err := sess.InsertLabel(ctx, st.assetID, l.Label, l.Confidence); err != nil {
			return err
		}
	}

	return sess.Commit()
}

// compensateUpload is log-only: the original error stays authoritative.
func (s *PhotoService) compensateUpload(ctx context.Context, bucketKey string) {
	if err := s.storage.Delete(ctx, bucketKey); err != nil {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete orphaned object %q after ingest failure", bucketKey))
	}
}

//-------------------

// PurgeAll wipes every asset and label row and then clears the bucket.
// The object store is only touched after the relational clear committed:
// under-deleting is safe, deleting before the record of what to delete is
// durable is not.
func (s *PhotoService) PurgeAll(ctx context.Context) error {
	logger := mwlogger.LoggerFromContext(ctx)

	var keys []string
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		snapshot, err := sess.BucketKeys(ctx)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.PurgeAll(ctx); err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil {
			return err
		}

		keys = snapshot
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge assets from DB")
		return err
	}

	s.storage.BulkDelete(ctx, keys)
	s.publishEvent(ctx, eventAssetsPurged, int64(len(keys)))
	return nil
}

//-------------------

// ListUsers returns every user row ordered by id.
func (s *PhotoService) ListUsers(ctx context.Context) ([]model.User, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	var users []model.User
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.Users(ctx)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil {
			return err
		}

		users = res
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch users list from DB")
		return nil, err
	}

	return users, nil
}

func (s *PhotoService) ListAssets(ctx context.Context, ownerID *int64) ([]model.Asset, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	var assets []model.Asset
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.Assets(ctx, ownerID)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil { // read-only коммит для симметрии сессий
			return err
		}

		assets = res
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch assets list from DB")
		return nil, err
	}

	return assets, nil
}

// FetchAsset returns the metadata row and the blob bytes for one asset.
func (s *PhotoService) FetchAsset(ctx context.Context, assetID int64) (*model.Asset, []byte, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	var asset *model.Asset
	var blob []byte
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		a, err := sess.Asset(ctx, assetID)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil {
			return err
		}

		b, err := s.storage.Get(ctx, a.BucketKey)
		if err != nil {
			return err
		}

		asset, blob = a, b
		return nil
	})
	if err != nil {
		if !model.IsClientErr(err) {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch asset %d", assetID))
		}
		return nil, nil, err
	}

	return asset, blob, nil
}

func (s *PhotoService) AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	var labels []model.Label
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		// сперва убеждаемся что ассет существует - иначе это 400, а не пустой список
		if _, err := sess.Asset(ctx, assetID); err != nil {
			sess.Rollback()
			return err
		}

		res, err := sess.AssetLabels(ctx, assetID)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil {
			return err
		}

		labels = res
		return nil
	})
	if err != nil {
		if !model.IsClientErr(err) {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch labels for asset %d", assetID))
		}
		return nil, err
	}

	return labels, nil
}

// SearchLabels finds labels by case-insensitive substring. No match is a
// successful empty result.
func (s *PhotoService) SearchLabels(ctx context.Context, fragment string) ([]model.AssetLabel, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if fragment == "" {
		return nil, model.ErrMissingLabel
	}

	var matches []model.AssetLabel
	err := retrier.Do(ctx, s.strategy, func(ctx context.Context) error {
		sess, err := s.repo.Open(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.LabelSearch(ctx, fragment)
		if err != nil {
			sess.Rollback()
			return err
		}
		if err := sess.Commit(); err != nil {
			return err
		}

		matches = res
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to search labels by %q", fragment))
		return nil, err
	}

	return matches, nil
}
