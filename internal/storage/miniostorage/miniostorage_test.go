package miniostorage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

// newStubStorage поднимает httptest-заглушку S3-эндпоинта и клиента поверх нее
func newStubStorage(t *testing.T, handler http.HandlerFunc) *MinioImageStorage {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("stub", "stub", ""),
		Secure: false,
		Region: "us-east-1", // без региона клиент ходил бы за GetBucketLocation
	})
	require.NoError(t, err)

	return &MinioImageStorage{bucket: "photoapp", client: client}
}

// DELETE - ABSENT KEY IS NOT AN ERROR
// Хранилище отвечает 204 на удаление независимо от существования ключа,
// поэтому компенсация и повторная компенсация одного ключа безопасны.
func TestMinioImageStorage_Delete_AbsentKeyIsNoError(t *testing.T) {
	var deletes int32
	strg := newStubStorage(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/photoapp/p_sarkar/k-orphan", r.URL.Path)
		atomic.AddInt32(&deletes, 1)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, strg.Delete(ctx, "p_sarkar/k-orphan"))
	require.NoError(t, strg.Delete(ctx, "p_sarkar/k-orphan")) // повтор того же ключа
	require.Equal(t, int32(2), atomic.LoadInt32(&deletes))
}

// PUT - EMPTY PAYLOAD REJECTED BEFORE THE WIRE
func TestMinioImageStorage_Put_EmptyPayload(t *testing.T) {
	strg := newStubStorage(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the endpoint")
	})

	err := strg.Put(context.Background(), "p_sarkar/k1", nil, "image/jpeg")
	require.Error(t, err)
}
