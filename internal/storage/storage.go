// Package storage wires the object-store client used for photo blobs
package storage

import (
	"log"
	"time"

	"github.com/Quickstand/PhotoVault/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

// NewPhotoStorage connects to the object store with a bounded number of
// attempts; like the DB connect helper, startup aborts on exhaustion
// instead of serving requests without blob storage.
func NewPhotoStorage(cfg *config.Config, retryCount int, delay time.Duration) *miniostorage.MinioImageStorage {
	var client *miniostorage.MinioImageStorage
	var err error

	for i := 0; i < retryCount; i++ {
		log.Println("Connecting to photo storage...")
		client, err = miniostorage.NewMinioClient(cfg)
		if err == nil {
			log.Println("Successfully connected to photo storage")
			return client
		}
		log.Printf("Failed to init connection to photo storage: %v\nNext retry in %v...", err, delay)
		time.Sleep(delay)
	}

	log.Fatal("Failed to connect to photo storage. Exiting the app...")
	return nil
}
