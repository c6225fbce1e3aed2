// Package repository provides methods to work with DB
package repository

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"time"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/Quickstand/PhotoVault/internal/repository/photopg"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

// Session - транзакционная сессия на одном соединении; один логический
// запрос = одна сессия, между ретраями не переиспользуется
type Session interface {
	Users(ctx context.Context) ([]model.User, error)
	Username(ctx context.Context, userID int64) (string, error)
	InsertAsset(ctx context.Context, userID int64, localName, bucketKey string) (int64, error)
	InsertLabel(ctx context.Context, assetID int64, label string, confidence float64) error
	Assets(ctx context.Context, userID *int64) ([]model.Asset, error)
	Asset(ctx context.Context, assetID int64) (*model.Asset, error)
	AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error)
	LabelSearch(ctx context.Context, fragment string) ([]model.AssetLabel, error)
	BucketKeys(ctx context.Context) ([]string, error)
	PurgeAll(ctx context.Context) error

	Commit() error
	Rollback()
	Close()
}

// SessionOpener выдает свежую сессию на каждый вызов
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

type pgOpener struct {
	db *dbpg.DB
}

func (o pgOpener) Open(ctx context.Context) (Session, error) {
	return photopg.Open(ctx, o.db)
}

func NewPostgresOpener(dbconn *dbpg.DB) SessionOpener {
	return pgOpener{db: dbconn}
}

func ConnectWithRetries(appConfig *config.Config, retryCount int, idleTime time.Duration) *dbpg.DB {
	dbOptions := dbpg.Options{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
	}
	dsnLink := appConfig.GetString("POSTGRES_DSN")
	var dbConn *dbpg.DB
	var err error

	for i := 0; i < retryCount; i++ {
		dbConn, err = dbpg.New(dsnLink, nil, &dbOptions)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to PGDB: %s\nWaiting %v before next retry...", err, idleTime)
		time.Sleep(idleTime)
	}

	if err != nil {
		log.Fatal("Failed to connect to DB. Exiting the app...")
	}

	return dbConn
}

func MigrateWithRetries(db *sql.DB, migrationsPath string, retries int, idle time.Duration) {
	if err := migrateWithRetries(db, migrationsPath, retries, idle); err != nil {
		log.Fatalln("Out of migration retries. Exiting...")
	}
}

func migrateWithRetries(db *sql.DB, migrationsPath string, retries int, idle time.Duration) error {
	var err error
	for i := 0; i < retries; i++ {
		log.Printf("Migration try #%d...", i)
		err = runMigrate(db, migrationsPath)
		if err == nil {
			return nil
		}
		if i < retries-1 {
			log.Printf("Migration try #%d was unsuccessful. Waiting %v before next try...", i, idle)
			time.Sleep(idle)
		}
	}
	return err
}

func runMigrate(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return err
	}

	sourceURL := "file://" + absPath
	log.Println("Running migrations from:", sourceURL)

	m, err := migrate.NewWithDatabaseInstance(
		sourceURL,
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	log.Println("Database migrations applied successfully")
	return nil
}
