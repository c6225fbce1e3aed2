// Package photopg implements the transactional session over one Postgres
// connection
package photopg

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

// PgSession держит ровно одно соединение и одну открытую транзакцию.
// Close обязан вызываться на каждом пути выхода - он возвращает
// соединение в пул независимо от исхода транзакции.
type PgSession struct {
	conn *sql.Conn
	tx   *sql.Tx
	done bool
}

func Open(ctx context.Context, db *dbpg.DB) (*PgSession, error) {
	conn, err := db.Master.Conn(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		// соединение уже занято - вернуть в пул прямо здесь
		if errClose := conn.Close(); errClose != nil {
			log.Println("Failed to release DB-conn after BeginTx error:", errClose)
		}
		return nil, err
	}

	return &PgSession{conn: conn, tx: tx}, nil
}

func (s *PgSession) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Rollback is log-only: the error that led here stays authoritative.
func (s *PgSession) Rollback() {
	if s.done {
		return
	}
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Println("Failed to rollback transaction:", err)
	}
	s.done = true
}

func (s *PgSession) Close() {
	if !s.done {
		s.Rollback()
	}
	if err := s.conn.Close(); err != nil {
		log.Println("Failed to release DB-conn:", err)
	}
}

//-------------------

func (s *PgSession) Users(ctx context.Context) ([]model.User, error) {
	query := `SELECT userid, username, givenname, familyname
	FROM users
	ORDER BY userid ASC`

	rows, err := s.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.Username, &u.GivenName, &u.FamilyName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

func (s *PgSession) Username(ctx context.Context, userID int64) (string, error) {
	query := `SELECT username FROM users WHERE userid = $1`

	var username string
	if err := s.tx.QueryRowContext(ctx, query, userID).Scan(&username); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", model.ErrNoSuchUser // 400
		default:
			return "", err // 500
		}
	}
	return username, nil
}

func (s *PgSession) InsertAsset(ctx context.Context, userID int64, localName, bucketKey string) (int64, error) {
	query := `INSERT INTO assets (userid, localname, bucketkey)
	VALUES ($1, $2, $3)
	RETURNING assetid`

	var assetID int64
	if err := s.tx.QueryRowContext(ctx, query, userID, localName, bucketKey).Scan(&assetID); err != nil {
		return 0, err
	}
	return assetID, nil
}

func (s *PgSession) InsertLabel(ctx context.Context, assetID int64, label string, confidence float64) error {
	query := `INSERT INTO labels (assetid, label, confidence)
	VALUES ($1, $2, $3)`

	_, err := s.tx.ExecContext(ctx, query, assetID, label, confidence)
	return err
}

func (s *PgSession) Assets(ctx context.Context, userID *int64) ([]model.Asset, error) {
	query := `SELECT assetid, userid, localname, bucketkey
	FROM assets
	ORDER BY assetid ASC`
	args := []any{}

	// валидность userid не проверяется: чужой/несуществующий id дает пустой список
	if userID != nil {
		query = `SELECT assetid, userid, localname, bucketkey
	FROM assets
	WHERE userid = $1
	ORDER BY assetid ASC`
		args = append(args, *userID)
	}

	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	assets := make([]model.Asset, 0)
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.AssetID, &a.UserID, &a.LocalName, &a.BucketKey); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return assets, nil
}

func (s *PgSession) Asset(ctx context.Context, assetID int64) (*model.Asset, error) {
	query := `SELECT assetid, userid, localname, bucketkey
	FROM assets
	WHERE assetid = $1`

	var a model.Asset
	err := s.tx.QueryRowContext(ctx, query, assetID).Scan(&a.AssetID, &a.UserID, &a.LocalName, &a.BucketKey)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrNoSuchAsset // 400
		default:
			return nil, err // 500
		}
	}
	return &a, nil
}

func (s *PgSession) AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error) {
	query := `SELECT label, confidence
	FROM labels
	WHERE assetid = $1
	ORDER BY label ASC`

	rows, err := s.tx.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	labels := make([]model.Label, 0)
	for rows.Next() {
		var l model.Label
		if err := rows.Scan(&l.Label, &l.Confidence); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return labels, nil
}

func (s *PgSession) LabelSearch(ctx context.Context, fragment string) ([]model.AssetLabel, error) {
	query := `SELECT assetid, label, confidence
	FROM labels
	WHERE label ILIKE '%' || $1 || '%'
	ORDER BY assetid ASC, label ASC`

	rows, err := s.tx.QueryContext(ctx, query, fragment)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	matches := make([]model.AssetLabel, 0)
	for rows.Next() {
		var m model.AssetLabel
		if err := rows.Scan(&m.AssetID, &m.Label, &m.Confidence); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return matches, nil
}

func (s *PgSession) BucketKeys(ctx context.Context) ([]string, error) {
	query := `SELECT bucketkey FROM assets`

	rows, err := s.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	keys := make([]string, 0)
	for rows.Next() {
		key := ""
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return keys, nil
}

// PurgeAll clears labels and assets and restarts the id sequences at their
// original start values. Runs inside the session's transaction: either the
// whole purge commits or none of it does.
func (s *PgSession) PurgeAll(ctx context.Context) error {
	// порядок важен из-за FK labels -> assets
	statements := []string{
		`DELETE FROM labels`,
		`DELETE FROM assets`,
		`ALTER SEQUENCE assets_assetid_seq RESTART WITH 1001`,
		`ALTER SEQUENCE labels_labelid_seq RESTART WITH 2001`,
	}

	for _, query := range statements {
		if _, err := s.tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("Error while closing *sql.Rows after scanning: %v", err)
	}
}
