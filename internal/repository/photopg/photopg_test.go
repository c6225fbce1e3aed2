package photopg

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newSessionWithMock(t *testing.T) (*PgSession, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()

	sess, err := Open(context.Background(), &dbpg.DB{Master: db})
	require.NoError(t, err)

	return sess, mock
}

// OPEN - BEGIN FAILS
func TestOpen_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("db down"))

	_, err = Open(context.Background(), &dbpg.DB{Master: db})
	require.Error(t, err)
}

// USERS - ORDERED BY ID
func TestPgSession_Users_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	rows := sqlmock.NewRows([]string{"userid", "username", "givenname", "familyname"}).
		AddRow(int64(80001), "p_sarkar", "Priya", "Sarkar").
		AddRow(int64(80002), "e_ricci", "Elena", "Ricci")

	mock.ExpectQuery(`SELECT userid, username, givenname, familyname`).
		WillReturnRows(rows)

	users, err := sess.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, int64(80001), users[0].UserID)
	require.Equal(t, "Priya", users[0].GivenName)
	require.Equal(t, "Ricci", users[1].FamilyName)
}

// USERNAME - SUCCESS
func TestPgSession_Username_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectQuery(`SELECT username FROM users`).
		WithArgs(int64(80001)).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("p_sarkar"))

	name, err := sess.Username(context.Background(), 80001)
	require.NoError(t, err)
	require.Equal(t, "p_sarkar", name)
}

// USERNAME - NOT FOUND
func TestPgSession_Username_NotFound(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectQuery(`SELECT username FROM users`).
		WithArgs(int64(999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := sess.Username(context.Background(), 999999)
	require.ErrorIs(t, err, model.ErrNoSuchUser)
}

// INSERT ASSET - RETURNS GENERATED ID
func TestPgSession_InsertAsset_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectQuery(`INSERT INTO assets`).
		WithArgs(int64(80001), "cat.jpg", "p_sarkar/uuid-cat.jpg").
		WillReturnRows(sqlmock.NewRows([]string{"assetid"}).AddRow(int64(1001)))

	id, err := sess.InsertAsset(context.Background(), 80001, "cat.jpg", "p_sarkar/uuid-cat.jpg")
	require.NoError(t, err)
	require.Equal(t, int64(1001), id)
}

// INSERT LABEL - SUCCESS
func TestPgSession_InsertLabel_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectExec(`INSERT INTO labels`).
		WithArgs(int64(1001), "Cat", 97.5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := sess.InsertLabel(context.Background(), 1001, "Cat", 97.5)
	require.NoError(t, err)
}

// ASSETS - NO FILTER
func TestPgSession_Assets_All(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	rows := sqlmock.NewRows([]string{"assetid", "userid", "localname", "bucketkey"}).
		AddRow(int64(1001), int64(80001), "cat.jpg", "p_sarkar/k1").
		AddRow(int64(1002), int64(80002), "dog.jpg", "e_ricci/k2")

	mock.ExpectQuery(`SELECT assetid, userid, localname, bucketkey`).
		WillReturnRows(rows)

	assets, err := sess.Assets(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, int64(1001), assets[0].AssetID)
}

// ASSETS - OWNER FILTER, NO MATCH IS EMPTY LIST
func TestPgSession_Assets_FilterEmpty(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	owner := int64(777)
	mock.ExpectQuery(`SELECT assetid, userid, localname, bucketkey`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"assetid", "userid", "localname", "bucketkey"}))

	assets, err := sess.Assets(context.Background(), &owner)
	require.NoError(t, err)
	require.NotNil(t, assets)
	require.Empty(t, assets)
}

// ASSET - NOT FOUND
func TestPgSession_Asset_NotFound(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectQuery(`SELECT assetid, userid, localname, bucketkey`).
		WithArgs(int64(4242)).
		WillReturnError(sql.ErrNoRows)

	_, err := sess.Asset(context.Background(), 4242)
	require.ErrorIs(t, err, model.ErrNoSuchAsset)
}

// ASSET LABELS - SUCCESS
func TestPgSession_AssetLabels_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	rows := sqlmock.NewRows([]string{"label", "confidence"}).
		AddRow("Animal", 99.1).
		AddRow("Cat", 97.5)

	mock.ExpectQuery(`SELECT label, confidence`).
		WithArgs(int64(1001)).
		WillReturnRows(rows)

	labels, err := sess.AssetLabels(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Equal(t, "Animal", labels[0].Label)
}

// LABEL SEARCH - NO MATCH IS EMPTY, NOT AN ERROR
func TestPgSession_LabelSearch_Empty(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectQuery(`SELECT assetid, label, confidence`).
		WithArgs("boat").
		WillReturnRows(sqlmock.NewRows([]string{"assetid", "label", "confidence"}))

	matches, err := sess.LabelSearch(context.Background(), "boat")
	require.NoError(t, err)
	require.NotNil(t, matches)
	require.Empty(t, matches)
}

// BUCKET KEYS - SUCCESS
func TestPgSession_BucketKeys_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	rows := sqlmock.NewRows([]string{"bucketkey"}).
		AddRow("p_sarkar/k1").
		AddRow("e_ricci/k2")

	mock.ExpectQuery(`SELECT bucketkey FROM assets`).
		WillReturnRows(rows)

	keys, err := sess.BucketKeys(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"p_sarkar/k1", "e_ricci/k2"}, keys)
}

// PURGE - ALL STATEMENTS IN ORDER
func TestPgSession_PurgeAll_OK(t *testing.T) {
	sess, mock := newSessionWithMock(t)
	defer sess.Close()

	mock.ExpectExec(`DELETE FROM labels`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM assets`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`ALTER SEQUENCE assets_assetid_seq`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER SEQUENCE labels_labelid_seq`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, sess.PurgeAll(context.Background()))
	require.NoError(t, sess.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

// PURGE - CLEAR FAILS MID-WAY
func TestPgSession_PurgeAll_ClearError(t *testing.T) {
	sess, mock := newSessionWithMock(t)

	mock.ExpectExec(`DELETE FROM labels`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM assets`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	require.Error(t, sess.PurgeAll(context.Background()))
	sess.Close() // откат + возврат соединения
	require.NoError(t, mock.ExpectationsWereMet())
}

// CLOSE WITHOUT COMMIT - ROLLS BACK
func TestPgSession_Close_RollsBackOpenTx(t *testing.T) {
	sess, mock := newSessionWithMock(t)

	mock.ExpectRollback()

	sess.Close()
	require.NoError(t, mock.ExpectationsWereMet())
}

// ROLLBACK FAILURE - LOGGED, NOT PROPAGATED
func TestPgSession_RollbackError_Swallowed(t *testing.T) {
	sess, mock := newSessionWithMock(t)

	mock.ExpectRollback().WillReturnError(errors.New("conn broken"))

	sess.Rollback() // не должен паниковать и не возвращает ошибку
	sess.Close()
}
