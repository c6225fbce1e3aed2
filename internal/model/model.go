// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
)

// User - строка из таблицы users, только для чтения
type User struct {
	UserID     int64  `json:"userid"`
	Username   string `json:"username"`
	GivenName  string `json:"givenname"`
	FamilyName string `json:"familyname"`
}

// Asset - метаданные картинки; сам файл лежит в object-storage под BucketKey
type Asset struct {
	AssetID   int64  `json:"assetid"`
	UserID    int64  `json:"userid"`
	LocalName string `json:"localname"`
	BucketKey string `json:"bucketkey"`
}

// Label - результат классификации, привязан к Asset
type Label struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// AssetLabel - строка выдачи поиска по подстроке лейбла
type AssetLabel struct {
	AssetID    int64   `json:"assetid"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

//-------------------

// UploadRequest - тело POST /images
type UploadRequest struct {
	LocalFilename string `json:"local_filename"`
	Data          string `json:"data"` // base64
}

// DetectedLabel - ответ классификатора до записи в базу
type DetectedLabel struct {
	Label      string
	Confidence float64
}

//-------------------

var (
	ErrNoSuchUser     error = errors.New("no such userid")                 // 400
	ErrNoSuchAsset    error = errors.New("no such assetid")                // 400
	ErrMissingAssetID error = errors.New("no assetid given")               // 400
	ErrMissingUserID  error = errors.New("no userid given")                // 400
	ErrMissingData    error = errors.New("no image data given")            // 400
	ErrBadImageData   error = errors.New("image data is not valid base64") // 400
	ErrMissingLabel   error = errors.New("no label given")                 // 400
	ErrIncorrectQuery error = errors.New("incorrect query parameters")     // 400
)

// список клиентских ошибок: они детерминированы, ретраить их бессмысленно
var clientErrs = []error{
	ErrNoSuchUser,
	ErrNoSuchAsset,
	ErrMissingAssetID,
	ErrMissingUserID,
	ErrMissingData,
	ErrBadImageData,
	ErrMissingLabel,
	ErrIncorrectQuery,
}

// IsClientErr reports whether err was caused by bad caller input (400-class).
// Such errors never reach the object store and never trigger compensation.
func IsClientErr(err error) bool {
	for _, target := range clientErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
