package transport

import (
	"strconv"

	"github.com/Quickstand/PhotoVault/internal/model"
)

// Формы ответов - имена полей и коды статусов часть внешнего контракта

type uploadResponse struct {
	Message string `json:"message"`
	AssetID int64  `json:"assetid"`
}

type usersResponse struct {
	Message string       `json:"message"`
	Data    []model.User `json:"data"`
}

type listResponse struct {
	Message string        `json:"message"`
	Data    []model.Asset `json:"data"`
}

type imageResponse struct {
	Message       string `json:"message"`
	UserID        int64  `json:"userid"`
	LocalFilename string `json:"local_filename"`
	Data          string `json:"data"` // base64
}

type labelsResponse struct {
	Message string        `json:"message"`
	Data    []model.Label `json:"data"`
}

type labelSearchResponse struct {
	Message string             `json:"message"`
	Data    []model.AssetLabel `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func errorCodeDefiner(err error) int {
	if model.IsClientErr(err) {
		return 400
	}
	return 500
}

// parseID - числовой идентификатор из query/path; missing возвращается
// если параметр пуст
func parseID(raw string, missing error) (int64, error) {
	if raw == "" {
		return 0, missing
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, model.ErrIncorrectQuery
	}
	return id, nil
}
