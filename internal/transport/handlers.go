// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"encoding/base64"
	"strconv"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type PhotoHandler struct {
	service PhotoService
}

type PhotoService interface {
	Ingest(ctx context.Context, ownerID int64, localName string, data []byte) (int64, error) // залить блоб + записать метаданные и лейблы
	PurgeAll(ctx context.Context) error                                                      // снести все записи и очистить бакет
	ListUsers(ctx context.Context) ([]model.User, error)
	ListAssets(ctx context.Context, ownerID *int64) ([]model.Asset, error)
	FetchAsset(ctx context.Context, assetID int64) (*model.Asset, []byte, error) // метаданные + сам файл
	AssetLabels(ctx context.Context, assetID int64) ([]model.Label, error)
	SearchLabels(ctx context.Context, fragment string) ([]model.AssetLabel, error)
}

func NewPhotoHandler(svc PhotoService) *PhotoHandler {
	return &PhotoHandler{
		service: svc,
	}
}

func (h PhotoHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// Upload - POST /images?userid=
func (h PhotoHandler) Upload(ctx *ginext.Context) {
	userID, err := parseID(ctx.Query("userid"), model.ErrMissingUserID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), uploadResponse{Message: err.Error(), AssetID: -1})
		return
	}

	var req model.UploadRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(400, uploadResponse{Message: model.ErrMissingData.Error(), AssetID: -1})
		return
	}
	if req.Data == "" {
		ctx.JSON(400, uploadResponse{Message: model.ErrMissingData.Error(), AssetID: -1})
		return
	}

	// декодируем на границе: сервис работает с сырыми байтами
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		ctx.JSON(400, uploadResponse{Message: model.ErrBadImageData.Error(), AssetID: -1})
		return
	}

	assetID, err := h.service.Ingest(ctx.Request.Context(), userID, req.LocalFilename, data)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), uploadResponse{Message: err.Error(), AssetID: -1})
		return
	}

	ctx.JSON(200, uploadResponse{Message: "success", AssetID: assetID})
}

// ListUsers - GET /users
func (h PhotoHandler) ListUsers(ctx *ginext.Context) {
	users, err := h.service.ListUsers(ctx.Request.Context())
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), usersResponse{Message: err.Error(), Data: []model.User{}})
		return
	}

	ctx.JSON(200, usersResponse{Message: "success", Data: users})
}

// ListAssets - GET /images?userid= (фильтр опционален)
func (h PhotoHandler) ListAssets(ctx *ginext.Context) {
	var ownerID *int64
	if raw := ctx.Query("userid"); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(400, listResponse{Message: model.ErrIncorrectQuery.Error(), Data: []model.Asset{}})
			return
		}
		ownerID = &val
	}

	assets, err := h.service.ListAssets(ctx.Request.Context(), ownerID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), listResponse{Message: err.Error(), Data: []model.Asset{}})
		return
	}

	ctx.JSON(200, listResponse{Message: "success", Data: assets})
}

// GetImage - GET /image?assetid=
func (h PhotoHandler) GetImage(ctx *ginext.Context) {
	assetID, err := parseID(ctx.Query("assetid"), model.ErrMissingAssetID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), imageResponse{Message: err.Error(), UserID: -1})
		return
	}

	asset, blob, err := h.service.FetchAsset(ctx.Request.Context(), assetID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), imageResponse{Message: err.Error(), UserID: -1})
		return
	}

	ctx.JSON(200, imageResponse{
		Message:       "success",
		UserID:        asset.UserID,
		LocalFilename: asset.LocalName,
		Data:          base64.StdEncoding.EncodeToString(blob),
	})
}

// ImageLabels - GET /image_labels/:assetid
func (h PhotoHandler) ImageLabels(ctx *ginext.Context) {
	assetID, err := parseID(ctx.Param("assetid"), model.ErrMissingAssetID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), labelsResponse{Message: err.Error(), Data: []model.Label{}})
		return
	}

	labels, err := h.service.AssetLabels(ctx.Request.Context(), assetID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), labelsResponse{Message: err.Error(), Data: []model.Label{}})
		return
	}

	ctx.JSON(200, labelsResponse{Message: "success", Data: labels})
}

// ImagesWithLabel - GET /images_with_label?label=
func (h PhotoHandler) ImagesWithLabel(ctx *ginext.Context) {
	fragment := ctx.Query("label")

	matches, err := h.service.SearchLabels(ctx.Request.Context(), fragment)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), labelSearchResponse{Message: err.Error(), Data: []model.AssetLabel{}})
		return
	}

	ctx.JSON(200, labelSearchResponse{Message: "success", Data: matches})
}

// DeleteAll - DELETE /images
func (h PhotoHandler) DeleteAll(ctx *ginext.Context) {
	if err := h.service.PurgeAll(ctx.Request.Context()); err != nil {
		ctx.JSON(errorCodeDefiner(err), messageResponse{Message: err.Error()})
		return
	}

	ctx.JSON(200, messageResponse{Message: "success"})
}
