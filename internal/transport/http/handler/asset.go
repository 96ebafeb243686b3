package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/app"
	"faqdesk/internal/transport/http/response"
)

type AssetHandler struct {
	assetService *app.AssetService
	chatService  *app.ChatService
}

func NewAssetHandler(assetService *app.AssetService, chatService *app.ChatService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		chatService:  chatService,
	}
}

// Upload stores a multipart file and, when a session is named, records it
// as that session's freshest upload (optionally backfilling the preview on
// the turn that triggered it).
func (h *AssetHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open upload failed")
		return
	}
	defer file.Close()

	stored, err := h.assetService.Store(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeAssetUpload, "store asset failed")
		}
		return
	}

	if sessionID := parseFormUint(c, "session_id"); sessionID > 0 {
		turnID := parseFormUint(c, "turn_id")
		if err := h.chatService.RecordUpload(c.Request.Context(), userID, sessionID, turnID, stored.URL); err != nil {
			switch {
			case errors.Is(err, app.ErrSessionNotFound):
				response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
			case errors.Is(err, app.ErrTurnNotFound):
				response.Error(c, http.StatusNotFound, response.CodeTurnNotFound, err.Error())
			default:
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record upload failed")
			}
			return
		}
	}

	response.OK(c, stored)
}

func parseFormUint(c *gin.Context, field string) uint {
	raw := c.PostForm(field)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}
