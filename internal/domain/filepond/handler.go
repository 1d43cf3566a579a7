package filepond

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/response"
	"filepond/internal/pkg/validator"
	"filepond/internal/storage"
)

// maxRevertBody bounds the DELETE body, which only carries a server id.
const maxRevertBody = 4 << 10

// Handler serves the FilePond process, revert and restore endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Process godoc
// @Summary Stage an upload
// @Description Accepts one multipart file part and returns its server id as text/plain.
// @Tags Filepond
// @Accept multipart/form-data
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "server id"
// @Failure 400,401,422,500 {object} response.Response
// @Router /filepond [post]
func (h *Handler) Process(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	field, fh, err := firstFilePart(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No file provided")
		return
	}

	serverID, err := h.service.Process(c.Request.Context(), userID, field, fh)
	if err != nil {
		var verr *validator.ValidationError
		switch {
		case errors.As(err, &verr):
			response.ValidationFailed(c, verr.Error(), verr.Errors)
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrNoFile):
			response.Error(c, http.StatusBadRequest, "EMPTY_FILE", err.Error())
		default:
			logging.Error("process upload", "user_id", userID, "err", err)
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Upload failed")
		}
		return
	}

	c.String(http.StatusOK, serverID)
}

// Revert godoc
// @Summary Revert a staged upload
// @Description The request body is the server id returned by process.
// @Tags Filepond
// @Accept plain
// @Security BearerAuth
// @Success 200
// @Failure 400,401,403,404,500 {object} response.Response
// @Router /filepond [delete]
func (h *Handler) Revert(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRevertBody))
	if err != nil || strings.TrimSpace(string(body)) == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_SERVER_ID", "Server id is required")
		return
	}

	if err := h.service.Revert(c.Request.Context(), userID, string(body)); err != nil {
		h.writeError(c, userID, "revert upload", err)
		return
	}

	c.String(http.StatusOK, "")
}

// Restore godoc
// @Summary Load a staged upload
// @Tags Filepond
// @Produce octet-stream
// @Security BearerAuth
// @Param serverId path string true "Server id"
// @Success 200 {file} file
// @Failure 400,401,403,404,500 {object} response.Response
// @Router /filepond/restore/{serverId} [get]
func (h *Handler) Restore(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	upload, rc, err := h.service.Restore(c.Request.Context(), userID, c.Param("serverId"))
	if err != nil {
		h.writeError(c, userID, "restore upload", err)
		return
	}
	defer rc.Close()

	contentType := upload.Mimetypes
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, upload.Size, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", upload.Filename),
	})
}

func (h *Handler) writeError(c *gin.Context, userID int64, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidServerID):
		response.Error(c, http.StatusBadRequest, "INVALID_SERVER_ID", err.Error())
	case errors.Is(err, ErrUploadNotFound), errors.Is(err, storage.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		logging.Error(op, "user_id", userID, "err", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}

// firstFilePart returns the first file of the multipart form and the field
// it was sent under, without a trailing "[]".
func firstFilePart(c *gin.Context) (string, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, err
	}
	names := make([]string, 0, len(form.File))
	for name, files := range form.File {
		if len(files) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", nil, ErrNoFile
	}
	sort.Strings(names)
	return strings.TrimSuffix(names[0], "[]"), form.File[names[0]][0], nil
}

func mustUserID(c *gin.Context) int64 {
	id, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return 0
	}
	switch v := id.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user id")
	return 0
}

