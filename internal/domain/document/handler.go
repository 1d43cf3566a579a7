package document

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"filepond/internal/domain/filepond"
	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/response"
	"filepond/internal/pkg/validator"
)

// AttachmentsField is the form field carrying FilePond server ids.
const AttachmentsField = "attachments"

type Handler struct {
	service *Service
	fp      *filepond.Filepond
}

func NewHandler(service *Service, fp *filepond.Filepond) *Handler {
	return &Handler{service: service, fp: fp}
}

// Create godoc
// @Summary Create a document from staged uploads
// @Tags Documents
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param attachments[] formData []string true "Server ids"
// @Success 201 {object} response.Response{data=DocumentResponse}
// @Failure 400,401,403,422,500 {object} response.Response
// @Router /documents [post]
func (h *Handler) Create(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid document", errs)
		return
	}

	field, err := h.fp.FieldFromForm(c, AttachmentsField)
	if err != nil {
		logging.Error("bind attachments", "user_id", userID, "err", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load attachments")
		return
	}

	doc, files, err := h.service.Create(c.Request.Context(), userID, req.Title, field)
	if err != nil {
		h.writeError(c, userID, err)
		return
	}

	response.Success(c, http.StatusCreated, toResponse(doc, files))
}

// Discard godoc
// @Summary Discard staged uploads
// @Tags Documents
// @Accept x-www-form-urlencoded
// @Security BearerAuth
// @Param attachments[] formData []string true "Server ids"
// @Success 200 {object} response.Response
// @Router /documents/discard [post]
func (h *Handler) Discard(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	field, err := h.fp.FieldFromForm(c, AttachmentsField)
	if err != nil {
		logging.Error("bind attachments", "user_id", userID, "err", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load attachments")
		return
	}

	if err := h.service.Discard(c.Request.Context(), userID, field); err != nil {
		h.writeError(c, userID, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"discarded": len(field.GetModel())})
}

// GetByID godoc
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response{data=DocumentResponse}
// @Failure 400,401,404 {object} response.Response
// @Router /documents/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid document ID")
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil || doc.UserID != userID {
		if err != nil && !errors.Is(err, ErrDocumentNotFound) {
			logging.Error("get document", "id", id, "err", err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get document")
			return
		}
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
		return
	}

	response.Success(c, http.StatusOK, toResponse(doc, nil))
}

func (h *Handler) writeError(c *gin.Context, userID int64, err error) {
	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Error(), verr.Errors)
	case errors.Is(err, ErrForeignUpload):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		logging.Error("document request failed", "user_id", userID, "err", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
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
