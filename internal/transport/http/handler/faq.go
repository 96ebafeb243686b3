package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/app"
	"faqdesk/internal/transport/http/response"
)

type FaqHandler struct {
	faqService *app.FaqService
}

type FaqRequest struct {
	Question     string              `json:"question" binding:"required"`
	Answer       string              `json:"answer" binding:"required"`
	Category     string              `json:"category" binding:"required"`
	DocumentText string              `json:"document_text"`
	Attachments  []AttachmentRequest `json:"attachments"`
}

type AttachmentRequest struct {
	URL       string `json:"url" binding:"required"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Type      string `json:"type" binding:"required,oneof=image document"`
}

type RenameCategoryRequest struct {
	OldName string `json:"old_name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

func NewFaqHandler(faqService *app.FaqService) *FaqHandler {
	return &FaqHandler{faqService: faqService}
}

func (h *FaqHandler) List(c *gin.Context) {
	faqs, err := h.faqService.Search(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list faqs failed")
		return
	}
	response.OK(c, faqs)
}

func (h *FaqHandler) Categories(c *gin.Context) {
	counts, err := h.faqService.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list categories failed")
		return
	}
	response.OK(c, counts)
}

func (h *FaqHandler) Create(c *gin.Context) {
	var req FaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	faq, err := h.faqService.Add(c.Request.Context(), faqInputFromRequest(req), getActorFromContext(c))
	if err != nil {
		h.writeFaqError(c, err, "create faq failed")
		return
	}
	response.OK(c, faq)
}

func (h *FaqHandler) Update(c *gin.Context) {
	var req FaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	faq, err := h.faqService.Update(c.Request.Context(), c.Param("id"), faqInputFromRequest(req), getActorFromContext(c))
	if err != nil {
		h.writeFaqError(c, err, "update faq failed")
		return
	}
	response.OK(c, faq)
}

func (h *FaqHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.faqService.Delete(c.Request.Context(), id, getActorFromContext(c)); err != nil {
		h.writeFaqError(c, err, "delete faq failed")
		return
	}
	response.OK(c, gin.H{"deleted_id": id})
}

func (h *FaqHandler) DeleteCategory(c *gin.Context) {
	name := c.Param("name")
	count, err := h.faqService.DeleteCategory(c.Request.Context(), name, getActorFromContext(c))
	if err != nil {
		h.writeFaqError(c, err, "delete category failed")
		return
	}
	response.OK(c, gin.H{"category": name, "deleted_count": count})
}

func (h *FaqHandler) RenameCategory(c *gin.Context) {
	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	count, err := h.faqService.RenameCategory(c.Request.Context(), req.OldName, req.NewName, getActorFromContext(c))
	if err != nil {
		h.writeFaqError(c, err, "rename category failed")
		return
	}
	response.OK(c, gin.H{"old_name": req.OldName, "new_name": req.NewName, "renamed_count": count})
}

func (h *FaqHandler) writeFaqError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrFaqNotFound):
		response.Error(c, http.StatusNotFound, response.CodeFaqNotFound, err.Error())
	case errors.Is(err, app.ErrCategoryNotFound):
		response.Error(c, http.StatusNotFound, response.CodeCategoryNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func faqInputFromRequest(req FaqRequest) app.FaqInput {
	input := app.FaqInput{
		Question:     req.Question,
		Answer:       req.Answer,
		Category:     req.Category,
		DocumentText: req.DocumentText,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, app.AttachmentInput{
			URL:       att.URL,
			Name:      att.Name,
			Extension: att.Extension,
			Type:      att.Type,
		})
	}
	return input
}
