package forms

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvbuilder-backend/cv/convert"
	"cvbuilder-backend/cv/deliver"
	"cvbuilder-backend/cv/render"
	"cvbuilder-backend/cv/schema"
	"cvbuilder-backend/internal/shared/server/respond"
)

// Handler exposes the form lifecycle to the conversational engine.
type Handler struct {
	Svc      *Service
	Defaults StartOptions
}

// NewHandler constructs a Handler. Defaults apply when a create request
// leaves options unset.
func NewHandler(svc *Service, defaults StartOptions) *Handler {
	return &Handler{Svc: svc, Defaults: defaults}
}

// RegisterRoutes attaches form-session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/form-sessions", h.create)
	rg.GET("/form-sessions/:id", h.progress)
	rg.POST("/form-sessions/:id/update", h.update)
	rg.POST("/form-sessions/:id/confirm", h.confirm)
	rg.POST("/form-sessions/:id/cancel", h.cancel)
}

func (h *Handler) create(c *gin.Context) {
	req := createSessionRequest{}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
			return
		}
	}

	opts := h.Defaults
	if req.RequireConfirm != nil {
		opts.RequireConfirm = *req.RequireConfirm
	}
	if req.Template != "" {
		opts.TemplateName = req.Template
	}
	if req.Filename != "" {
		opts.Filename = req.Filename
	}

	sess := h.Svc.Start(opts)
	respond.Created(c, createSessionResponse{
		SessionID:      sess.ID,
		State:          sess.State,
		RequireConfirm: sess.RequireConfirm,
		Template:       sess.TemplateName,
		Schema:         schema.Fields(),
	})
}

func (h *Handler) update(c *gin.Context) {
	req := updateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}

	outcome, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Fields)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Set("formOutcome", string(outcome.Kind))
	respond.OK(c, outcomeResponse{SessionID: c.Param("id"), Outcome: outcome})
}

func (h *Handler) confirm(c *gin.Context) {
	req := confirmRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirmed == nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "confirmed flag is required", nil)
		return
	}

	outcome, err := h.Svc.Confirm(c.Request.Context(), c.Param("id"), *req.Confirmed)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Set("formOutcome", string(outcome.Kind))
	respond.OK(c, outcomeResponse{SessionID: c.Param("id"), Outcome: outcome})
}

func (h *Handler) cancel(c *gin.Context) {
	outcome, err := h.Svc.Cancel(c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Set("formOutcome", string(outcome.Kind))
	respond.OK(c, outcomeResponse{SessionID: c.Param("id"), Outcome: outcome})
}

func (h *Handler) progress(c *gin.Context) {
	state, issues, err := h.Svc.Progress(c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respond.OK(c, progressResponse{
		SessionID: c.Param("id"),
		State:     state,
		Issues:    issues,
		Missing:   missingFields(issues),
	})
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "session not found", nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, ErrorCodeInvalidState, err.Error(), nil)
	case errors.Is(err, ErrBadFields):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, render.ErrTemplateBinding):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeConfiguration, "CV generation is misconfigured", nil)
	case errors.Is(err, convert.ErrConversion), errors.Is(err, deliver.ErrEncoding):
		respond.Error(c, http.StatusBadGateway, ErrorCodeConversion, "We could not generate your CV this time. Please start a new session.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "unexpected error", nil)
	}
}
