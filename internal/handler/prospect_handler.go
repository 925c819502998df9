package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/prospect-portal-api/internal/dto"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/internal/service"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
	"github.com/noah-isme/prospect-portal-api/pkg/response"
)

type prospectService interface {
	Create(ctx context.Context, actor *models.Actor, req dto.CreateProspectRequest) (*models.CompanyProspect, error)
	SetStatus(ctx context.Context, actor *models.Actor, id string, req dto.ReviewProspectRequest) (*models.CompanyProspect, error)
	SetNotes(ctx context.Context, actor *models.Actor, id string, req dto.UpdateNotesRequest) (*models.CompanyProspect, error)
	UpdateFullRecord(ctx context.Context, actor *models.Actor, id string, req dto.UpdateProspectRequest) (*models.CompanyProspect, error)
	ListVisible(ctx context.Context, actor *models.Actor, query dto.ProspectQuery) ([]models.CompanyProspect, error)
	Get(ctx context.Context, actor *models.Actor, id string) (*models.CompanyProspect, error)
	LatestApproved(ctx context.Context, actor *models.Actor) (*models.CompanyProspect, error)
	Summary(ctx context.Context, actor *models.Actor) (*models.ProspectSummary, error)
}

type prospectExporter interface {
	Export(ctx context.Context, actor *models.Actor, format service.ExportFormat, status models.ProspectStatus) (*service.ExportResult, error)
}

type changeSubscriber interface {
	Subscribe() (<-chan service.ProspectChange, func())
}

type actorRefresher interface {
	Refresh(ctx context.Context, actor *models.Actor) (*models.Actor, error)
}

// ProspectHandler exposes the prospect query and mutation surface.
type ProspectHandler struct {
	service   prospectService
	exporter  prospectExporter
	feed      changeSubscriber
	sessions  actorRefresher
	metrics   *service.MetricsService
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewProspectHandler constructs a ProspectHandler. sessions may be nil, in which case open streams
// keep the role resolved when they connected.
func NewProspectHandler(svc prospectService, exporter prospectExporter, feed changeSubscriber, sessions actorRefresher, metrics *service.MetricsService, logger *zap.Logger) *ProspectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProspectHandler{service: svc, exporter: exporter, feed: feed, sessions: sessions, metrics: metrics, logger: logger, heartbeat: 25 * time.Second}
}

// Create godoc
// @Summary Submit a company prospect
// @Tags Prospects
// @Accept json
// @Produce json
// @Param payload body dto.CreateProspectRequest true "Prospect"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /prospects [post]
func (h *ProspectHandler) Create(c *gin.Context) {
	var req dto.CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid prospect payload"))
		return
	}
	prospect, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, prospect)
}

// SetStatus godoc
// @Summary Approve or reject a prospect
// @Tags Prospects
// @Accept json
// @Produce json
// @Param id path string true "Prospect ID"
// @Param payload body dto.ReviewProspectRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /prospects/{id}/status [patch]
func (h *ProspectHandler) SetStatus(c *gin.Context) {
	var req dto.ReviewProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	prospect, err := h.service.SetStatus(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prospect, nil)
}

// SetNotes godoc
// @Summary Replace review notes
// @Tags Prospects
// @Accept json
// @Produce json
// @Param id path string true "Prospect ID"
// @Param payload body dto.UpdateNotesRequest true "Notes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /prospects/{id}/notes [patch]
func (h *ProspectHandler) SetNotes(c *gin.Context) {
	var req dto.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notes payload"))
		return
	}
	prospect, err := h.service.SetNotes(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prospect, nil)
}

// Update godoc
// @Summary Complete a prospect with the full detail form
// @Tags Prospects
// @Accept json
// @Produce json
// @Param id path string true "Prospect ID"
// @Param payload body dto.UpdateProspectRequest true "Full record"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /prospects/{id} [put]
func (h *ProspectHandler) Update(c *gin.Context) {
	var req dto.UpdateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid prospect payload"))
		return
	}
	prospect, err := h.service.UpdateFullRecord(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prospect, nil)
}

// List godoc
// @Summary List visible prospects
// @Description Anonymous callers receive data null.
// @Tags Prospects
// @Produce json
// @Param status query string false "Status filter"
// @Param sort query string false "createdAt, status or companyName"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} response.Envelope
// @Router /prospects [get]
func (h *ProspectHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListAll godoc
// @Summary List visible prospects with the large default limit
// @Tags Prospects
// @Produce json
// @Param limit query int false "Max rows (default 10000)"
// @Success 200 {object} response.Envelope
// @Router /prospects/all [get]
func (h *ProspectHandler) ListAll(c *gin.Context) {
	h.list(c, true)
}

func (h *ProspectHandler) list(c *gin.Context, all bool) {
	query, err := parseProspectQuery(c, all)
	if err != nil {
		response.Error(c, err)
		return
	}
	prospects, err := h.service.ListVisible(c.Request.Context(), actorFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if prospects == nil {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, prospects, nil, map[string]interface{}{"count": len(prospects)})
}

// Get godoc
// @Summary Get a prospect
// @Tags Prospects
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /prospects/{id} [get]
func (h *ProspectHandler) Get(c *gin.Context) {
	prospect, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prospect, nil)
}

// LatestApproved godoc
// @Summary Caller's approved prospect awaiting the full detail form
// @Tags Prospects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /prospects/latest-approved [get]
func (h *ProspectHandler) LatestApproved(c *gin.Context) {
	prospect, err := h.service.LatestApproved(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if prospect == nil {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, prospect, nil)
}

// Summary godoc
// @Summary Prospect counts per status
// @Tags Prospects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /prospects/summary [get]
func (h *ProspectHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if summary == nil {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Download visible prospects
// @Tags Prospects
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /prospects/export [get]
func (h *ProspectHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.exporter.Export(c.Request.Context(), actorFromContext(c), format, models.ProspectStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// Stream godoc
// @Summary Live prospect list
// @Description Server-sent events. A "snapshot" event carries the full visible list and is re-sent after every change.
// @Tags Prospects
// @Produce text/event-stream
// @Param status query string false "Status filter"
// @Param access_token query string false "Access token for EventSource clients"
// @Success 200 {string} string
// @Router /prospects/stream [get]
func (h *ProspectHandler) Stream(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query, err := parseProspectQuery(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, cancel := h.feed.Subscribe()
	defer cancel()
	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if !h.sendSnapshot(ctx, c, actor, query) {
		return
	}
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok || !h.sendSnapshot(ctx, c, actor, query) {
				return
			}
		case <-ticker.C:
			if _, ok := h.refreshActor(ctx, c, actor); !ok {
				return
			}
			c.SSEvent("ping", time.Now().UTC().UnixMilli())
			c.Writer.Flush()
		}
	}
}

// sendSnapshot pushes the list visible to the caller's current session.
func (h *ProspectHandler) sendSnapshot(ctx context.Context, c *gin.Context, actor *models.Actor, query dto.ProspectQuery) bool {
	current, ok := h.refreshActor(ctx, c, actor)
	if !ok {
		return false
	}
	prospects, err := h.service.ListVisible(ctx, current, query)
	if err != nil {
		h.streamError(ctx, c, actor, "stream snapshot failed", err)
		return false
	}
	c.SSEvent("snapshot", prospects)
	c.Writer.Flush()
	return true
}

// refreshActor re-resolves the session behind an open stream. A revoked session ends the stream.
func (h *ProspectHandler) refreshActor(ctx context.Context, c *gin.Context, actor *models.Actor) (*models.Actor, bool) {
	if h.sessions == nil {
		return actor, true
	}
	current, err := h.sessions.Refresh(ctx, actor)
	if err != nil {
		h.streamError(ctx, c, actor, "stream session no longer valid", err)
		return nil, false
	}
	return current, true
}

func (h *ProspectHandler) streamError(ctx context.Context, c *gin.Context, actor *models.Actor, msg string, err error) {
	if ctx.Err() != nil {
		return
	}
	h.logger.Warn(msg, zap.String("user_id", actor.UserID), zap.Error(err))
	c.SSEvent("error", appErrors.FromError(err))
	c.Writer.Flush()
}
