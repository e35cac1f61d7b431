package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-health-remind/internal/app"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/notifier"
)

const streamHeartbeat = 25 * time.Second

// BannerSource is the in-app banner feed served on the stream endpoint.
type BannerSource interface {
	Subscribe() (<-chan notifier.Banner, func())
}

type ReminderHandler struct {
	useCase app.ReminderUseCase
	banners BannerSource
}

// NewReminderHandler builds the HTTP adapter. banners may be nil, in which
// case the stream endpoint is not registered.
func NewReminderHandler(useCase app.ReminderUseCase, banners BannerSource) *ReminderHandler {
	return &ReminderHandler{
		useCase: useCase,
		banners: banners,
	}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	slog.Info("handling create reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	var req CreateReminderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	output, err := h.useCase.CreateReminder(c.Request.Context(), app.CreateReminderInput{
		Type:           req.Type,
		Title:          req.Title,
		Date:           req.Date,
		Time:           req.Time,
		Repeat:         req.Repeat,
		AdvanceMinutes: req.AdvanceMinutes,
		Notes:          req.Notes,
	})
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("reminder created successfully",
		"reminder_id", output.ID,
	)
	c.JSON(http.StatusCreated, FromDTO(output))
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	output, err := h.useCase.ListReminders(c.Request.Context())
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Debug("reminders retrieved successfully",
		"count", output.Count,
	)
	c.JSON(http.StatusOK, FromDTOs(output))
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling update reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reminder_id", id,
	)

	var req UpdateReminderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	output, err := h.useCase.UpdateReminder(c.Request.Context(), app.UpdateReminderInput{
		ID:             id,
		Type:           req.Type,
		Title:          req.Title,
		Date:           req.Date,
		Time:           req.Time,
		Repeat:         req.Repeat,
		AdvanceMinutes: req.AdvanceMinutes,
		Notes:          req.Notes,
	})
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling delete reminder request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reminder_id", id,
	)

	if err := h.useCase.DeleteReminder(c.Request.Context(), app.DeleteReminderInput{ID: id}); err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *ReminderHandler) GetDueReminders(c *gin.Context) {
	output, err := h.useCase.GetDueReminders(c.Request.Context(), app.GetDueRemindersInput{})
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTOs(output))
}

func (h *ReminderHandler) MarkNotified(c *gin.Context) {
	id := c.Param("id")

	output, err := h.useCase.MarkNotified(c.Request.Context(), app.MarkNotifiedInput{ID: id})
	if err != nil {
		h.handleError(c, err)

		return
	}

	slog.Info("external dispatch recorded",
		"reminder_id", id,
		"done", output.Done,
	)
	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) SnoozeReminder(c *gin.Context) {
	id := c.Param("id")

	var req SnoozeReminderRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	output, err := h.useCase.SnoozeReminder(c.Request.Context(), app.SnoozeReminderInput{
		ID:      id,
		Minutes: req.minutes(),
	})
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) DismissReminder(c *gin.Context) {
	id := c.Param("id")

	output, err := h.useCase.DismissReminder(c.Request.Context(), app.DismissReminderInput{ID: id})
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, DismissReminderResponse{
		Reminder: FromDTO(output.Reminder),
		Deleted:  output.Deleted,
	})
}

// StreamBanners pushes every in-app banner to the client as a "reminder"
// server-sent event until the client disconnects.
func (h *ReminderHandler) StreamBanners(c *gin.Context) {
	banners, cancel := h.banners.Subscribe()
	defer cancel()

	slog.Info("in-app stream opened",
		"remote_addr", c.ClientIP(),
	)

	// The stream outlives the server write timeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("write deadline not adjustable for stream",
			"error", err,
		)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			slog.Info("in-app stream closed",
				"remote_addr", c.ClientIP(),
			)

			return
		case banner, ok := <-banners:
			if !ok {
				return
			}

			c.SSEvent("reminder", banner)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func (h *ReminderHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}

	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	h.rejectBody(c, err)

	return false
}

func (h *ReminderHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.rejectBody(c, err)

		return false
	}

	return true
}

func (h *ReminderHandler) rejectBody(c *gin.Context, err error) {
	slog.Warn("request validation failed",
		"error", err,
		"path", c.Request.URL.Path,
	)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
		Field:   "",
	})
}

func (h *ReminderHandler) handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})
	case errors.Is(err, app.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: "reminder was modified concurrently, retry the request",
		})
	case errors.Is(err, app.ErrStoreUnavailable):
		slog.Error("store unavailable",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "store_unavailable",
			Message: "reminder store is unavailable",
		})
	default:
		slog.Error("unexpected error",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
	}
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/due", h.GetDueReminders)
		reminders.PATCH("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.POST("/:id/notified", h.MarkNotified)
		reminders.POST("/:id/snooze", h.SnoozeReminder)
		reminders.POST("/:id/done", h.DismissReminder)

		if h.banners != nil {
			reminders.GET("/stream", h.StreamBanners)
		}
	}
}
