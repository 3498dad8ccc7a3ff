package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/support-insights/backend/internal/ai"
	"github.com/support-insights/backend/internal/cache"
	"github.com/support-insights/backend/internal/metrics"
	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/resolver"
)

type Handler struct {
	Resolver  *resolver.Resolver
	Engine    metrics.Engine
	Cache     cache.Cache
	Assistant ai.Assistant
	Validator *validator.Validate
	Logger    zerolog.Logger
}

var (
	easternZone  = time.FixedZone("EDT", -4*60*60)
	atlanticZone = time.FixedZone("ADT", -3*60*60)
)

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type widgetQuery struct {
	Range       string `form:"range" validate:"omitempty,oneof=4w 8w 12w 26w 52w all"`
	Stat        string `form:"stat" validate:"omitempty,oneof=median mean"`
	Granularity string `form:"granularity" validate:"omitempty,oneof=day week"`
}

// rangeBounds maps the range parameter to concrete bounds in the domain's
// display timezone, matching how the dashboards slice data.
func rangeBounds(rangeValue string, domain models.Domain) models.DateRange {
	if rangeValue == "" || rangeValue == "all" {
		return models.DateRange{}
	}
	weeks := map[string]int{"4w": 4, "8w": 8, "12w": 12, "26w": 26, "52w": 52}[rangeValue]
	zone := easternZone
	if domain == models.DomainChats {
		zone = atlanticZone
	}
	now := time.Now().In(zone)
	start := now.AddDate(0, 0, -7*weeks)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, zone)
	return models.DateRange{Start: start, End: now}
}

// @Summary Widget catalog
// @Description List the available dashboard widgets and their parameters
// @Tags widgets
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/widgets [get]
func (h *Handler) WidgetsCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"widgets": widgetCatalog(),
		"params": gin.H{
			"range":       []string{"4w", "8w", "12w", "26w", "52w", "all"},
			"stat":        []string{"median", "mean"},
			"granularity": []string{"day", "week"},
		},
	})
}

// @Summary Widget data
// @Description Resolve data for one widget and return its chart series
// @Tags widgets
// @Produce json
// @Param name path string true "widget name"
// @Param range query string false "4w|8w|12w|26w|52w|all"
// @Param stat query string false "median|mean"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/widgets/{name} [get]
func (h *Handler) WidgetData(c *gin.Context) {
	name := c.Param("name")
	widget, ok := widgetRegistry[name]
	if !ok {
		writeError(c, http.StatusNotFound, "WIDGET_NOT_FOUND", "Unknown widget: "+name, nil)
		return
	}

	var q widgetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Malformed query parameters", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters", err.Error())
		return
	}

	stat, _ := metrics.ParseStat(q.Stat)
	granularity := metrics.ByWeek
	if q.Granularity == "day" {
		granularity = metrics.ByDay
	}

	ds, err := h.Resolver.Resolve(c.Request.Context(), widget.Domain, rangeBounds(q.Range, widget.Domain))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range", err.Error())
		return
	}

	series := widget.Build(h.Engine, ds, WidgetParams{Stat: stat, Granularity: granularity})
	c.JSON(http.StatusOK, gin.H{
		"widget":      widget.Name,
		"title":       widget.Title,
		"source_used": ds.SourceUsed,
		"records":     ds.Len(),
		"data":        series,
	})
}

type listQuery struct {
	Range string `form:"range" validate:"omitempty,oneof=4w 8w 12w 26w 52w all"`
}

// @Summary Normalized tickets
// @Tags data
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	h.listDomain(c, models.DomainTickets)
}

// @Summary Normalized chats
// @Tags data
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/chats [get]
func (h *Handler) ChatsList(c *gin.Context) {
	h.listDomain(c, models.DomainChats)
}

func (h *Handler) listDomain(c *gin.Context, domain models.Domain) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Malformed query parameters", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters", err.Error())
		return
	}

	ds, err := h.Resolver.Resolve(c.Request.Context(), domain, rangeBounds(q.Range, domain))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range", err.Error())
		return
	}

	body := gin.H{
		"domain":      ds.Domain,
		"source_used": ds.SourceUsed,
		"count":       ds.Len(),
	}
	if domain == models.DomainChats {
		body["chats"] = ds.Chats
	} else {
		body["tickets"] = ds.Tickets
	}
	c.JSON(http.StatusOK, body)
}

type assistantRequest struct {
	Message string           `json:"message" validate:"required,min=1,max=4000"`
	History []ai.ChatMessage `json:"history" validate:"omitempty,max=20"`
}

// @Summary Ask the analytics assistant
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body assistantRequest true "question"
// @Success 200 {object} map[string]any
// @Failure 429 {object} map[string]any
// @Router /api/assistant/chat [post]
func (h *Handler) AssistantChat(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
		return
	}

	ctx := c.Request.Context()
	tickets, err := h.Resolver.Resolve(ctx, models.DomainTickets, models.DateRange{})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "RESOLVE_ERROR", "Failed to resolve tickets", err.Error())
		return
	}
	chats, err := h.Resolver.Resolve(ctx, models.DomainChats, models.DateRange{})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "RESOLVE_ERROR", "Failed to resolve chats", err.Error())
		return
	}

	history := append([]ai.ChatMessage{ai.SummaryContext(h.Engine, tickets, chats)}, req.History...)
	answer, err := h.Assistant.Ask(ctx, req.Message, history)
	if err != nil {
		var rle ai.RateLimitError
		if errors.As(err, &rle) {
			c.Header("Retry-After", rle.RetryAfter.String())
			writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Assistant is rate limited", rle.Error())
			return
		}
		h.Logger.Error().Err(err).Msg("assistant call failed")
		writeError(c, http.StatusBadGateway, "ASSISTANT_ERROR", "Assistant unavailable", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer": answer,
		"context": gin.H{
			"ticket_source": tickets.SourceUsed,
			"chat_source":   chats.SourceUsed,
		},
	})
}

// @Summary Flush the dataset cache
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/cache/flush [post]
func (h *Handler) CacheFlush(c *gin.Context) {
	if err := h.Cache.Flush(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "CACHE_ERROR", "Failed to flush cache", err.Error())
		return
	}
	h.Logger.Info().Msg("dataset cache flushed")
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// @Summary Last resolution traces
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/resolve/diagnostics [get]
func (h *Handler) ResolveDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"resolutions": h.Resolver.LastDiagnostics()})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
