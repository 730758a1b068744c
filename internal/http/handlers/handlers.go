package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/service"
)

// IndexStore is the Postgres-backed source index, when one is configured.
type IndexStore interface {
	Ping(ctx context.Context) error
	ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error)
	ReplaceIndex(ctx context.Context, indexID string, entries []models.IndexEntry) error
}

type Handler struct {
	Store     IndexStore
	Dashboard *service.DashboardService
	Reloader  *service.Reloader
	Validator *validator.Validate
	Logger    zerolog.Logger
}

const dateLayout = "2006-01-02"

type PeriodRequest struct {
	ReferenceYear  int      `json:"reference_year" validate:"omitempty,min=1900,max=9999"`
	ReferenceMonth int      `json:"reference_month" validate:"min=0,max=12"`
	StartDate      string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Units          []string `json:"units"`
	Inspectors     []string `json:"inspectors"`
}

type DashboardRequest struct {
	PeriodRequest
	Denominator  string   `json:"denominator" validate:"omitempty,oneof=gross net"`
	ParetoTopK   int      `json:"pareto_top_k" validate:"min=0,max=30"`
	WhatIfCutoff int      `json:"what_if_cutoff" validate:"min=0"`
	ReductionPct *float64 `json:"reduction_pct" validate:"omitempty,min=0,max=100"`
	TopErrors    int      `json:"top_errors" validate:"min=0,max=100"`
	RankingSize  int      `json:"ranking_size" validate:"min=0,max=100"`
}

type RecordsResponse struct {
	Selection  models.PeriodSelection    `json:"selection"`
	Quality    []models.QualityRecord    `json:"quality"`
	Production []models.ProductionRecord `json:"production"`
}

type IndexEntryRequest struct {
	URL    string `json:"url" validate:"required"`
	Month  string `json:"month"`
	Active bool   `json:"active"`
}

type ReplaceIndexRequest struct {
	Entries []IndexEntryRequest `json:"entries" validate:"dive"`
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
	}
	loaded := h.Dashboard != nil && h.Dashboard.Holder.Load() != nil
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dataset_loaded": loaded})
}

// @Summary Source load summary
// @Description Per-month sources loaded and failed in the last load
// @Tags sources
// @Produce json
// @Success 200 {object} models.LoadSummary
// @Failure 503 {object} map[string]any
// @Router /api/sources [get]
func (h *Handler) Sources(c *gin.Context) {
	ds := h.Dashboard.Holder.Load()
	if ds == nil {
		h.writeServiceError(c, service.ErrNoDataset)
		return
	}
	c.JSON(http.StatusOK, ds.Summary)
}

// @Summary Available reference months
// @Tags periods
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/periods [get]
func (h *Handler) Periods(c *gin.Context) {
	months, err := h.Dashboard.Months()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": months})
}

// @Summary Build dashboard
// @Description KPIs and breakdown tables for one period and filter selection
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body DashboardRequest true "Selection and display options"
// @Success 200 {object} service.Dashboard
// @Failure 400 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/dashboard [post]
func (h *Handler) BuildDashboard(c *gin.Context) {
	var req DashboardRequest
	if !h.bind(c, &req) {
		return
	}
	sel, ok := toSelection(c, req.PeriodRequest)
	if !ok {
		return
	}
	opts := service.DefaultDashboardOptions()
	if req.Denominator != "" {
		opts.Denominator = models.Denominator(req.Denominator)
	}
	opts.ParetoTopK = req.ParetoTopK
	opts.WhatIfCutoff = req.WhatIfCutoff
	if req.ReductionPct != nil {
		opts.ReductionPct = *req.ReductionPct
	}
	if req.TopErrors > 0 {
		opts.TopErrors = req.TopErrors
	}
	if req.RankingSize > 0 {
		opts.RankingSize = req.RankingSize
	}

	d, err := h.Dashboard.Build(sel, opts)
	if err != nil {
		h.writeServiceErrorWithDetails(c, err, d.Selection)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary Filtered records
// @Description Quality rows sorted by date and the aligned Production rows
// @Tags records
// @Accept json
// @Produce json
// @Param request body PeriodRequest true "Selection"
// @Success 200 {object} RecordsResponse
// @Failure 400 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/records [post]
func (h *Handler) Records(c *gin.Context) {
	var req PeriodRequest
	if !h.bind(c, &req) {
		return
	}
	sel, ok := toSelection(c, req)
	if !ok {
		return
	}
	view, err := h.Dashboard.View(sel)
	if err != nil {
		h.writeServiceErrorWithDetails(c, err, view.Selection)
		return
	}
	c.JSON(http.StatusOK, RecordsResponse{
		Selection:  view.Selection,
		Quality:    service.DetailRows(view.Quality),
		Production: view.Production,
	})
}

// @Summary Reload sources
// @Description Re-reads both indexes and every active month
// @Tags admin
// @Produce json
// @Success 200 {object} models.LoadSummary
// @Failure 502 {object} map[string]any
// @Router /api/admin/reload [post]
func (h *Handler) Reload(c *gin.Context) {
	ds, err := h.Reloader.Reload(c.Request.Context())
	if err != nil {
		var details any = err.Error()
		if ds != nil {
			details = ds.Summary
		}
		writeError(c, http.StatusBadGateway, "RELOAD_FAILED", "Reload failed", details)
		return
	}
	c.JSON(http.StatusOK, ds.Summary)
}

// @Summary Read a source index
// @Tags admin
// @Produce json
// @Param id path string true "Index ID"
// @Success 200 {object} map[string]any
// @Router /api/admin/indexes/{id} [get]
func (h *Handler) IndexGet(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusNotFound, "INDEX_STORE_DISABLED", "No database configured", nil)
		return
	}
	entries, err := h.Store.ReadIndex(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.Error().Err(err).Str("index_id", c.Param("id")).Msg("failed to read index")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to read index", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// @Summary Replace a source index
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Index ID"
// @Param request body ReplaceIndexRequest true "Ordered entries"
// @Success 200 {object} map[string]any
// @Router /api/admin/indexes/{id} [put]
func (h *Handler) IndexReplace(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusNotFound, "INDEX_STORE_DISABLED", "No database configured", nil)
		return
	}
	var req ReplaceIndexRequest
	if !h.bind(c, &req) {
		return
	}
	entries := make([]models.IndexEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, models.IndexEntry{SourceRef: e.URL, MonthLabel: e.Month, Active: e.Active})
	}
	if err := h.Store.ReplaceIndex(c.Request.Context(), c.Param("id"), entries); err != nil {
		h.Logger.Error().Err(err).Str("index_id", c.Param("id")).Msg("failed to replace index")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to replace index", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "entries": len(entries)})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}

func toSelection(c *gin.Context, req PeriodRequest) (models.PeriodSelection, bool) {
	if req.ReferenceMonth != 0 && req.ReferenceYear == 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "reference_year is required with reference_month", nil)
		return models.PeriodSelection{}, false
	}
	sel := models.PeriodSelection{
		ReferenceYear:  req.ReferenceYear,
		ReferenceMonth: req.ReferenceMonth,
		Units:          req.Units,
		Inspectors:     req.Inspectors,
	}
	if req.ReferenceMonth == 0 {
		sel.ReferenceYear = 0
	}
	// validated as YYYY-MM-DD above
	if req.StartDate != "" {
		sel.StartDate, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		sel.EndDate, _ = time.Parse(dateLayout, req.EndDate)
	}
	return sel, true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	h.writeServiceErrorWithDetails(c, err, nil)
}

func (h *Handler) writeServiceErrorWithDetails(c *gin.Context, err error, details any) {
	switch {
	case errors.Is(err, service.ErrNoDataset):
		writeError(c, http.StatusServiceUnavailable, "NO_DATASET", "Sources have not been loaded", nil)
	case errors.Is(err, service.ErrFilterExhausted):
		writeError(c, http.StatusUnprocessableEntity, "FILTER_EXHAUSTED", "Quality data has no valid dates", details)
	case errors.Is(err, service.ErrEmptyFilteredView):
		writeError(c, http.StatusUnprocessableEntity, "EMPTY_FILTERED_VIEW", "No quality records for the selected period and filters", details)
	case errors.Is(err, service.ErrMonthUnavailable):
		writeError(c, http.StatusUnprocessableEntity, "MONTH_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidRange):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_date must not be after end_date", nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected service error")
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Unexpected error", err.Error())
	}
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
