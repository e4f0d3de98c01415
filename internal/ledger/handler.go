package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the accounting module.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   func(http.Handler) http.Handler
}

// NewHandler constructs the accounting handler. guard protects every route.
func NewHandler(logger *slog.Logger, service *Service, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers accounting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Get("/chart", h.handleChart)
		r.Get("/entries", h.handleListEntries)
		r.Post("/entries", h.handleCreateEntry)
		r.Put("/entries/{id}", h.handleUpdateEntry)
		r.Delete("/entries/{id}", h.handleDeleteEntry)
		r.Get("/ledger", h.handleLedger)
		r.Get("/totals", h.handleTotals)
		r.Get("/trial-balance", h.handleTrialBalance)
		r.Get("/income-statement", h.handleIncomeStatement)
		r.Get("/balance-sheet", h.handleBalanceSheet)
		r.Get("/monthly", h.handleMonthly)
		r.Get("/integrity", h.handleIntegrity)
		r.Get("/export", h.handleExport)
	})
}

type chartResponse struct {
	Accounts      []Account      `json:"accounts"`
	Journals      []Journal      `json:"journals"`
	DocumentTypes []DocumentKind `json:"documentTypes"`
}

type totalsResponse struct {
	Totals
	Alert string `json:"alert,omitempty"`
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, chartResponse{Accounts: Chart, Journals: Journals, DocumentTypes: DocumentKinds})
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Entries(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list entries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	entry, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create entry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	entry, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	views, err := h.service.Ledger(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "build ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	report, err := h.service.Integrity(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "check integrity", err)
		return
	}
	if report.Defects == nil {
		report.Defects = []Defect{}
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	totals, err := h.service.Totals(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "compute totals", err)
		return
	}
	resp := totalsResponse{Totals: totals}
	if err := totals.Check(); err != nil {
		resp.Alert = err.Error()
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	report, err := h.service.TrialBalance(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleIncomeStatement(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	st, err := h.service.IncomeStatement(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "income statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	months, err := h.service.Monthly(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "monthly results", err)
		return
	}
	httpx.JSON(w, http.StatusOK, months)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatCSV
	}
	contentType, ext, err := ContentType(format)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Format", err.Error())
		return
	}
	entries, err := h.service.Entries(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "export entries", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export-comptable-%s.%s\"", time.Now().Format(dateLayout), ext))
	if err := Write(w, entries, format); err != nil {
		h.logger.Error("write export", slog.Any("error", err))
	}
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return Filter{}, false
	}
	return filter, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if r.Context().Err() != nil {
		return
	}
	if !errors.Is(err, httpx.ErrValidation) {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
