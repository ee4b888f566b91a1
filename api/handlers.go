/*
handlers.go - HTTP API handlers for the factoring service

PURPOSE:
  Exposes the factoring ledger via REST. Handles HTTP request/response,
  JSON serialization, and delegates to the ledger and risk scorer.

ENDPOINTS:
  Invoices:
    POST   /api/invoices            Mint an invoice (owner = X-Caller)
    GET    /api/invoices            List all invoices
    GET    /api/invoices/{id}       Get one invoice
    POST   /api/invoices/{id}/fund  Fund an invoice (funder = X-Caller)

  Observability:
    GET    /api/events              Notification log
    GET    /api/payouts             Payout history (?recipient= filter)

  Risk:
    POST   /api/analyze             Score an invoice document

ERROR HANDLING:
  Ledger errors map onto HTTP status codes:
  - 400: Invalid input (bad amount, missing caller)
  - 402: Insufficient attached value
  - 404: Invoice not found
  - 409: Invoice already funded
  - 500: Storage or transfer failures

SECURITY NOTE:
  X-Caller is trusted as-is; an authenticating gateway in front of this
  service is responsible for populating it.

SEE ALSO:
  - dto.go: Request/response data structures
  - host.go: Request-scoped platform capabilities
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowfi/factor-engine/factor"
	"github.com/flowfi/factor-engine/risk"
	"github.com/flowfi/factor-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *factor.Ledger
	Store  *sqlite.Store
	Scorer *risk.Scorer
}

// NewHandler creates a handler over the given store. The ledger emits to
// the store's durable event log.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Ledger: factor.NewLedger(store, store),
		Store:  store,
		Scorer: risk.NewScorer(),
	}
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// MintInvoice handles POST /api/invoices.
func (h *Handler) MintInvoice(w http.ResponseWriter, r *http.Request) {
	caller := factor.Identity(r.Header.Get(CallerHeader))
	if caller == "" {
		writeError(w, http.StatusBadRequest, "Missing "+CallerHeader+" header", nil)
		return
	}

	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := factor.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	host := &requestHost{ctx: r.Context(), caller: caller, store: h.Store}
	id, err := h.Ledger.Mint(r.Context(), host, amount, req.Reference)
	if err != nil {
		if factor.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Mint rejected", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to mint invoice", err)
		return
	}

	invoicesMinted.Inc()

	inv, err := h.Ledger.Get(r.Context(), id)
	if err != nil || inv == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read minted invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, invoiceDTO(*inv))
}

// ListInvoices handles GET /api/invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Ledger.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		dtos = append(dtos, invoiceDTO(inv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetInvoice handles GET /api/invoices/{id}.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceIDParam(w, r)
	if !ok {
		return
	}

	inv, err := h.Ledger.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, invoiceDTO(*inv))
}

// FundInvoice handles POST /api/invoices/{id}/fund.
func (h *Handler) FundInvoice(w http.ResponseWriter, r *http.Request) {
	caller := factor.Identity(r.Header.Get(CallerHeader))
	if caller == "" {
		writeError(w, http.StatusBadRequest, "Missing "+CallerHeader+" header", nil)
		return
	}

	id, ok := invoiceIDParam(w, r)
	if !ok {
		return
	}

	var req FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	attached, err := factor.ParseAmount(req.AttachedValue)
	if err != nil || attached.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid attached_value", err)
		return
	}

	host := &requestHost{
		ctx:       r.Context(),
		caller:    caller,
		escrow:    attached,
		invoiceID: id,
		store:     h.Store,
	}

	if err := h.Ledger.Fund(r.Context(), host, id); err != nil {
		switch {
		case errors.Is(err, factor.ErrInvoiceNotFound):
			fundFailures.WithLabelValues(reasonNotFound).Inc()
			writeError(w, http.StatusNotFound, "Invoice not found", nil)
		case errors.Is(err, factor.ErrAlreadyFunded):
			fundFailures.WithLabelValues(reasonAlreadyFunded).Inc()
			writeError(w, http.StatusConflict, "Invoice already funded", nil)
		case errors.Is(err, factor.ErrInsufficientFunds):
			fundFailures.WithLabelValues(reasonInsufficient).Inc()
			writeError(w, http.StatusPaymentRequired, "Attached value below invoice amount", err)
		default:
			fundFailures.WithLabelValues(reasonInternal).Inc()
			writeError(w, http.StatusInternalServerError, "Failed to fund invoice", err)
		}
		return
	}

	invoicesFunded.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EVENT AND PAYOUT HANDLERS
// =============================================================================

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, EventDTO{
			Seq:       rec.Seq,
			Kind:      rec.Kind,
			InvoiceID: rec.InvoiceID,
			Account:   rec.Account,
			Amount:    rec.Amount,
			Reference: rec.Reference,
			CreatedAt: rec.CreatedAt.Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPayouts handles GET /api/payouts.
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPayouts(r.Context(), r.URL.Query().Get("recipient"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payouts", err)
		return
	}

	dtos := make([]PayoutDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, payoutDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RISK HANDLER
// =============================================================================

// AnalyzeDocument handles POST /api/analyze.
func (h *Handler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Document == "" {
		writeError(w, http.StatusBadRequest, "Document text is required", nil)
		return
	}

	documentsAnalyzed.Inc()
	writeJSON(w, http.StatusOK, assessmentDTO(h.Scorer.Analyze(req.Document)))
}

// =============================================================================
// HELPERS
// =============================================================================

func invoiceIDParam(w http.ResponseWriter, r *http.Request) (factor.InvoiceID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice id", err)
		return 0, false
	}
	return factor.InvoiceID(id), true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
