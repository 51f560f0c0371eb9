package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

type invoiceRequest struct {
	Number     string           `json:"number"`
	ClientName string           `json:"client_name"`
	Amount     *decimal.Decimal `json:"amount"`
	Status     string           `json:"status"`
	IssuedAt   string           `json:"issued_at"`
	DueAt      string           `json:"due_at"`
}

type invoiceResponse struct {
	ID         string  `json:"id"`
	Number     string  `json:"number"`
	ClientName string  `json:"client_name"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	IssuedAt   string  `json:"issued_at"`
	DueAt      *string `json:"due_at"`
	CreatedAt  string  `json:"created_at"`
}

func toInvoiceResponse(inv *models.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientName: inv.ClientName,
		Amount:     inv.Amount.InexactFloat64(),
		Status:     string(inv.Status),
		IssuedAt:   isoTime(inv.IssuedAt),
		DueAt:      isoTimePtr(inv.DueAt),
		CreatedAt:  isoTime(inv.CreatedAt),
	}
}

// invoiceFromRequest validates and converts the request payload; the
// returned message is the first violation, verbatim for the caller.
func invoiceFromRequest(req *invoiceRequest) (*models.Invoice, string) {
	if req.Number == "" {
		return nil, "number is required"
	}
	if req.ClientName == "" {
		return nil, "client_name is required"
	}
	if req.Amount == nil {
		return nil, "amount is required"
	}
	status := models.InvoiceStatus(req.Status)
	if status == "" {
		status = models.InvoiceDraft
	}
	if !status.Valid() {
		return nil, "status must be one of draft, sent, paid, overdue"
	}
	if req.IssuedAt == "" {
		return nil, "issued_at is required"
	}
	issuedAt, err := parseDate(req.IssuedAt)
	if err != nil {
		return nil, err.Error()
	}

	inv := &models.Invoice{
		Number:     req.Number,
		ClientName: req.ClientName,
		Amount:     *req.Amount,
		Status:     status,
		IssuedAt:   issuedAt,
	}
	if req.DueAt != "" {
		dueAt, err := parseDate(req.DueAt)
		if err != nil {
			return nil, err.Error()
		}
		inv.DueAt = &dueAt
	}
	return inv, ""
}

// handleInvoices lists or creates invoices.
func (a *API) handleInvoices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		invoices, err := a.store.ListInvoices(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]invoiceResponse, 0, len(invoices))
		for i := range invoices {
			out = append(out, toInvoiceResponse(&invoices[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req invoiceRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inv, msg := invoiceFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if err := a.store.CreateInvoice(r.Context(), inv); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Invoice created", "invoice_id", inv.ID, "number", inv.Number)
		writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))

	default:
		methodNotAllowed(w)
	}
}

// handleInvoiceByID reads, updates, or soft-deletes one invoice.
func (a *API) handleInvoiceByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		inv, err := a.store.GetInvoice(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(inv))

	case http.MethodPut:
		var req invoiceRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inv, msg := invoiceFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		inv.ID = id
		if err := a.store.UpdateInvoice(r.Context(), inv); err != nil {
			storeError(w, r, err)
			return
		}
		updated, err := a.store.GetInvoice(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(updated))

	case http.MethodDelete:
		if err := a.store.SoftDeleteInvoice(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

// handleInvoiceExport returns invoices selected by an explicit id list
// OR a status, intersected with an issue-date range.
func (a *API) handleInvoiceExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	filter := storage.InvoiceExportFilter{}

	if raw := q.Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.IDs = append(filter.IDs, id)
			}
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := models.InvoiceStatus(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "status must be one of draft, sent, paid, overdue")
			return
		}
		filter.Status = status
	}
	if raw := q.Get("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.To = to
	}

	invoices, err := a.store.ExportInvoices(r.Context(), filter)
	if err != nil {
		serverError(w, r, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
