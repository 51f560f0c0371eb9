package api

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/dealdesk/internal/models"
)

type leadRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
	Notes   string   `json:"notes"`
}

type leadResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"created_at"`
}

func toLeadResponse(l *models.Lead) leadResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return leadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Status:    l.Status,
		Tags:      tags,
		Notes:     l.Notes,
		CreatedAt: isoTime(l.CreatedAt),
	}
}

// handleLeads lists or creates leads.
func (a *API) handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		leads, err := a.store.ListLeads(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]leadResponse, 0, len(leads))
		for i := range leads {
			out = append(out, toLeadResponse(&leads[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req leadRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		l := &models.Lead{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
			Status:  req.Status,
			Tags:    req.Tags,
			Notes:   req.Notes,
		}
		if err := a.store.CreateLead(r.Context(), l); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Lead created", "lead_id", l.ID, "name", l.Name)
		writeJSON(w, http.StatusCreated, toLeadResponse(l))

	default:
		methodNotAllowed(w)
	}
}

// handleLeadByID reads, updates, or soft-deletes one lead.
func (a *API) handleLeadByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		l, err := a.store.GetLead(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeadResponse(l))

	case http.MethodPut:
		var req leadRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		l := &models.Lead{
			ID:      id,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
			Status:  req.Status,
			Tags:    req.Tags,
			Notes:   req.Notes,
		}
		if err := a.store.UpdateLead(r.Context(), l); err != nil {
			storeError(w, r, err)
			return
		}
		updated, err := a.store.GetLead(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeadResponse(updated))

	case http.MethodDelete:
		if err := a.store.SoftDeleteLead(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}
