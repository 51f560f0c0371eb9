package api

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/dealdesk/internal/models"
)

type contactRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Tags    []string `json:"tags"`
	Notes   string   `json:"notes"`
}

type contactResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"created_at"`
}

func toContactResponse(c *models.Contact) contactResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return contactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Tags:      tags,
		Notes:     c.Notes,
		CreatedAt: isoTime(c.CreatedAt),
	}
}

// handleContacts lists or creates contacts.
func (a *API) handleContacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		contacts, err := a.store.ListContacts(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]contactResponse, 0, len(contacts))
		for i := range contacts {
			out = append(out, toContactResponse(&contacts[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req contactRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		c := &models.Contact{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
			Tags:    req.Tags,
			Notes:   req.Notes,
		}
		if err := a.store.CreateContact(r.Context(), c); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Contact created", "contact_id", c.ID, "name", c.Name)
		writeJSON(w, http.StatusCreated, toContactResponse(c))

	default:
		methodNotAllowed(w)
	}
}

// handleContactByID reads, updates, or soft-deletes one contact.
func (a *API) handleContactByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		c, err := a.store.GetContact(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toContactResponse(c))

	case http.MethodPut:
		var req contactRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		c := &models.Contact{
			ID:      id,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
			Tags:    req.Tags,
			Notes:   req.Notes,
		}
		if err := a.store.UpdateContact(r.Context(), c); err != nil {
			storeError(w, r, err)
			return
		}
		updated, err := a.store.GetContact(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toContactResponse(updated))

	case http.MethodDelete:
		if err := a.store.SoftDeleteContact(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}
