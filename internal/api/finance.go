package api

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

type salaryRequest struct {
	Employee string           `json:"employee"`
	Amount   *decimal.Decimal `json:"amount"`
	PaidAt   string           `json:"paid_at"`
	Tags     []string         `json:"tags"`
}

type salaryResponse struct {
	ID        string   `json:"id"`
	Employee  string   `json:"employee"`
	Amount    float64  `json:"amount"`
	PaidAt    string   `json:"paid_at"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

func toSalaryResponse(s *models.Salary) salaryResponse {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return salaryResponse{
		ID:        s.ID,
		Employee:  s.Employee,
		Amount:    s.Amount.InexactFloat64(),
		PaidAt:    isoTime(s.PaidAt),
		Tags:      tags,
		CreatedAt: isoTime(s.CreatedAt),
	}
}

func salaryFromRequest(req *salaryRequest) (*models.Salary, string) {
	if req.Employee == "" {
		return nil, "employee is required"
	}
	if req.Amount == nil {
		return nil, "amount is required"
	}
	if req.PaidAt == "" {
		return nil, "paid_at is required"
	}
	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		return nil, err.Error()
	}
	return &models.Salary{
		Employee: req.Employee,
		Amount:   *req.Amount,
		PaidAt:   paidAt,
		Tags:     req.Tags,
	}, ""
}

// handleSalaries lists (optionally month-filtered) or creates salary
// records.
func (a *API) handleSalaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var filter storage.SalaryFilter
		if month := r.URL.Query().Get("month"); month != "" {
			from, to, err := monthRange(month)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			filter.From, filter.To = from, to
		}

		salaries, err := a.store.ListSalaries(r.Context(), filter)
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]salaryResponse, 0, len(salaries))
		for i := range salaries {
			out = append(out, toSalaryResponse(&salaries[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req salaryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s, msg := salaryFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if err := a.store.CreateSalary(r.Context(), s); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Salary recorded", "salary_id", s.ID, "employee", s.Employee)
		writeJSON(w, http.StatusCreated, toSalaryResponse(s))

	default:
		methodNotAllowed(w)
	}
}

// handleSalaryByID updates or soft-deletes one salary record.
func (a *API) handleSalaryByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodPut:
		var req salaryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s, msg := salaryFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		s.ID = id
		if err := a.store.UpdateSalary(r.Context(), s); err != nil {
			storeError(w, r, err)
			return
		}
		updated, err := a.store.GetSalary(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSalaryResponse(updated))

	case http.MethodDelete:
		if err := a.store.SoftDeleteSalary(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

type fixedExpenseRequest struct {
	Name     string           `json:"name"`
	Amount   *decimal.Decimal `json:"amount"`
	Category string           `json:"category"`
	DueDay   *int             `json:"due_day"`
}

type fixedExpenseResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	DueDay    *int    `json:"due_day"`
	CreatedAt string  `json:"created_at"`
}

func toFixedExpenseResponse(e *models.FixedExpense) fixedExpenseResponse {
	return fixedExpenseResponse{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    e.Amount.InexactFloat64(),
		Category:  e.Category,
		DueDay:    e.DueDay,
		CreatedAt: isoTime(e.CreatedAt),
	}
}

func fixedExpenseFromRequest(req *fixedExpenseRequest) (*models.FixedExpense, string) {
	if req.Name == "" {
		return nil, "name is required"
	}
	if req.Amount == nil {
		return nil, "amount is required"
	}
	if req.DueDay != nil && (*req.DueDay < 1 || *req.DueDay > 31) {
		return nil, "due_day must be between 1 and 31"
	}
	return &models.FixedExpense{
		Name:     req.Name,
		Amount:   *req.Amount,
		Category: req.Category,
		DueDay:   req.DueDay,
	}, ""
}

// handleFixedExpenses lists or creates fixed expenses.
func (a *API) handleFixedExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := a.store.ListFixedExpenses(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]fixedExpenseResponse, 0, len(expenses))
		for i := range expenses {
			out = append(out, toFixedExpenseResponse(&expenses[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req fixedExpenseRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		e, msg := fixedExpenseFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if err := a.store.CreateFixedExpense(r.Context(), e); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Fixed expense created", "expense_id", e.ID, "name", e.Name)
		writeJSON(w, http.StatusCreated, toFixedExpenseResponse(e))

	default:
		methodNotAllowed(w)
	}
}

// handleFixedExpenseByID updates or soft-deletes one fixed expense.
func (a *API) handleFixedExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodPut:
		var req fixedExpenseRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		e, msg := fixedExpenseFromRequest(&req)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		e.ID = id
		if err := a.store.UpdateFixedExpense(r.Context(), e); err != nil {
			storeError(w, r, err)
			return
		}
		updated, err := a.store.GetFixedExpense(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toFixedExpenseResponse(updated))

	case http.MethodDelete:
		if err := a.store.SoftDeleteFixedExpense(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

type settingsRequest struct {
	CorporateTaxPercent *decimal.Decimal `json:"corporate_tax_percent"`
	DividendTaxPercent  *decimal.Decimal `json:"dividend_tax_percent"`
}

type settingsResponse struct {
	CorporateTaxPercent float64  `json:"corporate_tax_percent"`
	DividendTaxPercent  *float64 `json:"dividend_tax_percent"`
	UpdatedAt           string   `json:"updated_at"`
}

func toSettingsResponse(s *models.FinancialSettings) settingsResponse {
	resp := settingsResponse{
		CorporateTaxPercent: s.CorporateTaxPercent.InexactFloat64(),
		UpdatedAt:           isoTime(s.UpdatedAt),
	}
	if s.DividendTaxPercent != nil {
		v := s.DividendTaxPercent.InexactFloat64()
		resp.DividendTaxPercent = &v
	}
	return resp
}

// handleSettings reads or upserts the singleton financial settings.
// The first read seeds the default 25% corporate tax. An absent percent
// in a PUT stays null, it never collapses to zero.
func (a *API) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.store.GetSettings(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSettingsResponse(settings))

	case http.MethodPut:
		var req settingsRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.CorporateTaxPercent == nil {
			writeError(w, http.StatusBadRequest, "corporate_tax_percent is required")
			return
		}

		settings := &models.FinancialSettings{
			CorporateTaxPercent: *req.CorporateTaxPercent,
			DividendTaxPercent:  req.DividendTaxPercent,
		}
		if err := a.store.UpdateSettings(r.Context(), settings); err != nil {
			serverError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSettingsResponse(settings))

	default:
		methodNotAllowed(w)
	}
}
