package api

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/dealdesk/internal/models"
)

// DefaultStageColor is used when a stage is created without a color.
const DefaultStageColor = "#3B82F6"

type pipelineResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	CreatedAt  string `json:"created_at"`
}

type stageResponse struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	CardCount int    `json:"card_count"`
}

type cardResponse struct {
	ID         string   `json:"id"`
	PipelineID string   `json:"pipeline_id"`
	Title      string   `json:"title"`
	Stage      string   `json:"stage"`
	StageColor string   `json:"stage_color"`
	Amount     *float64 `json:"amount"`
	LeadID     string   `json:"lead_id,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type pipelineDetailResponse struct {
	pipelineResponse
	CardCount   int             `json:"card_count"`
	TotalAmount float64         `json:"total_amount"`
	Stages      []stageResponse `json:"stages"`
	Cards       []cardResponse  `json:"cards"`
}

func toPipelineResponse(p *models.Pipeline) pipelineResponse {
	return pipelineResponse{
		ID:         p.ID,
		Name:       p.Name,
		EntityType: string(p.EntityType),
		CreatedAt:  isoTime(p.CreatedAt),
	}
}

func toCardResponse(c *models.Card) cardResponse {
	resp := cardResponse{
		ID:         c.ID,
		PipelineID: c.PipelineID,
		Title:      c.Title,
		Stage:      c.Stage,
		StageColor: c.StageColor,
		LeadID:     c.LeadID,
		CreatedAt:  isoTime(c.CreatedAt),
	}
	if c.Amount != nil {
		v := c.Amount.InexactFloat64()
		resp.Amount = &v
	}
	return resp
}

// handlePipelines lists or creates pipelines.
func (a *API) handlePipelines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entityType := models.EntityType(r.URL.Query().Get("entity_type"))
		if entityType != "" && !entityType.Valid() {
			writeError(w, http.StatusBadRequest, "entity_type must be client or contact")
			return
		}
		pipelines, err := a.store.ListPipelines(r.Context(), entityType)
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]pipelineResponse, 0, len(pipelines))
		for i := range pipelines {
			out = append(out, toPipelineResponse(&pipelines[i]))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req struct {
			Name       string `json:"name"`
			EntityType string `json:"entity_type"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		entityType := models.EntityType(req.EntityType)
		if !entityType.Valid() {
			writeError(w, http.StatusBadRequest, "entity_type must be client or contact")
			return
		}

		p := &models.Pipeline{Name: req.Name, EntityType: entityType}
		if err := a.store.CreatePipeline(r.Context(), p); err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Pipeline created", "pipeline_id", p.ID, "name", p.Name)
		writeJSON(w, http.StatusCreated, toPipelineResponse(p))

	default:
		methodNotAllowed(w)
	}
}

// handlePipelineByID serves the stats read and the cascading delete.
func (a *API) handlePipelineByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := a.store.GetPipeline(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		cards, err := a.store.ListCards(r.Context(), id)
		if err != nil {
			serverError(w, r, err)
			return
		}

		// Stages are derived, not stored: group the active cards by
		// label in first-seen order. Missing amounts count as zero.
		total := decimal.Zero
		var stages []stageResponse
		stageIndex := map[string]int{}
		cardsOut := make([]cardResponse, 0, len(cards))
		for i := range cards {
			c := &cards[i]
			if c.Amount != nil {
				total = total.Add(*c.Amount)
			}
			if idx, ok := stageIndex[c.Stage]; ok {
				stages[idx].CardCount++
			} else {
				stageIndex[c.Stage] = len(stages)
				stages = append(stages, stageResponse{Name: c.Stage, Color: c.StageColor, CardCount: 1})
			}
			cardsOut = append(cardsOut, toCardResponse(c))
		}
		if stages == nil {
			stages = []stageResponse{}
		}

		writeJSON(w, http.StatusOK, pipelineDetailResponse{
			pipelineResponse: toPipelineResponse(p),
			CardCount:        len(cards),
			TotalAmount:      total.InexactFloat64(),
			Stages:           stages,
			Cards:            cardsOut,
		})

	case http.MethodDelete:
		if err := a.store.DeletePipeline(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		slog.Info("Pipeline deleted", "pipeline_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

// handleStages manages the emergent stage columns of one pipeline:
// rename/recolor (PUT), virtual create (POST), delete-if-empty (DELETE).
func (a *API) handleStages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Every stage operation requires the pipeline to exist.
	if _, err := a.store.GetPipeline(r.Context(), id); err != nil {
		storeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			OldStage string `json:"old_stage"`
			NewStage string `json:"new_stage"`
			NewColor string `json:"new_color"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.OldStage == "" || req.NewStage == "" {
			writeError(w, http.StatusBadRequest, "old_stage and new_stage are required")
			return
		}
		if req.NewColor == "" {
			req.NewColor = DefaultStageColor
		}

		// Single UPDATE: label and color move together across the
		// whole column or not at all. Renaming onto an existing label
		// merges the two columns; that is accepted behavior.
		updated, err := a.store.RenameStage(r.Context(), id, req.OldStage, req.NewStage, req.NewColor)
		if err != nil {
			serverError(w, r, err)
			return
		}
		slog.Info("Stage renamed",
			"pipeline_id", id,
			"old_stage", req.OldStage,
			"new_stage", req.NewStage,
			"cards_updated", updated,
		)
		writeJSON(w, http.StatusOK, map[string]any{
			"stage":         req.NewStage,
			"color":         req.NewColor,
			"cards_updated": updated,
		})

	case http.MethodPost:
		var req struct {
			StageName string `json:"stage_name"`
			Color     string `json:"color"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.StageName == "" {
			writeError(w, http.StatusBadRequest, "stage_name is required")
			return
		}
		if req.Color == "" {
			req.Color = DefaultStageColor
		}

		// Nothing is persisted: a stage only becomes real once a card
		// references it.
		writeJSON(w, http.StatusCreated, stageResponse{Name: req.StageName, Color: req.Color})

	case http.MethodDelete:
		stage := r.URL.Query().Get("stage")
		if stage == "" {
			var req struct {
				StageName string `json:"stage_name"`
			}
			if err := decode(r, &req); err == nil {
				stage = req.StageName
			}
		}
		if stage == "" {
			writeError(w, http.StatusBadRequest, "stage_name is required")
			return
		}

		count, err := a.store.CountStageCards(r.Context(), id, stage)
		if err != nil {
			serverError(w, r, err)
			return
		}
		if count > 0 {
			writeError(w, http.StatusBadRequest, "cannot delete a column with cards")
			return
		}
		// Zero active cards means there is no row to remove.
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}

type cardRequest struct {
	Title      string           `json:"title"`
	Stage      string           `json:"stage"`
	StageColor string           `json:"stage_color"`
	Amount     *decimal.Decimal `json:"amount"`
	LeadID     string           `json:"lead_id"`
}

// handlePipelineCards creates a card on a pipeline.
func (a *API) handlePipelineCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id := r.PathValue("id")

	if _, err := a.store.GetPipeline(r.Context(), id); err != nil {
		storeError(w, r, err)
		return
	}

	var req cardRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Stage == "" {
		writeError(w, http.StatusBadRequest, "title and stage are required")
		return
	}
	if req.StageColor == "" {
		req.StageColor = DefaultStageColor
	}

	c := &models.Card{
		PipelineID: id,
		Title:      req.Title,
		Stage:      req.Stage,
		StageColor: req.StageColor,
		Amount:     req.Amount,
		LeadID:     req.LeadID,
	}
	if err := a.store.CreateCard(r.Context(), c); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("Card created", "card_id", c.ID, "pipeline_id", id, "stage", c.Stage)
	writeJSON(w, http.StatusCreated, toCardResponse(c))
}

// handleCardByID reads, updates, or soft-deletes one card.
func (a *API) handleCardByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		c, err := a.store.GetCard(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCardResponse(c))

	case http.MethodPut:
		c, err := a.store.GetCard(r.Context(), id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		var req cardRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Title == "" || req.Stage == "" {
			writeError(w, http.StatusBadRequest, "title and stage are required")
			return
		}
		if req.StageColor == "" {
			req.StageColor = c.StageColor
		}

		c.Title = req.Title
		c.Stage = req.Stage
		c.StageColor = req.StageColor
		c.Amount = req.Amount
		c.LeadID = req.LeadID
		if err := a.store.UpdateCard(r.Context(), c); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCardResponse(c))

	case http.MethodDelete:
		if err := a.store.SoftDeleteCard(r.Context(), id); err != nil {
			storeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		methodNotAllowed(w)
	}
}
