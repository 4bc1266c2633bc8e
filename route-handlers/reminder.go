package routehandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dynamicdo/dynamicdo/engine"
	"github.com/dynamicdo/dynamicdo/models"
	"github.com/dynamicdo/dynamicdo/webutil"
)

type ReminderHandler struct {
	Engine *engine.Engine
}

func NewReminderHandler(eng *engine.Engine) *ReminderHandler {
	return &ReminderHandler{Engine: eng}
}

func (h *ReminderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) error {
	var input models.ReminderInput
	decodeLoose(r, &input)

	rem, err := h.Engine.Create(r.Context(), webutil.UserID(r.Context()), input)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusCreated, rem)
	return nil
}

func (h *ReminderHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	reminders, err := h.Engine.List(r.Context(), webutil.UserID(r.Context()))
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
	return nil
}

func (h *ReminderHandler) HandleListUncompleted(w http.ResponseWriter, r *http.Request) error {
	reminders, err := h.Engine.ListUncompleted(r.Context(), webutil.UserID(r.Context()))
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
	return nil
}

func (h *ReminderHandler) HandleGet(w http.ResponseWriter, r *http.Request) error {
	rem, err := h.Engine.Get(r.Context(), webutil.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, rem)
	return nil
}

func (h *ReminderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	var patch map[string]any
	decodeLoose(r, &patch)

	rem, err := h.Engine.Update(r.Context(), webutil.UserID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, rem)
	return nil
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	Deleted  []string `json:"deleted"`
	NotFound []string `json:"not_found"`
	Ignored  []string `json:"ignored"`
}

type toggleResponse struct {
	Updated  []string `json:"updated"`
	NotFound []string `json:"not_found"`
	Ignored  []string `json:"ignored"`
}

func (h *ReminderHandler) HandleDeleteBatch(w http.ResponseWriter, r *http.Request) error {
	var req batchRequest
	decodeLoose(r, &req)

	outcome, err := h.Engine.DeleteBatch(r.Context(), webutil.UserID(r.Context()), req.IDs)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, deleteResponse{
		Deleted:  outcome.Done,
		NotFound: outcome.NotFound,
		Ignored:  outcome.Ignored,
	})
	return nil
}

func (h *ReminderHandler) HandleCompleteBatch(w http.ResponseWriter, r *http.Request) error {
	return h.handleToggleBatch(w, r, true)
}

func (h *ReminderHandler) HandleUncompleteBatch(w http.ResponseWriter, r *http.Request) error {
	return h.handleToggleBatch(w, r, false)
}

func (h *ReminderHandler) handleToggleBatch(w http.ResponseWriter, r *http.Request, completed bool) error {
	var req batchRequest
	decodeLoose(r, &req)

	outcome, err := h.Engine.SetCompletionBatch(r.Context(), webutil.UserID(r.Context()), req.IDs, completed)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, toggleResponse{
		Updated:  outcome.Done,
		NotFound: outcome.NotFound,
		Ignored:  outcome.Ignored,
	})
	return nil
}

type rankRequest struct {
	Context string `json:"context"`
	Debug   bool   `json:"debug"`
}

func (h *ReminderHandler) HandleRank(w http.ResponseWriter, r *http.Request) error {
	var req rankRequest
	decodeLoose(r, &req)

	outcome, err := h.Engine.RankAndPersist(r.Context(), webutil.UserID(r.Context()), req.Context, req.Debug)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, outcome)
	return nil
}
