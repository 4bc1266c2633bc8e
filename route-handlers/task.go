package routehandlers

import (
	"net/http"

	"github.com/dynamicdo/dynamicdo/ranking"
	"github.com/dynamicdo/dynamicdo/webutil"
)

type TaskHandler struct{}

func NewTaskHandler() *TaskHandler {
	return &TaskHandler{}
}

type suggestRequest struct {
	Text string `json:"text"`
}

// HandleSuggest extracts draft task suggestions from free text. Nothing is
// persisted; the client decides what becomes a reminder.
func (h *TaskHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) error {
	var req suggestRequest
	decodeLoose(r, &req)

	suggestions := ranking.SuggestTasks(req.Text)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	return nil
}
