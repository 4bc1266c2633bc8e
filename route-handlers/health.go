package routehandlers

import (
	"net/http"

	"github.com/dynamicdo/dynamicdo/webutil"
)

func HandleRoot(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "DynamicDo API",
	})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
