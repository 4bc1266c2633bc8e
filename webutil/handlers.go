package webutil

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dynamicdo/dynamicdo/engine"
	"github.com/dynamicdo/dynamicdo/logger"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc
// signature, translating returned errors into JSON error responses. Engine
// error kinds map to status codes here and nowhere else; note that NotFound
// maps to 400 so non-owners cannot distinguish "missing" from "not yours".
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}

		log := logger.Get()
		statusCode, publicMessage := classifyError(err)

		fields := logrus.Fields{
			"code":   statusCode,
			"path":   r.URL.Path,
			"method": r.Method,
		}
		if statusCode >= 500 {
			log.WithError(err).WithFields(fields).Error("Request failed")
		} else {
			log.WithError(err).WithFields(fields).Warn("Client error response")
		}

		RespondWithJSON(w, statusCode, map[string]string{"error": publicMessage})
	}
}

func classifyError(err error) (int, string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}

	if kind, ok := engine.KindOf(err); ok {
		switch kind {
		case engine.KindValidation, engine.KindNotFound:
			return http.StatusBadRequest, err.Error()
		case engine.KindStore:
			return http.StatusInternalServerError, "Internal Server Error"
		}
	}

	return http.StatusInternalServerError, "Internal Server Error"
}
