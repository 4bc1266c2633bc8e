package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dynamicdo/dynamicdo/auth"
	rh "github.com/dynamicdo/dynamicdo/route-handlers"
	"github.com/dynamicdo/dynamicdo/webutil"
)

const (
	apiBasePath       = "/api"
	usersBasePath     = "/users"
	remindersBasePath = "/reminders"
	tasksBasePath     = "/tasks"
	healthBasePath    = "/health"
)

const (
	paramID = "id" // General parameter name for resource IDs
)

func SetupRoutes(
	userHandler *rh.UserHandler,
	reminderHandler *rh.ReminderHandler,
	taskHandler *rh.TaskHandler,
	tokens *auth.TokenService,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)                    // Log every request
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second)) // Set a timeout context for requests

	r.Route(apiBasePath, func(r chi.Router) {
		configureUserRoutes(r, userHandler, tokens)
		configureReminderRoutes(r, reminderHandler, tokens)
		configureTaskRoutes(r, taskHandler)
		r.Get(healthBasePath, rh.HandleHealth)
	})

	r.Get("/", rh.HandleRoot)

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- User Routes ---
func configureUserRoutes(r chi.Router, handler *rh.UserHandler, tokens *auth.TokenService) {
	r.Route(usersBasePath, func(r chi.Router) {
		r.Post("/register", webutil.MakeHandler(handler.HandleRegister))
		r.Post("/login", webutil.MakeHandler(handler.HandleLogin))

		r.Group(func(r chi.Router) {
			r.Use(webutil.Authenticator(tokens))
			r.Get("/me", webutil.MakeHandler(handler.HandleMe))
		})
	})
}

// --- Reminder Routes ---
// Everything under /reminders requires a valid bearer token; the owner id
// always comes from the verified claims, never from the request body.
func configureReminderRoutes(r chi.Router, handler *rh.ReminderHandler, tokens *auth.TokenService) {
	specificReminderPath := pathWithParam("", paramID) // e.g., "/{id}"

	r.Route(remindersBasePath, func(r chi.Router) {
		r.Use(webutil.Authenticator(tokens))

		r.Post("/", webutil.MakeHandler(handler.HandleCreate))
		r.Get("/", webutil.MakeHandler(handler.HandleList))
		r.Get("/uncompleted", webutil.MakeHandler(handler.HandleListUncompleted))

		r.Post("/delete", webutil.MakeHandler(handler.HandleDeleteBatch))
		r.Post("/complete", webutil.MakeHandler(handler.HandleCompleteBatch))
		r.Post("/uncomplete", webutil.MakeHandler(handler.HandleUncompleteBatch))
		r.Post("/rank", webutil.MakeHandler(handler.HandleRank))

		r.Route(specificReminderPath, func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGet))
			r.Patch("/", webutil.MakeHandler(handler.HandleUpdate))
		})
	})
}

// --- Task Routes ---
func configureTaskRoutes(r chi.Router, handler *rh.TaskHandler) {
	r.Route(tasksBasePath, func(r chi.Router) {
		r.Post("/suggest", webutil.MakeHandler(handler.HandleSuggest))
	})
}

// --- Utility Functions ---

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
