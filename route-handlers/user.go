package routehandlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dynamicdo/dynamicdo/auth"
	"github.com/dynamicdo/dynamicdo/models"
	"github.com/dynamicdo/dynamicdo/webutil"
)

// UserStore is the slice of the user repository the handler needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserHandler struct {
	Repo   UserStore
	Tokens *auth.TokenService
}

func NewUserHandler(repo UserStore, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{Repo: repo, Tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req credentialsRequest
	decodeLoose(r, &req)

	if req.Email == "" || req.Password == "" {
		return webutil.ErrBadRequest("email and password are required")
	}

	existing, err := h.Repo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to look up user", err)
	}
	if existing != nil {
		return webutil.ErrBadRequest("user already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to hash password", err)
	}

	user, err := h.Repo.CreateUser(r.Context(), req.Email, hash)
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to create user", err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req credentialsRequest
	decodeLoose(r, &req)

	// Unknown email and wrong password answer identically.
	user, err := h.Repo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to look up user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return webutil.ErrUnauthorized("invalid email or password")
	}

	token, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return webutil.ErrInternalServerWrap("failed to issue token", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token":        token,
		"access_token": token,
		"token_type":   "bearer",
	})
	return nil
}

func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) error {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"user_id": webutil.UserID(r.Context()),
		"email":   webutil.UserEmail(r.Context()),
	})
	return nil
}

// decodeLoose decodes a JSON body into dst, treating a missing or malformed
// body as an empty object rather than a parse error.
func decodeLoose(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(dst)
}
