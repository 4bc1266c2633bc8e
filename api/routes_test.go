package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamicdo/dynamicdo/auth"
	"github.com/dynamicdo/dynamicdo/engine"
	"github.com/dynamicdo/dynamicdo/models"
	rh "github.com/dynamicdo/dynamicdo/route-handlers"
)

// memStore is a minimal in-memory engine.ReminderStore for routing tests.
type memStore struct {
	items []*models.Reminder
	seq   int
}

func (s *memStore) ValidID(id string) bool {
	return len(id) == 24 && strings.Trim(id, "0123456789abcdef") == ""
}

func (s *memStore) Insert(_ context.Context, rem *models.Reminder) (string, error) {
	s.seq++
	stored := *rem
	stored.ID = fmt.Sprintf("%024x", s.seq)
	s.items = append(s.items, &stored)
	return stored.ID, nil
}

func (s *memStore) FindByID(_ context.Context, owner, id string) (*models.Reminder, error) {
	for _, item := range s.items {
		if item.ID == id && item.UserID == owner {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByOwner(_ context.Context, owner string) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, item := range s.items {
		if item.UserID == owner {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *memStore) FindUncompleted(_ context.Context, owner string) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, item := range s.items {
		if item.UserID == owner && !item.Completed {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *memStore) FindOwnedIDs(_ context.Context, owner string, ids []string) ([]string, error) {
	var found []string
	for _, id := range ids {
		for _, item := range s.items {
			if item.ID == id && item.UserID == owner {
				found = append(found, id)
				break
			}
		}
	}
	return found, nil
}

func (s *memStore) DeleteMany(_ context.Context, owner string, ids []string) (int64, error) {
	var kept []*models.Reminder
	var deleted int64
	for _, item := range s.items {
		matched := false
		for _, id := range ids {
			if item.ID == id && item.UserID == owner {
				matched = true
				break
			}
		}
		if matched {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return deleted, nil
}

func (s *memStore) SetCompletion(_ context.Context, owner string, ids []string, completed bool, now time.Time) (int64, error) {
	var updated int64
	for _, item := range s.items {
		for _, id := range ids {
			if item.ID == id && item.UserID == owner {
				item.Completed = completed
				item.UpdatedAt = now
				updated++
			}
		}
	}
	return updated, nil
}

func (s *memStore) ApplyPatch(_ context.Context, owner, id string, fields map[string]any, now time.Time) (*models.Reminder, error) {
	for _, item := range s.items {
		if item.ID == id && item.UserID == owner {
			if title, ok := fields["title"].(string); ok {
				item.Title = title
			}
			item.UpdatedAt = now
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) SaveRank(_ context.Context, owner, id string, rank float64, priority string, now time.Time) (bool, error) {
	for _, item := range s.items {
		if item.ID == id && item.UserID == owner {
			item.Rank = &rank
			item.Priority = &priority
			item.UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

// memUsers is a minimal in-memory rh.UserStore.
type memUsers struct {
	users []*models.User
}

func (s *memUsers) CreateUser(_ context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           fmt.Sprintf("%024x", len(s.users)+1),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

type nopRanker struct{}

func (nopRanker) Rank(context.Context, []models.RankItem, string, bool) ([]models.RankResult, error) {
	return nil, nil
}

func newTestRouter() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewTokenService("test-secret")
	eng := engine.New(&memStore{}, nopRanker{}, log)

	return SetupRoutes(
		rh.NewUserHandler(&memUsers{}, tokens),
		rh.NewReminderHandler(eng),
		rh.NewTaskHandler(),
		tokens,
	)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/users/register", "", `{"email":"a@b.com","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodPost, "/api/users/login", "", `{"email":"a@b.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"DynamicDo API"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRemindersRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/api/reminders/", "/api/reminders/rank"} {
		rec := doRequest(t, router, http.MethodPost, path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterLoginAndCreateReminder(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/reminders/", token, `{"title":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.NotEmpty(t, created.ID)

	rec = doRequest(t, router, http.MethodGet, "/api/reminders/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter()
	registerAndLogin(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/users/register", "", `{"email":"a@b.com","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user already exists")
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter()
	registerAndLogin(t, router)

	for _, body := range []string{
		`{"email":"a@b.com","password":"wrong"}`,
		`{"email":"nobody@b.com","password":"hunter2"}`,
	} {
		rec := doRequest(t, router, http.MethodPost, "/api/users/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid email or password")
	}
}

func TestMalformedBodyIsEmptyObject(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)

	// A broken body is treated as {} — so creation fails on the missing
	// title, not on JSON parsing.
	rec := doRequest(t, router, http.MethodPost, "/api/reminders/", token, `{"title": "x"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title")
}

func TestBatchDeleteOverHTTP(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/reminders/", token, `{"title":"target"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body := fmt.Sprintf(`{"ids":["%s","bogus"]}`, created.ID)
	rec = doRequest(t, router, http.MethodPost, "/api/reminders/delete", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Deleted  []string `json:"deleted"`
		NotFound []string `json:"not_found"`
		Ignored  []string `json:"ignored"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{created.ID}, resp.Deleted)
	assert.Equal(t, []string{"bogus"}, resp.NotFound)
	assert.Empty(t, resp.Ignored)
}

func TestTaskSuggest(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/tasks/suggest", "", `{"text":"Buy milk. Walk the dog."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Buy milk")
	assert.Contains(t, rec.Body.String(), "Walk the dog")
}
