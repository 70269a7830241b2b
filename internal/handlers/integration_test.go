package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/useradmin/internal/middleware"
	"github.com/japanesestudent/useradmin/internal/models"
	"github.com/japanesestudent/useradmin/internal/repositories"
	"github.com/japanesestudent/useradmin/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
)

// usersBackend is an in-memory REST "/users" collection
type usersBackend struct {
	mu         sync.Mutex
	users      []models.User
	nextID     int
	token      string
	log        []string
	requestIDs []string
}

func (b *usersBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.log = append(b.log, req.Method+" "+req.URL.Path)
			b.requestIDs = append(b.requestIDs, req.Header.Get(middleware.RequestIDHeader))
			token := b.token
			b.mu.Unlock()
			if req.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.users)
	})
	r.Post("/users", func(w http.ResponseWriter, req *http.Request) {
		var draft models.UserDraft
		_ = json.NewDecoder(req.Body).Decode(&draft)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		u := models.User{ID: b.nextID, FullName: draft.FullName, MobileNumber: draft.MobileNumber, Email: draft.Email, Roles: draft.Roles}
		b.users = append(b.users, u)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(u)
	})
	r.Put("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(req, "id"))
		var u models.User
		_ = json.NewDecoder(req.Body).Decode(&u)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.users {
			if b.users[i].ID == id {
				b.users[i] = u
				_ = json.NewEncoder(w).Encode(u)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	r.Delete("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(req, "id"))
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.users {
			if b.users[i].ID == id {
				b.users = append(b.users[:i], b.users[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func (b *usersBackend) requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.log...)
}

func (b *usersBackend) lastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requestIDs[len(b.requestIDs)-1]
}

func setupPanel(t *testing.T, backend *usersBackend, token string) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	repo := repositories.NewUsersRepository(srv.URL, token, srv.Client(), logger)
	view := services.NewUserAdminView(repo, services.NewUserSorter(language.English), RequestNavigator{}, "/login", logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	NewUserAdminHandler(view, testBasePath, logger).RegisterRoutes(r)
	return r
}

func TestPanel_EndToEnd(t *testing.T) {
	backend := &usersBackend{
		token: "t0ken",
		users: []models.User{
			{ID: 1, FullName: "Bob", MobileNumber: "1", Email: "bob@example.com", Roles: "user"},
			{ID: 2, FullName: "Alice", MobileNumber: "2", Email: "alice@example.com", Roles: "admin"},
		},
		nextID: 4,
	}
	panel := setupPanel(t, backend, "t0ken")

	req := httptest.NewRequest(http.MethodGet, testBasePath, nil)
	req.Header.Set(middleware.RequestIDHeader, "req-e2e")
	rec := httptest.NewRecorder()
	panel.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 of 2 users")
	assert.Equal(t, "req-e2e", backend.lastRequestID())

	// create
	doRequest(panel, http.MethodPost, testBasePath+"/form/add", url.Values{})
	rec = doRequest(panel, http.MethodPost, testBasePath, userForm("Jane"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// edit
	doRequest(panel, http.MethodPost, testBasePath+"/5/edit", url.Values{})
	rec = doRequest(panel, http.MethodPost, testBasePath+"/5", userForm("Janet"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// delete
	rec = doRequest(panel, http.MethodPost, testBasePath+"/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, []string{
		"GET /users",
		"POST /users", "GET /users",
		"PUT /users/5", "GET /users",
		"DELETE /users/1", "GET /users",
	}, backend.requests())

	rec = doRequest(panel, http.MethodGet, testBasePath+"?q=JAN", nil)
	body := rec.Body.String()
	assert.Contains(t, body, "Janet")
	assert.Contains(t, body, "1 of 2 users")
	assert.NotContains(t, body, "bob@example.com")
}

func TestPanel_UnauthorizedRedirectsToLogin(t *testing.T) {
	backend := &usersBackend{token: "expected"}
	panel := setupPanel(t, backend, "stale")

	rec := doRequest(panel, http.MethodGet, testBasePath, nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"GET /users"}, backend.requests())
}
