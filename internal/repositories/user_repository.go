package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/japanesestudent/useradmin/internal/middleware"
	"github.com/japanesestudent/useradmin/internal/models"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of an error response body is kept
const maxErrorBody = 4 * 1024

// ErrUnauthorized is matched by errors returned for HTTP 401 responses
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned when the users backend answers with a non-2xx status
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// HTTPDoer is the subset of *http.Client used by the repository
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type usersRepository struct {
	baseURL string
	token   string
	client  HTTPDoer
	logger  *zap.Logger
}

// NewUsersRepository creates a repository for the "/users" collection served at baseURL.
//
// When token is not empty it is sent as a bearer token with every request.
func NewUsersRepository(baseURL, token string, client HTTPDoer, logger *zap.Logger) *usersRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &usersRepository{
		baseURL: baseURL,
		token:   token,
		client:  client,
		logger:  logger,
	}
}

// Method GetAll is a UsersRepository implementation for retrieving every user from the backend.
func (r *usersRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Method Create is a UsersRepository implementation for creating a user from a draft.
func (r *usersRepository) Create(ctx context.Context, draft models.UserDraft) (*models.User, error) {
	var created models.User
	if err := r.do(ctx, http.MethodPost, "/users", draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Method Update is a UsersRepository implementation for replacing a user by its ID.
func (r *usersRepository) Update(ctx context.Context, user models.User) (*models.User, error) {
	var updated models.User
	if err := r.do(ctx, http.MethodPut, userPath(user.ID), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Method Delete is a UsersRepository implementation for removing a user by its ID.
func (r *usersRepository) Delete(ctx context.Context, id int) error {
	return r.do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id int) string {
	return "/users/" + strconv.Itoa(id)
}

// do sends a JSON request and decodes a JSON response into out when out is not nil
func (r *usersRepository) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set(middleware.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	r.logger.Debug("users backend response",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(msg),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// an empty 2xx body still means the backend accepted the request
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
