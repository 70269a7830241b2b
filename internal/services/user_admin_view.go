// Package services holds the users admin page state. One UserAdminView is shared by the whole process,
// so every operator sees the same query, sort order and form.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/japanesestudent/useradmin/internal/models"
	"github.com/japanesestudent/useradmin/internal/repositories"
	"go.uber.org/zap"
)

var (
	// ErrMissingFields is returned when a submitted form has a blank text field
	ErrMissingFields = errors.New("all user fields are required")
	// ErrUserNotFound is returned when editing a user that is not in the loaded list
	ErrUserNotFound = errors.New("user not found in the loaded list")
	// ErrFormClosed is returned when submitting a form that is not open
	ErrFormClosed = errors.New("form is not open")
)

// UsersRepository is the interface that wraps methods for the remote users collection
type UsersRepository interface {
	// Method GetAll retrieve every user of the collection.
	//
	// If the backend rejects the credentials, the returned error matches repositories.ErrUnauthorized.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method Create submits a draft to the collection and returns the created user with its assigned ID.
	Create(ctx context.Context, draft models.UserDraft) (*models.User, error)
	// Method Update replaces the user identified by user.ID.
	Update(ctx context.Context, user models.User) (*models.User, error)
	// Method Delete removes the user identified by id.
	Delete(ctx context.Context, id int) error
}

// Navigator moves the operator to another route of the admin panel
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f(ctx, path)
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// UserAdminState is a copy of the view state used for rendering
type UserAdminState struct {
	Users   []models.User
	Total   int
	Query   string
	Sort    models.SortOrder
	Mode    models.FormMode
	Draft   models.UserDraft
	Editing models.User
	Loaded  bool
}

// UserAdminView holds the users list of the admin page, the derived filtered and sorted view,
// and the add/edit form state.
//
// Every mutation is followed by a refresh of the list. Failures are logged and leave the state unchanged.
// The mutex only guards fields; it is not held across backend calls, so concurrent
// submissions race and the last response wins.
type UserAdminView struct {
	repo      UsersRepository
	sorter    *UserSorter
	navigator Navigator
	loginPath string
	logger    *zap.Logger

	mu      sync.Mutex
	users   []models.User
	query   string
	order   models.SortOrder
	mode    models.FormMode
	draft   models.UserDraft
	editing models.User
	loaded  bool
}

// NewUserAdminView creates a new user admin view.
//
// loginPath is passed to navigator when the backend answers the list fetch with 401.
func NewUserAdminView(repo UsersRepository, sorter *UserSorter, navigator Navigator, loginPath string, logger *zap.Logger) *UserAdminView {
	return &UserAdminView{
		repo:      repo,
		sorter:    sorter,
		navigator: navigator,
		loginPath: loginPath,
		logger:    logger,
		users:     []models.User{},
		order:     models.DefaultSortOrder,
		mode:      models.FormNone,
	}
}

// Refresh fetches all users and replaces the local list.
//
// A 401 response navigates to the login path. Other errors are logged and keep the current list.
func (v *UserAdminView) Refresh(ctx context.Context) error {
	users, err := v.repo.GetAll(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrUnauthorized) {
			v.logger.Warn("users fetch unauthorized, redirecting to login", zap.String("path", v.loginPath))
			v.navigator.Navigate(ctx, v.loginPath)
			return err
		}
		v.logger.Error("failed to fetch users", zap.Error(err))
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	v.mu.Lock()
	v.users = users
	v.loaded = true
	v.mu.Unlock()
	return nil
}

// SetQuery sets the search text matched against full name and email
func (v *UserAdminView) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
}

// SetSort sets the order of the visible list. Invalid orders are ignored.
func (v *UserAdminView) SetSort(order models.SortOrder) {
	if !order.Valid() {
		v.logger.Debug("ignoring invalid sort order", zap.String("order", order.String()))
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.order = order
}

// Visible returns the loaded users filtered by the query and sorted by the current order
func (v *UserAdminView) Visible() []models.User {
	v.mu.Lock()
	users, query, order := v.users, v.query, v.order
	v.mu.Unlock()

	return v.sorter.Sort(FilterUsers(users, query), order)
}

// OpenAdd opens the add form and discards any in-progress edit
func (v *UserAdminView) OpenAdd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = models.FormAdd
	v.editing = models.User{}
}

// OpenEdit opens the edit form with a copy of the user identified by id and discards any draft
func (v *UserAdminView) OpenEdit(id int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := slices.IndexFunc(v.users, func(u models.User) bool { return u.ID == id })
	if idx < 0 {
		v.logger.Warn("cannot edit unknown user", zap.Int("id", id))
		return ErrUserNotFound
	}

	v.mode = models.FormEdit
	v.editing = v.users[idx]
	v.draft = models.UserDraft{}
	return nil
}

// Cancel closes the form and discards both the draft and the edit state
func (v *UserAdminView) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeForm()
}

// UpdateDraft replaces the draft with values typed in the add form.
// It does nothing unless the add form is open.
func (v *UserAdminView) UpdateDraft(draft models.UserDraft) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode != models.FormAdd {
		v.logger.Debug("ignoring draft while add form is closed", zap.String("mode", string(v.mode)))
		return
	}
	v.draft = draft
}

// UpdateEditing replaces the editable fields of the user being edited.
// The ID of the edited user is kept. It does nothing unless the edit form is open.
func (v *UserAdminView) UpdateEditing(fields models.UserDraft) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode != models.FormEdit {
		v.logger.Debug("ignoring edit while edit form is closed", zap.String("mode", string(v.mode)))
		return
	}
	v.editing.FullName = fields.FullName
	v.editing.MobileNumber = fields.MobileNumber
	v.editing.Email = fields.Email
	v.editing.Roles = fields.Roles
}

// SubmitCreate sends the draft to the backend.
//
// On success the draft is cleared, the list is refreshed and the form is closed.
func (v *UserAdminView) SubmitCreate(ctx context.Context) error {
	v.mu.Lock()
	mode, draft := v.mode, v.draft
	v.mu.Unlock()

	if mode != models.FormAdd {
		v.logger.Warn("create submitted while add form is closed", zap.String("mode", string(mode)))
		return ErrFormClosed
	}
	if !draft.HasRequiredFields() {
		v.logger.Warn("create submitted with missing fields")
		return ErrMissingFields
	}

	created, err := v.repo.Create(ctx, draft)
	if err != nil {
		v.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	v.logger.Info("user created", zap.Int("id", created.ID))

	v.mu.Lock()
	v.draft = models.UserDraft{}
	v.mu.Unlock()

	v.refreshAfterMutation(ctx)

	v.mu.Lock()
	v.closeForm()
	v.mu.Unlock()
	return nil
}

// SubmitUpdate sends the edited user to the backend.
//
// On success the edit state is cleared, the list is refreshed and the form is closed.
func (v *UserAdminView) SubmitUpdate(ctx context.Context) error {
	v.mu.Lock()
	mode, editing := v.mode, v.editing
	v.mu.Unlock()

	if mode != models.FormEdit {
		v.logger.Warn("update submitted while edit form is closed", zap.String("mode", string(mode)))
		return ErrFormClosed
	}
	if !editing.HasRequiredFields() {
		v.logger.Warn("update submitted with missing fields", zap.Int("id", editing.ID))
		return ErrMissingFields
	}

	if _, err := v.repo.Update(ctx, editing); err != nil {
		v.logger.Error("failed to update user", zap.Error(err), zap.Int("id", editing.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}
	v.logger.Info("user updated", zap.Int("id", editing.ID))

	v.mu.Lock()
	v.editing = models.User{}
	v.mu.Unlock()

	v.refreshAfterMutation(ctx)

	v.mu.Lock()
	v.closeForm()
	v.mu.Unlock()
	return nil
}

// Delete removes the user identified by id and refreshes the list on success
func (v *UserAdminView) Delete(ctx context.Context, id int) error {
	if err := v.repo.Delete(ctx, id); err != nil {
		v.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	v.logger.Info("user deleted", zap.Int("id", id))

	v.refreshAfterMutation(ctx)
	return nil
}

// Snapshot returns a copy of the view state with the visible users
func (v *UserAdminView) Snapshot() UserAdminState {
	v.mu.Lock()
	state := UserAdminState{
		Total:   len(v.users),
		Query:   v.query,
		Sort:    v.order,
		Mode:    v.mode,
		Draft:   v.draft,
		Editing: v.editing,
		Loaded:  v.loaded,
	}
	users := v.users
	v.mu.Unlock()

	state.Users = v.sorter.Sort(FilterUsers(users, state.Query), state.Sort)
	return state
}

// refreshAfterMutation re-fetches the list once a mutation succeeded.
// Its failure does not fail the mutation; Refresh already logged it.
func (v *UserAdminView) refreshAfterMutation(ctx context.Context) {
	_ = v.Refresh(ctx)
}

// closeForm must be called with mu held
func (v *UserAdminView) closeForm() {
	v.mode = models.FormNone
	v.draft = models.UserDraft{}
	v.editing = models.User{}
}
