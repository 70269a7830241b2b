package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/useradmin/internal/models"
	"github.com/japanesestudent/useradmin/internal/services"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UserAdminService is the interface that wraps the state and commands of the users admin page.
type UserAdminService interface {
	// Method Refresh fetches the users list.
	//
	// When the backend rejects the credentials the service navigates to the login route
	// through the Navigator it was built with.
	Refresh(ctx context.Context) error
	SetQuery(query string)
	SetSort(order models.SortOrder)
	OpenAdd()
	// Method OpenEdit opens the edit form for the user with the given ID.
	//
	// If the user is not in the loaded list, services.ErrUserNotFound is returned.
	OpenEdit(id int) error
	Cancel()
	UpdateDraft(draft models.UserDraft)
	UpdateEditing(fields models.UserDraft)
	// Method SubmitCreate creates a user from the draft and refreshes the list.
	SubmitCreate(ctx context.Context) error
	// Method SubmitUpdate saves the edited user and refreshes the list.
	SubmitUpdate(ctx context.Context) error
	// Method Delete removes a user and refreshes the list.
	Delete(ctx context.Context, id int) error
	Snapshot() services.UserAdminState
}

// UserAdminHandler serves the users admin page
type UserAdminHandler struct {
	BaseHandler
	service  UserAdminService
	basePath string
}

// NewUserAdminHandler creates a new users admin page handler mounted at basePath
func NewUserAdminHandler(svc UserAdminService, basePath string, logger *zap.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		service:     svc,
		basePath:    basePath,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all users admin page routes
func (h *UserAdminHandler) RegisterRoutes(r chi.Router) {
	r.Route(h.basePath, func(r chi.Router) {
		r.Get("/", h.Page)
		r.Post("/", h.Create)
		r.Post("/form/add", h.OpenAdd)
		r.Post("/form/cancel", h.Cancel)
		r.Post("/{id}", h.Update)
		r.Post("/{id}/edit", h.OpenEdit)
		r.Post("/{id}/delete", h.Delete)
	})
}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type usersPageData struct {
	BasePath    string
	State       services.UserAdminState
	SortOptions []sortOption
}

var sortLabels = []struct {
	order models.SortOrder
	label string
}{
	{models.SortOrder{Field: models.SortByFullName, Direction: models.SortAsc}, "Name (A-Z)"},
	{models.SortOrder{Field: models.SortByFullName, Direction: models.SortDesc}, "Name (Z-A)"},
	{models.SortOrder{Field: models.SortByEmail, Direction: models.SortAsc}, "Email (A-Z)"},
	{models.SortOrder{Field: models.SortByEmail, Direction: models.SortDesc}, "Email (Z-A)"},
}

// Page handles GET {basePath}
//
// "q" and "sort" query parameters replace the search text and the order when present.
// The list is fetched on every page load; a 401 from the backend redirects to the login route.
func (h *UserAdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("q") {
		h.service.SetQuery(query.Get("q"))
	}
	if query.Has("sort") {
		if order, ok := models.ParseSortOrder(query.Get("sort")); ok {
			h.service.SetSort(order)
		} else {
			h.logger.Debug("ignoring unknown sort order", zap.String("sort", query.Get("sort")))
		}
	}

	ctx, slot := withRedirectSlot(r.Context())
	_ = h.service.Refresh(ctx)
	if target := slot.target(); target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	state := h.service.Snapshot()
	options := make([]sortOption, 0, len(sortLabels))
	for _, s := range sortLabels {
		options = append(options, sortOption{
			Value:    s.order.String(),
			Label:    s.label,
			Selected: s.order == state.Sort,
		})
	}

	h.renderHTML(w, http.StatusOK, pageTemplates, "users", usersPageData{
		BasePath:    h.basePath,
		State:       state,
		SortOptions: options,
	})
}

// OpenAdd handles POST {basePath}/form/add
func (h *UserAdminHandler) OpenAdd(w http.ResponseWriter, r *http.Request) {
	h.service.OpenAdd()
	h.backToPage(w, r, nil)
}

// Cancel handles POST {basePath}/form/cancel
func (h *UserAdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.service.Cancel()
	h.backToPage(w, r, nil)
}

// OpenEdit handles POST {basePath}/{id}/edit
func (h *UserAdminHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	// unknown users are logged by the service; the page is shown unchanged
	_ = h.service.OpenEdit(id)
	h.backToPage(w, r, nil)
}

// Create handles POST {basePath}
func (h *UserAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.parseUserForm(w, r)
	if !ok {
		return
	}

	ctx, slot := withRedirectSlot(r.Context())
	h.service.UpdateDraft(fields)
	_ = h.service.SubmitCreate(ctx)
	h.backToPage(w, r, slot)
}

// Update handles POST {basePath}/{id}
func (h *UserAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	fields, ok := h.parseUserForm(w, r)
	if !ok {
		return
	}

	if editing := h.service.Snapshot().Editing; editing.ID != id {
		h.logger.Warn("update submitted for a user that is not being edited",
			zap.Int("id", id),
			zap.Int("editing_id", editing.ID),
		)
		h.backToPage(w, r, nil)
		return
	}

	ctx, slot := withRedirectSlot(r.Context())
	h.service.UpdateEditing(fields)
	_ = h.service.SubmitUpdate(ctx)
	h.backToPage(w, r, slot)
}

// Delete handles POST {basePath}/{id}/delete
func (h *UserAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	ctx, slot := withRedirectSlot(r.Context())
	_ = h.service.Delete(ctx, id)
	h.backToPage(w, r, slot)
}

// backToPage redirects to the login route when the view navigated during the request, else back to the page
func (h *UserAdminHandler) backToPage(w http.ResponseWriter, r *http.Request, slot *redirectSlot) {
	if slot != nil {
		if target := slot.target(); target != "" {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, h.basePath, http.StatusSeeOther)
}

func (h *UserAdminHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *UserAdminHandler) parseUserForm(w http.ResponseWriter, r *http.Request) (models.UserDraft, bool) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse user form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "invalid form")
		return models.UserDraft{}, false
	}

	return models.UserDraft{
		FullName:     r.PostFormValue("fullName"),
		MobileNumber: r.PostFormValue("mobileNumber"),
		Email:        r.PostFormValue("email"),
		Roles:        r.PostFormValue("roles"),
	}, true
}
