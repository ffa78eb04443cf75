// Package console serves the CRUD screens of the admin console.
package console

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/session"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/internal/validation"
	"github.com/quantix/quantix-console/internal/view"
)

// Handler manages the console screens. Every route must be mounted behind
// guard.RequireAuth.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     *guard.Guard
	connect   resource.Connector
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, g *guard.Guard, connect resource.Connector) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, templates: templates, csrf: csrf, guard: g, connect: connect}
}

// MountRoutes registers the console screens.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)

	r.Get("/users", h.listUsers)
	r.Get("/users/new", h.showUserForm)
	r.Post("/users", h.createUser)
	r.Get("/users/{id}/edit", h.showEditUserForm)
	r.Post("/users/{id}/edit", h.updateUser)
	r.Post("/users/{id}/delete", h.deleteUser)

	r.Get("/profiles", h.listProfiles)
	r.Get("/profiles/new", h.showProfileForm)
	r.Post("/profiles", h.createProfile)
	r.Get("/profiles/{id}/edit", h.showEditProfileForm)
	r.Post("/profiles/{id}/edit", h.updateProfile)

	r.Get("/customers", h.listCustomers)
	r.Get("/customers/new", h.showCustomerForm)
	r.Post("/customers", h.createCustomer)
	r.Get("/customers/{id}/edit", h.showEditCustomerForm)
	r.Post("/customers/{id}/edit", h.updateCustomer)
	r.Post("/customers/{id}/delete", h.deleteCustomer)

	r.Get("/categories", h.listCategories)
	r.Get("/categories/new", h.showCategoryForm)
	r.Post("/categories", h.createCategory)
	r.Get("/categories/{id}/edit", h.showEditCategoryForm)
	r.Post("/categories/{id}/edit", h.updateCategory)
	r.Post("/categories/{id}/delete", h.deleteCategory)

	r.Get("/products", h.listProducts)
	r.Get("/products/new", h.showProductForm)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}/edit", h.showEditProductForm)
	r.Post("/products/{id}/edit", h.updateProduct)
	r.Post("/products/{id}/delete", h.deleteProduct)

	r.Get("/suppliers", h.listSuppliers)
	r.Post("/suppliers", h.saveSupplier)
	r.Post("/suppliers/{id}/delete", h.deleteSupplier)

	r.Get("/credits", h.listCredits)
	r.Get("/credits/new", h.showCreditForm)
	r.Post("/credits", h.createCredit)
	r.Get("/credits/{id}/edit", h.showEditCreditForm)
	r.Post("/credits/{id}/edit", h.updateCredit)
	r.Post("/credits/{id}/delete", h.deleteCredit)

	r.Get("/intake", h.showIntake)
	r.Post("/intake", h.registerIntake)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/home.html", "Inicio", map[string]any{
		"User": currentUser(r),
	}, http.StatusOK)
}

// ============================================================================
// HELPER METHODS
// ============================================================================

type formErrors map[string]string

func (h *Handler) catalog(r *http.Request) *resource.Catalog {
	return resource.NewCatalog(h.connect(r.Context()))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if user := currentUser(r); user != nil {
		viewData.UserEmail = user.Email
	}
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.Flash(r.Context(), kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// fail reports a failed mutation on the list screen it came from. The list is
// fetched again on that screen, so the table the user saw is kept.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, location string) {
	if h.guard.Handle(w, r, err) {
		return
	}
	h.logger.Warn("console action failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	h.redirectWithFlash(w, r, location, "error", apiclient.Message(err))
}

// loadFailed reports whether a fetch error ended the request. Recoverable
// errors are surfaced on the page through data["LoadError"].
func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, err error, data map[string]any) bool {
	if err == nil {
		return false
	}
	if h.guard.Handle(w, r, err) {
		return true
	}
	h.logger.Warn("console load failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	data["LoadError"] = apiclient.Message(err)
	return false
}

// formFailed renders a form again with the error attached, unless the error
// ended the session.
func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, err error, template, title string, data map[string]any) {
	if h.guard.Handle(w, r, err) {
		return
	}
	errs := formErrors{}
	var verr *validation.Error
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields {
			errs[field] = msg
		}
		errs["general"] = verr.First()
	} else {
		h.logger.Warn("console form rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
		errs["general"] = apiclient.Message(err)
	}
	data["Errors"] = errs
	h.render(w, r, template, title, data, http.StatusUnprocessableEntity)
}

func pathID(r *http.Request) (int64, bool) {
	return validation.ParseID(chi.URLParam(r, "id"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func currentUser(r *http.Request) *domain.User {
	raw, ok := session.FromContext(r.Context()).CurrentUser()
	if !ok {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	return &user
}

// matches reports whether any of fields contains term, case-insensitively.
func matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func trimmed(r *http.Request, field string) string {
	return strings.TrimSpace(r.PostFormValue(field))
}
