package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/session"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/internal/validation"
	"github.com/quantix/quantix-console/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     *guard.Guard
	connect   resource.Connector
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, g *guard.Guard, connect resource.Connector) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		guard:     g,
		connect:   connect,
	}
}

// MountRoutes registers the login surface and logout.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(h.guard.LoginPath(), h.showLogin)
	r.Post(h.guard.LoginPath(), h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email" label:"email"`
	Password string `validate:"required" label:"contraseña"`
	Next     string
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.guard.StateOf(session.FromContext(r.Context())) == guard.Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, loginPageData{Form: loginForm{Next: r.URL.Query().Get("next")}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
	errs := make(map[string]string)
	if err := validation.Struct(form); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				errs[field] = msg
			}
		}
		errs["general"] = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, loginPageData{Form: form, Errors: errs})
		return
	}

	store := session.FromContext(r.Context())
	// A stale token must not ride along with the login request.
	session.Clear(store)

	res, err := h.service.Login(r.Context(), h.connect(r.Context()), form.Email, form.Password)
	if err != nil {
		status := http.StatusUnauthorized
		switch apiclient.KindOf(err) {
		case apiclient.KindUnauthorized:
			errs["general"] = "Credenciales incorrectas"
		case apiclient.KindTransport:
			status = http.StatusBadGateway
			errs["general"] = apiclient.Message(err)
		default:
			errs["general"] = apiclient.Message(err)
		}
		h.logger.Info("login rejected", slog.String("email", form.Email), slog.Any("error", err))
		form.Password = ""
		h.render(w, r, status, loginPageData{Form: form, Errors: errs})
		return
	}

	store.SetToken(res.Token)
	if res.User != nil {
		if raw, err := json.Marshal(res.User); err == nil {
			store.SetCurrentUser(raw)
		}
	}
	target := "/"
	if guard.SafeNext(form.Next) {
		target = form.Next
	}
	shared.Flash(r.Context(), "success", "Bienvenido")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	shared.Flash(r.Context(), "info", "Sesión cerrada.")
	h.guard.Logout(w, r)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Iniciar sesión",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
