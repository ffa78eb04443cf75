package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/session"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/internal/view"
)

var errPDFDisabled = errors.New("reports: pdf export disabled")

// PDFRenderer turns an HTML document into a PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Handler serves the reports screen and its exports.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     *guard.Guard
	connect   resource.Connector
	pdf       PDFRenderer
}

// NewHandler builds a Handler. pdf may be nil, which disables PDF export.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, g *guard.Guard, connect resource.Connector, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, templates: templates, csrf: csrf, guard: g, connect: connect, pdf: pdf}
}

// MountRoutes registers report routes. They must sit behind guard.RequireAuth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports", h.show)
	r.Get("/reports/export", h.export)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	dataset, ok := ParseDataset(r.URL.Query().Get("dataset"))
	if !ok {
		http.Error(w, "Unknown dataset", http.StatusBadRequest)
		return
	}
	data := map[string]any{
		"Dataset":    dataset,
		"Options":    Options(),
		"PDFEnabled": h.pdf != nil,
	}
	rep, err := Build(r.Context(), resource.NewCatalog(h.connect(r.Context())), dataset)
	if err != nil {
		if h.guard.Handle(w, r, err) {
			return
		}
		h.logger.Warn("report load failed", slog.String("dataset", string(dataset)), slog.Any("error", err))
		data["LoadError"] = apiclient.Message(err)
	} else {
		data["Report"] = rep
	}
	h.render(w, r, data)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	dataset, ok := ParseDataset(r.URL.Query().Get("dataset"))
	if !ok {
		http.Error(w, "Unknown dataset", http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	back := "/reports?dataset=" + url.QueryEscape(string(dataset))

	rep, err := Build(r.Context(), resource.NewCatalog(h.connect(r.Context())), dataset)
	if err != nil {
		if h.guard.Handle(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, back, "error", apiclient.Message(err))
		return
	}
	if len(rep.Rows) == 0 {
		h.redirectWithFlash(w, r, back, "error", "No hay datos para exportar.")
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch format {
	case "csv":
		err = WriteCSV(&buf, rep)
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case "xlsx":
		err = WriteXLSX(&buf, rep)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case "pdf":
		var pdf []byte
		pdf, err = h.renderPDF(r.Context(), rep)
		buf.Write(pdf)
		contentType, ext = "application/pdf", "pdf"
	default:
		http.Error(w, "Unknown format", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("report export failed", slog.String("format", format), slog.Any("error", err))
		h.redirectWithFlash(w, r, back, "error", "No se pudo generar el archivo.")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": Filename(rep, ext)}))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderPDF(ctx context.Context, rep *Report) ([]byte, error) {
	if h.pdf == nil {
		return nil, errPDFDisabled
	}
	html, err := h.templates.HTML("pages/report_pdf.html", view.TemplateData{Title: rep.Title, Data: rep})
	if err != nil {
		return nil, err
	}
	return h.pdf.RenderHTML(ctx, html)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Reportes",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		UserEmail:   userEmail(r),
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/reports.html", viewData); err != nil {
		h.logger.Error("render reports", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.Flash(r.Context(), kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func userEmail(r *http.Request) string {
	raw, ok := session.FromContext(r.Context()).CurrentUser()
	if !ok {
		return ""
	}
	var user struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return ""
	}
	return user.Email
}
