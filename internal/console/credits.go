package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
)

const creditsPath = "/credits"

type creditRow struct {
	domain.Credit
	Customer string
}

func customerLabels(customers []domain.Customer) map[int64]string {
	labels := make(map[int64]string, len(customers))
	for _, c := range customers {
		labels[c.ID] = c.Label()
	}
	return labels
}

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}
	cat := h.catalog(r)

	// Customers first so each credit row can show a name.
	customers, err := cat.Customers.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	if err == nil {
		credits, err := cat.Credits.List(r.Context())
		if h.loadFailed(w, r, err, data) {
			return
		}
		labels := customerLabels(customers)
		rows := make([]creditRow, 0, len(credits))
		for _, c := range credits {
			label, ok := labels[c.CustomerID]
			if !ok {
				label = "#" + itoa(c.CustomerID)
			}
			if matches(search, label) {
				rows = append(rows, creditRow{Credit: c, Customer: label})
			}
		}
		data["Credits"] = rows
	}
	h.render(w, r, "pages/credits.html", "Créditos", data, http.StatusOK)
}

func (h *Handler) creditFormPage(w http.ResponseWriter, r *http.Request, title string, data map[string]any, err error) {
	if err != nil && h.guard.Handle(w, r, err) {
		return
	}
	customers, listErr := h.catalog(r).Customers.List(r.Context())
	if listErr != nil {
		if h.guard.Handle(w, r, listErr) {
			return
		}
		customers = []domain.Customer{}
	}
	data["Customers"] = customers
	if err != nil {
		h.formFailed(w, r, err, "pages/credit_form.html", title, data)
		return
	}
	data["Errors"] = formErrors{}
	h.render(w, r, "pages/credit_form.html", title, data, http.StatusOK)
}

func (h *Handler) showCreditForm(w http.ResponseWriter, r *http.Request) {
	h.creditFormPage(w, r, "Nuevo crédito", map[string]any{"Form": creditForm{IsActive: true}}, nil)
}

func (h *Handler) createCredit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCreditForm(r)

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Credits.Create(r.Context(), payload)
	}
	if err != nil {
		h.creditFormPage(w, r, "Nuevo crédito", map[string]any{"Form": form}, err)
		return
	}
	h.redirectWithFlash(w, r, creditsPath, "success", "Crédito creado correctamente.")
}

func (h *Handler) showEditCreditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid credit ID", http.StatusBadRequest)
		return
	}
	credit, err := h.catalog(r).Credits.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, creditsPath)
		return
	}
	form := creditForm{
		CustomerID:  itoa(credit.CustomerID),
		TotalAmount: formatDecimal(credit.TotalAmount.Float()),
		IsActive:    credit.IsActive,
	}
	h.creditFormPage(w, r, "Editar crédito", map[string]any{"Form": form, "ID": credit.ID}, nil)
}

func (h *Handler) updateCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid credit ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCreditForm(r)

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Credits.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.creditFormPage(w, r, "Editar crédito", map[string]any{"Form": form, "ID": id}, err)
		return
	}
	h.redirectWithFlash(w, r, creditsPath, "success", "Crédito actualizado correctamente.")
}

func (h *Handler) deleteCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid credit ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Credits.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, creditsPath)
		return
	}
	h.redirectWithFlash(w, r, creditsPath, "success", "Crédito eliminado.")
}
