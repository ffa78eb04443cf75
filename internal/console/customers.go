package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
)

const customersPath = "/customers"

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}

	customers, err := h.catalog(r).Customers.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	data["Customers"] = filter(customers, func(c domain.Customer) bool {
		return matches(search, c.FullName(), c.Document.String())
	})
	h.render(w, r, "pages/customers.html", "Clientes", data, http.StatusOK)
}

func (h *Handler) showCustomerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/customer_form.html", "Nuevo cliente", map[string]any{
		"Errors": formErrors{},
		"Form":   customerForm{},
	}, http.StatusOK)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCustomerForm(r)
	data := map[string]any{"Form": form}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Customers.Create(r.Context(), payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/customer_form.html", "Nuevo cliente", data)
		return
	}
	h.redirectWithFlash(w, r, customersPath, "success", "Cliente creado correctamente.")
}

func (h *Handler) showEditCustomerForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	customer, err := h.catalog(r).Customers.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, customersPath)
		return
	}
	h.render(w, r, "pages/customer_form.html", "Editar cliente", map[string]any{
		"Errors": formErrors{},
		"ID":     customer.ID,
		"Form": customerForm{
			Name:          customer.Name,
			LastName:      customer.LastName,
			Document:      customer.Document.String(),
			Phone:         customer.Phone,
			EstadoCredito: customer.EstadoCredito,
		},
	}, http.StatusOK)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCustomerForm(r)
	data := map[string]any{"Form": form, "ID": id}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Customers.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/customer_form.html", "Editar cliente", data)
		return
	}
	h.redirectWithFlash(w, r, customersPath, "success", "Cliente actualizado correctamente.")
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Customers.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, customersPath)
		return
	}
	h.redirectWithFlash(w, r, customersPath, "success", "Cliente eliminado.")
}
