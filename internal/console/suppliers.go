package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/validation"
)

const suppliersPath = "/suppliers"

// suppliersPage lists suppliers next to a single create/update form.
func (h *Handler) suppliersPage(w http.ResponseWriter, r *http.Request, form supplierForm, err error) {
	if err != nil && h.guard.Handle(w, r, err) {
		return
	}
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search, "Form": form, "Errors": formErrors{}}

	suppliers, listErr := h.catalog(r).Suppliers.List(r.Context())
	if h.loadFailed(w, r, listErr, data) {
		return
	}
	if editID, ok := validation.ParseID(r.URL.Query().Get("edit")); ok && err == nil {
		for _, s := range suppliers {
			if s.ID == editID {
				data["Form"] = supplierForm{ID: itoa(s.ID), Name: s.Name, Contacto: s.Contacto}
			}
		}
	}
	data["Suppliers"] = filter(suppliers, func(s domain.Supplier) bool {
		return matches(search, s.Name, s.Contacto)
	})
	if err != nil {
		h.formFailed(w, r, err, "pages/suppliers.html", "Proveedores", data)
		return
	}
	h.render(w, r, "pages/suppliers.html", "Proveedores", data, http.StatusOK)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	h.suppliersPage(w, r, supplierForm{}, nil)
}

func (h *Handler) saveSupplier(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseSupplierForm(r)
	if err := validation.Struct(form); err != nil {
		h.suppliersPage(w, r, form, err)
		return
	}

	service := h.catalog(r).Suppliers
	var err error
	message := "Proveedor creado correctamente."
	if id, ok := validation.ParseID(form.ID); ok {
		_, err = service.Update(r.Context(), id, form)
		message = "Proveedor actualizado correctamente."
	} else {
		_, err = service.Create(r.Context(), form)
	}
	if err != nil {
		h.suppliersPage(w, r, form, err)
		return
	}
	h.redirectWithFlash(w, r, suppliersPath, "success", message)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Suppliers.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, suppliersPath)
		return
	}
	h.redirectWithFlash(w, r, suppliersPath, "success", "Proveedor eliminado.")
}
