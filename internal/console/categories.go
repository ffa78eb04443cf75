package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
)

const categoriesPath = "/categories"

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}

	categories, err := h.catalog(r).Categories.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	data["Categories"] = filter(categories, func(c domain.Category) bool {
		return matches(search, c.Name, c.Description)
	})
	h.render(w, r, "pages/categories.html", "Categorías", data, http.StatusOK)
}

func (h *Handler) showCategoryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/category_form.html", "Nueva categoría", map[string]any{
		"Errors": formErrors{},
		"Form":   categoryForm{},
	}, http.StatusOK)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCategoryForm(r)
	data := map[string]any{"Form": form}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Categories.Create(r.Context(), payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/category_form.html", "Nueva categoría", data)
		return
	}
	h.redirectWithFlash(w, r, categoriesPath, "success", "Categoría creada correctamente.")
}

func (h *Handler) showEditCategoryForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	category, err := h.catalog(r).Categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, categoriesPath)
		return
	}
	h.render(w, r, "pages/category_form.html", "Editar categoría", map[string]any{
		"Errors": formErrors{},
		"ID":     category.ID,
		"Form":   categoryForm{Name: category.Name, Description: category.Description},
	}, http.StatusOK)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseCategoryForm(r)
	data := map[string]any{"Form": form, "ID": id}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Categories.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/category_form.html", "Editar categoría", data)
		return
	}
	h.redirectWithFlash(w, r, categoriesPath, "success", "Categoría actualizada correctamente.")
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Categories.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, categoriesPath)
		return
	}
	h.redirectWithFlash(w, r, categoriesPath, "success", "Categoría eliminada.")
}
