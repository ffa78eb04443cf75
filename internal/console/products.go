package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
)

const productsPath = "/products"

// productRow is a product with its category name resolved.
type productRow struct {
	domain.Product
	CategoryName string
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}
	cat := h.catalog(r)

	// The category dropdown must exist before products are shown.
	categories, err := cat.Categories.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	if err == nil {
		products, err := cat.Products.List(r.Context())
		if h.loadFailed(w, r, err, data) {
			return
		}
		names := categoryNames(categories)
		rows := make([]productRow, 0, len(products))
		for _, p := range products {
			row := productRow{Product: p, CategoryName: names[p.CategoryID]}
			if p.Category != nil && p.Category.Name != "" {
				row.CategoryName = p.Category.Name
			}
			if matches(search, p.Name, row.CategoryName) {
				rows = append(rows, row)
			}
		}
		data["Products"] = rows
	}
	data["Categories"] = categories
	h.render(w, r, "pages/products.html", "Productos", data, http.StatusOK)
}

func categoryNames(categories []domain.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// productFormPage renders the product form with the category dropdown.
func (h *Handler) productFormPage(w http.ResponseWriter, r *http.Request, title string, data map[string]any, err error) {
	if err != nil && h.guard.Handle(w, r, err) {
		return
	}
	categories, listErr := h.catalog(r).Categories.List(r.Context())
	if listErr != nil {
		if h.guard.Handle(w, r, listErr) {
			return
		}
		categories = []domain.Category{}
	}
	data["Categories"] = categories
	if err != nil {
		h.formFailed(w, r, err, "pages/product_form.html", title, data)
		return
	}
	data["Errors"] = formErrors{}
	h.render(w, r, "pages/product_form.html", title, data, http.StatusOK)
}

func (h *Handler) showProductForm(w http.ResponseWriter, r *http.Request) {
	h.productFormPage(w, r, "Nuevo producto", map[string]any{"Form": productForm{}}, nil)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseProductForm(r)

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Products.Create(r.Context(), payload)
	}
	if err != nil {
		h.productFormPage(w, r, "Nuevo producto", map[string]any{"Form": form}, err)
		return
	}
	h.redirectWithFlash(w, r, productsPath, "success", "Producto creado correctamente.")
}

func (h *Handler) showEditProductForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.catalog(r).Products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, productsPath)
		return
	}
	form := productForm{
		Name:       product.Name,
		CategoryID: itoa(product.CategoryID),
		SalePrice:  formatDecimal(product.SalePrice.Float()),
		Stock:      itoa(product.Stock),
	}
	h.productFormPage(w, r, "Editar producto", map[string]any{"Form": form, "ID": product.ID}, nil)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseProductForm(r)

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Products.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.productFormPage(w, r, "Editar producto", map[string]any{"Form": form, "ID": id}, err)
		return
	}
	h.redirectWithFlash(w, r, productsPath, "success", "Producto actualizado correctamente.")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, productsPath)
		return
	}
	h.redirectWithFlash(w, r, productsPath, "success", "Producto eliminado.")
}
