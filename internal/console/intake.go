package console

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/shared"
)

const (
	intakePath = "/intake"
	// IntakeLogKey holds the browser session's recent stock intakes.
	IntakeLogKey = "intake_log"
	intakeLogMax = 50
)

// IntakeEntry records one stock intake made from this browser session.
type IntakeEntry struct {
	At           time.Time `json:"at"`
	SupplierName string    `json:"supplierName"`
	ProductName  string    `json:"productName"`
	Quantity     int64     `json:"quantity"`
	UnitCost     float64   `json:"unitCost"`
	Total        float64   `json:"total"`
	StockBefore  int64     `json:"stockBefore"`
	StockAfter   int64     `json:"stockAfter"`
}

func intakeLog(sess *shared.Session) []IntakeEntry {
	if sess == nil {
		return nil
	}
	raw := sess.Get(IntakeLogKey)
	if raw == "" {
		return nil
	}
	var entries []IntakeEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func appendIntake(sess *shared.Session, entry IntakeEntry) {
	if sess == nil {
		return
	}
	entries := append([]IntakeEntry{entry}, intakeLog(sess)...)
	if len(entries) > intakeLogMax {
		entries = entries[:intakeLogMax]
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	sess.Set(IntakeLogKey, string(raw))
}

func (h *Handler) intakePage(w http.ResponseWriter, r *http.Request, form intakeForm, err error) {
	if err != nil && h.guard.Handle(w, r, err) {
		return
	}
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search, "Form": form, "Errors": formErrors{}}
	cat := h.catalog(r)

	var (
		suppliers []domain.Supplier
		products  []domain.Product
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		suppliers, err = cat.Suppliers.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = cat.Products.List(ctx)
		return err
	})
	if h.loadFailed(w, r, g.Wait(), data) {
		return
	}
	data["Suppliers"] = suppliers
	data["Products"] = products
	data["Entries"] = filter(intakeLog(shared.SessionFromContext(r.Context())), func(e IntakeEntry) bool {
		return matches(search, e.SupplierName, e.ProductName)
	})
	if err != nil {
		h.formFailed(w, r, err, "pages/intake.html", "Ingresos", data)
		return
	}
	h.render(w, r, "pages/intake.html", "Ingresos", data, http.StatusOK)
}

func (h *Handler) showIntake(w http.ResponseWriter, r *http.Request) {
	h.intakePage(w, r, intakeForm{}, nil)
}

func (h *Handler) registerIntake(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseIntakeForm(r)
	in, err := form.parse()
	if err != nil {
		h.intakePage(w, r, form, err)
		return
	}

	entry, stocked, err := h.applyIntake(r, in)
	if err != nil && stocked {
		if h.guard.Handle(w, r, err) {
			return
		}
		h.logger.Warn("intake supplier link failed", slog.Int64("product_id", in.ProductID), slog.Int64("supplier_id", in.SupplierID), slog.Any("error", err))
		appendIntake(shared.SessionFromContext(r.Context()), entry)
		h.redirectWithFlash(w, r, intakePath, "error", "El stock se actualizó, pero no se pudo vincular el proveedor: "+apiclient.Message(err))
		return
	}
	if err != nil {
		h.intakePage(w, r, form, err)
		return
	}
	appendIntake(shared.SessionFromContext(r.Context()), entry)
	h.redirectWithFlash(w, r, intakePath, "success", "Ingreso registrado correctamente.")
}

// applyIntake adds the received quantity to the product's stock, optionally
// updates its sale price and makes sure the supplier is linked to it. stocked
// reports whether the stock update was saved; the entry is valid whenever it is.
func (h *Handler) applyIntake(r *http.Request, in intake) (entry IntakeEntry, stocked bool, err error) {
	cat := h.catalog(r)
	ctx := r.Context()

	product, err := cat.Products.Get(ctx, in.ProductID)
	if err != nil {
		return IntakeEntry{}, false, err
	}
	before := product.Stock
	changes := map[string]any{"stock": before + in.Quantity}
	if in.SalePrice != nil {
		changes["salePrice"] = *in.SalePrice
	}
	updated, err := cat.Products.Update(ctx, in.ProductID, changes)
	if err != nil {
		return IntakeEntry{}, false, err
	}

	var (
		links    []domain.ProductSupplier
		supplier domain.Supplier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		links, err = cat.ProductSuppliers.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		supplier, err = cat.Suppliers.Get(gctx, in.SupplierID)
		return err
	})
	err = g.Wait()
	if err == nil && !linked(links, in.ProductID, in.SupplierID) {
		link := map[string]int64{"productId": in.ProductID, "supplierId": in.SupplierID}
		_, err = cat.ProductSuppliers.Create(ctx, link)
	}

	productName := updated.Name
	if productName == "" {
		productName = product.Name
	}
	if productName == "" {
		productName = "Producto #" + itoa(in.ProductID)
	}
	supplierName := supplier.Name
	if supplierName == "" {
		supplierName = "Proveedor #" + itoa(in.SupplierID)
	}
	return IntakeEntry{
		At:           time.Now(),
		SupplierName: supplierName,
		ProductName:  productName,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		Total:        float64(in.Quantity) * in.UnitCost,
		StockBefore:  before,
		StockAfter:   before + in.Quantity,
	}, true, err
}

func linked(links []domain.ProductSupplier, productID, supplierID int64) bool {
	for _, l := range links {
		if l.ProductID == productID && l.SupplierID == supplierID {
			return true
		}
	}
	return false
}
