// Package reports builds the tabular reports of the console and exports them.
package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/view"
)

// Dataset names a report.
type Dataset string

// Known datasets.
const (
	Credits        Dataset = "credits"
	CreditPayments Dataset = "creditPayments"
	Customers      Dataset = "customers"
	Sales          Dataset = "sales"
	Inventory      Dataset = "inventory"
)

// Option is a dataset as offered in the selector.
type Option struct {
	Value Dataset
	Label string
}

// Options lists the datasets in display order.
func Options() []Option {
	return []Option{
		{Credits, "Créditos"},
		{CreditPayments, "Abonos de crédito"},
		{Customers, "Clientes"},
		{Sales, "Ventas"},
		{Inventory, "Inventario"},
	}
}

// ParseDataset maps a query value to a Dataset, defaulting to Credits.
func ParseDataset(raw string) (Dataset, bool) {
	if raw == "" {
		return Credits, true
	}
	for _, o := range Options() {
		if string(o.Value) == raw {
			return o.Value, true
		}
	}
	return "", false
}

// KPI is one headline figure of a report.
type KPI struct {
	Label string
	Value string
}

// Report is a rendered dataset: formatted cells, ready for screen or export.
type Report struct {
	Dataset     Dataset
	Title       string
	Columns     []string
	Rows        [][]string
	KPIs        []KPI
	GeneratedAt time.Time
}

// Build fetches and joins the lists dataset needs. Independent lists are
// fetched concurrently; the first failure cancels the rest and is returned.
func Build(ctx context.Context, cat *resource.Catalog, dataset Dataset) (*Report, error) {
	var (
		rep *Report
		err error
	)
	switch dataset {
	case Credits:
		rep, err = buildCredits(ctx, cat)
	case CreditPayments:
		rep, err = buildCreditPayments(ctx, cat)
	case Customers:
		rep, err = buildCustomers(ctx, cat)
	case Sales:
		rep, err = buildSales(ctx, cat)
	case Inventory:
		rep, err = buildInventory(ctx, cat)
	default:
		return nil, fmt.Errorf("reports: unknown dataset %q", dataset)
	}
	if err != nil {
		return nil, err
	}
	rep.Dataset = dataset
	rep.GeneratedAt = time.Now()
	return rep, nil
}

func buildCredits(ctx context.Context, cat *resource.Catalog) (*Report, error) {
	var (
		credits   []domain.Credit
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { credits, err = cat.Credits.List(gctx); return })
	g.Go(func() (err error) { customers, err = cat.Customers.List(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := customerNames(customers)
	rep := &Report{
		Title:   "Créditos",
		Columns: []string{"ID crédito", "Cliente", "Valor total", "Activo", "Fecha creación"},
	}
	var active int
	var total float64
	for _, c := range credits {
		if c.IsActive {
			active++
		}
		total += c.TotalAmount.Float()
		rep.Rows = append(rep.Rows, []string{
			id(c.ID),
			nameOr(names, c.CustomerID),
			view.Money(c.TotalAmount),
			view.YesNo(c.IsActive),
			view.Date(c.CreatedAt),
		})
	}
	rep.KPIs = []KPI{
		{"Total créditos", count(len(credits))},
		{"Créditos activos", count(active)},
		{"Monto total", view.Money(total)},
		{"Promedio por crédito", view.Money(avg(total, len(credits)))},
	}
	return rep, nil
}

func buildCreditPayments(ctx context.Context, cat *resource.Catalog) (*Report, error) {
	var (
		payments []domain.CreditPayment
		credits  []domain.Credit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { payments, err = cat.CreditPayments.List(gctx); return })
	g.Go(func() (err error) { credits, err = cat.Credits.List(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	activeByID := make(map[int64]bool, len(credits))
	for _, c := range credits {
		activeByID[c.ID] = c.IsActive
	}
	rep := &Report{
		Title:   "Abonos de crédito",
		Columns: []string{"ID abono", "ID crédito", "Valor abono", "Crédito activo", "Fecha abono"},
	}
	var total float64
	withPayments := make(map[int64]struct{})
	for _, p := range payments {
		total += p.PaymentsAmount.Float()
		withPayments[p.CreditID] = struct{}{}
		rep.Rows = append(rep.Rows, []string{
			id(p.ID),
			id(p.CreditID),
			view.Money(p.PaymentsAmount),
			view.YesNo(activeByID[p.CreditID]),
			view.Date(p.CreatedAt),
		})
	}
	rep.KPIs = []KPI{
		{"Total abonos", count(len(payments))},
		{"Monto abonado", view.Money(total)},
		{"Promedio por abono", view.Money(avg(total, len(payments)))},
		{"Créditos con abonos", count(len(withPayments))},
	}
	return rep, nil
}

func buildCustomers(ctx context.Context, cat *resource.Catalog) (*Report, error) {
	customers, err := cat.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Title:   "Clientes",
		Columns: []string{"ID cliente", "Nombre", "Documento", "Teléfono", "Tiene crédito", "Fecha creación"},
	}
	var withCredit int
	for _, c := range customers {
		if c.EstadoCredito {
			withCredit++
		}
		rep.Rows = append(rep.Rows, []string{
			id(c.ID),
			c.FullName(),
			c.Document.String(),
			c.Phone,
			view.YesNo(c.EstadoCredito),
			view.Date(c.CreatedAt),
		})
	}
	share := 0.0
	if len(customers) > 0 {
		share = float64(withCredit) / float64(len(customers)) * 100
	}
	rep.KPIs = []KPI{
		{"Total clientes", count(len(customers))},
		{"Con crédito activo", count(withCredit)},
		{"Sin crédito", count(len(customers) - withCredit)},
		{"Porcentaje con crédito", view.Percent(share)},
	}
	return rep, nil
}

func buildSales(ctx context.Context, cat *resource.Catalog) (*Report, error) {
	var (
		sales     []domain.Sale
		customers []domain.Customer
		users     []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { sales, err = cat.Sales.List(gctx); return })
	g.Go(func() (err error) { customers, err = cat.Customers.List(gctx); return })
	g.Go(func() (err error) { users, err = cat.Users.List(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := customerNames(customers)
	emails := make(map[int64]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	rep := &Report{
		Title:   "Ventas",
		Columns: []string{"ID venta", "Cliente", "Vendedor", "Total venta", "Fecha venta"},
	}
	var total float64
	buyers := make(map[int64]struct{})
	for _, s := range sales {
		total += s.Total.Float()
		if s.CustomerID != 0 {
			buyers[s.CustomerID] = struct{}{}
		}
		rep.Rows = append(rep.Rows, []string{
			id(s.ID),
			nameOr(names, s.CustomerID),
			nameOr(emails, s.UserID),
			view.Money(s.Total),
			view.Date(s.Fecha),
		})
	}
	rep.KPIs = []KPI{
		{"Total ventas", count(len(sales))},
		{"Monto facturado", view.Money(total)},
		{"Promedio por venta", view.Money(avg(total, len(sales)))},
		{"Clientes únicos", count(len(buyers))},
	}
	return rep, nil
}

func buildInventory(ctx context.Context, cat *resource.Catalog) (*Report, error) {
	var (
		products   []domain.Product
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { products, err = cat.Products.List(gctx); return })
	g.Go(func() (err error) { categories, err = cat.Categories.List(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	rep := &Report{
		Title:   "Inventario",
		Columns: []string{"ID producto", "Nombre", "Categoría", "Precio venta", "Stock", "Valor inventario", "Fecha creación"},
	}
	var units int64
	var value float64
	for _, p := range products {
		stockValue := float64(p.Stock) * p.SalePrice.Float()
		units += p.Stock
		value += stockValue
		category := categoryNames[p.CategoryID]
		if p.Category != nil && p.Category.Name != "" {
			category = p.Category.Name
		}
		rep.Rows = append(rep.Rows, []string{
			id(p.ID),
			p.Name,
			category,
			view.Money(p.SalePrice),
			strconv.FormatInt(p.Stock, 10),
			view.Money(stockValue),
			view.Date(p.CreatedAt),
		})
	}
	rep.KPIs = []KPI{
		{"Productos", count(len(products))},
		{"Unidades en stock", strconv.FormatInt(units, 10)},
		{"Valor inventario", view.Money(value)},
		{"Precio promedio", view.Money(avg(value, len(products)))},
	}
	return rep, nil
}

func customerNames(customers []domain.Customer) map[int64]string {
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.FullName()
	}
	return names
}

// nameOr resolves key in names, falling back to "#<id>" or "#-".
func nameOr(names map[int64]string, key int64) string {
	if name := names[key]; name != "" {
		return name
	}
	if key == 0 {
		return "#-"
	}
	return "#" + id(key)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func count(n int) string {
	return strconv.Itoa(n)
}

func avg(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
