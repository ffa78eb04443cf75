package resource

import "github.com/quantix/quantix-console/internal/domain"

// Catalog bundles the typed services a console screen may need, all sharing
// one client (and therefore one session).
type Catalog struct {
	Users            *Service[domain.User]
	Profiles         *Service[domain.Profile]
	Customers        *Service[domain.Customer]
	Credits          *Service[domain.Credit]
	CreditPayments   *Service[domain.CreditPayment]
	Categories       *Service[domain.Category]
	Products         *Service[domain.Product]
	Suppliers        *Service[domain.Supplier]
	ProductSuppliers *Service[domain.ProductSupplier]
	Sales            *Service[domain.Sale]
	DetailSales      *Service[domain.DetailSale]
	Invoices         *Service[domain.Invoice]
}

// NewCatalog instantiates every collection service over client.
func NewCatalog(client Sender) *Catalog {
	return &Catalog{
		Users:            New[domain.User](client, Users),
		Profiles:         New[domain.Profile](client, Profiles),
		Customers:        New[domain.Customer](client, Customers),
		Credits:          New[domain.Credit](client, Credits),
		CreditPayments:   New[domain.CreditPayment](client, CreditPayments),
		Categories:       New[domain.Category](client, Categories),
		Products:         New[domain.Product](client, Products),
		Suppliers:        New[domain.Supplier](client, Suppliers),
		ProductSuppliers: New[domain.ProductSupplier](client, ProductSuppliers),
		Sales:            New[domain.Sale](client, Sales),
		DetailSales:      New[domain.DetailSale](client, DetailSales),
		Invoices:         New[domain.Invoice](client, Invoices),
	}
}
