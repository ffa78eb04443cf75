package domain

import "strings"

// DefaultRole is assigned when a user form leaves the role empty.
const DefaultRole = "vendedor"

// User is an account able to log into the console.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Profile carries the personal data attached to a user.
type Profile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Document Digits `json:"document"`
	Phone    string `json:"phone"`
	User     *User  `json:"user,omitempty"`
}

// FullName joins name and last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.LastName)
}

// Customer buys on cash or credit.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	LastName      string    `json:"lastName"`
	Document      Digits    `json:"document"`
	Phone         string    `json:"phone"`
	EstadoCredito bool      `json:"estadoCredito"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// FullName joins name and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.LastName)
}

// Label is the text shown wherever a customer is selected.
func (c Customer) Label() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return "Doc " + c.Document.String()
}

// Category groups products.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Product is a sellable item with stock.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
	SalePrice  Amount    `json:"salePrice"`
	Stock      int64     `json:"stock"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// Supplier provides products.
type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Contacto string `json:"contacto"`
}

// ProductSupplier links a product with one of its suppliers.
type ProductSupplier struct {
	ID         int64 `json:"id"`
	ProductID  int64 `json:"productId"`
	SupplierID int64 `json:"supplierId"`
}

// Credit is an amount owed by a customer.
type Credit struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customerId"`
	TotalAmount Amount    `json:"totalAmount"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// CreditPayment is an instalment paid against a credit.
type CreditPayment struct {
	ID             int64     `json:"id"`
	CreditID       int64     `json:"creditId"`
	PaymentsAmount Amount    `json:"paymentsAmount"`
	CreatedAt      Timestamp `json:"createdAt"`
}

// Sale is a closed ticket.
type Sale struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customerId"`
	UserID     int64     `json:"userId"`
	Total      Amount    `json:"total"`
	Fecha      Timestamp `json:"fecha"`
}

// DetailSale is one line of a sale.
type DetailSale struct {
	ID        int64  `json:"id"`
	SaleID    int64  `json:"saleId"`
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Amount `json:"unitPrice"`
	Subtotal  Amount `json:"subtotal"`
}

// Invoice is the fiscal document of a sale.
type Invoice struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"saleId"`
	Number    string    `json:"number"`
	Total     Amount    `json:"total"`
	CreatedAt Timestamp `json:"createdAt"`
}

// LoginRequest is posted to the auth endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
