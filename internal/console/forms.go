package console

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/validation"
)

type userForm struct {
	Email    string `validate:"required,email" label:"email"`
	Password string `validate:"omitempty,min=8" label:"contraseña"`
	Role     string
}

type userPayload struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

func parseUserForm(r *http.Request) userForm {
	return userForm{
		Email:    trimmed(r, "email"),
		Password: r.PostFormValue("password"),
		Role:     trimmed(r, "role"),
	}
}

// payload validates f. Creation requires a password; updates send one only
// when it was typed.
func (f userForm) payload(creating bool) (userPayload, error) {
	if creating && f.Password == "" {
		return userPayload{}, validation.Fail("Password", "El campo contraseña es obligatorio.")
	}
	if err := validation.Struct(f); err != nil {
		return userPayload{}, err
	}
	role := f.Role
	if creating && role == "" {
		role = domain.DefaultRole
	}
	return userPayload{Email: f.Email, Password: f.Password, Role: role}, nil
}

type profileForm struct {
	Name     string `validate:"required" label:"nombre"`
	LastName string `validate:"required" label:"apellido"`
	Document string `validate:"required,id" label:"documento"`
	Phone    string `validate:"required,min=10" label:"teléfono"`
}

type profileAccountForm struct {
	profileForm
	Email    string `validate:"required,email" label:"email"`
	Password string `validate:"required,min=8" label:"contraseña"`
	Role     string
}

type profilePayload struct {
	Name     string       `json:"name"`
	LastName string       `json:"lastName"`
	Document int64        `json:"document"`
	Phone    string       `json:"phone"`
	User     *userPayload `json:"user,omitempty"`
}

func parseProfileForm(r *http.Request) profileForm {
	return profileForm{
		Name:     trimmed(r, "name"),
		LastName: trimmed(r, "lastName"),
		Document: trimmed(r, "document"),
		Phone:    trimmed(r, "phone"),
	}
}

func parseProfileAccountForm(r *http.Request) profileAccountForm {
	return profileAccountForm{
		profileForm: parseProfileForm(r),
		Email:       trimmed(r, "email"),
		Password:    r.PostFormValue("password"),
		Role:        trimmed(r, "role"),
	}
}

func (f profileForm) payload() (profilePayload, error) {
	if err := validation.Struct(f); err != nil {
		return profilePayload{}, err
	}
	doc, _ := validation.ParseID(f.Document)
	return profilePayload{Name: f.Name, LastName: f.LastName, Document: doc, Phone: f.Phone}, nil
}

func (f profileAccountForm) payload() (profilePayload, error) {
	if err := validation.Struct(f); err != nil {
		return profilePayload{}, err
	}
	out, err := f.profileForm.payload()
	if err != nil {
		return profilePayload{}, err
	}
	role := f.Role
	if role == "" {
		role = domain.DefaultRole
	}
	out.User = &userPayload{Email: f.Email, Password: f.Password, Role: role}
	return out, nil
}

type customerForm struct {
	Name          string `validate:"required" label:"nombre"`
	LastName      string `validate:"required" label:"apellido"`
	Document      string `validate:"required,number" label:"documento"`
	Phone         string `validate:"required" label:"teléfono"`
	EstadoCredito bool
}

type customerPayload struct {
	Name          string `json:"name"`
	LastName      string `json:"lastName"`
	Document      int64  `json:"document"`
	Phone         string `json:"phone"`
	EstadoCredito bool   `json:"estadoCredito"`
}

func parseCustomerForm(r *http.Request) customerForm {
	return customerForm{
		Name:          trimmed(r, "name"),
		LastName:      trimmed(r, "lastName"),
		Document:      trimmed(r, "document"),
		Phone:         trimmed(r, "phone"),
		EstadoCredito: checked(r, "estadoCredito"),
	}
}

func (f customerForm) payload() (customerPayload, error) {
	if err := validation.Struct(f); err != nil {
		return customerPayload{}, err
	}
	doc, err := strconv.ParseInt(f.Document, 10, 64)
	if err != nil {
		return customerPayload{}, validation.Fail("Document", "El campo documento no es válido.")
	}
	return customerPayload{
		Name:          f.Name,
		LastName:      f.LastName,
		Document:      doc,
		Phone:         f.Phone,
		EstadoCredito: f.EstadoCredito,
	}, nil
}

type categoryForm struct {
	Name        string `json:"name" validate:"required,min=3" label:"nombre"`
	Description string `json:"description" validate:"max=255" label:"descripción"`
}

func parseCategoryForm(r *http.Request) categoryForm {
	return categoryForm{Name: trimmed(r, "name"), Description: trimmed(r, "description")}
}

func (f categoryForm) payload() (categoryForm, error) {
	return f, validation.Struct(f)
}

type productForm struct {
	Name       string `validate:"required" label:"nombre"`
	CategoryID string `validate:"required,id" label:"categoría"`
	SalePrice  string `validate:"omitempty,nonneg" label:"precio de venta"`
	Stock      string `validate:"omitempty,count" label:"stock"`
}

type productPayload struct {
	Name       string   `json:"name"`
	CategoryID int64    `json:"categoryId"`
	SalePrice  *float64 `json:"salePrice,omitempty"`
	Stock      *int64   `json:"stock,omitempty"`
}

func parseProductForm(r *http.Request) productForm {
	return productForm{
		Name:       trimmed(r, "name"),
		CategoryID: trimmed(r, "categoryId"),
		SalePrice:  trimmed(r, "salePrice"),
		Stock:      trimmed(r, "stock"),
	}
}

func (f productForm) payload() (productPayload, error) {
	if err := validation.Struct(f); err != nil {
		return productPayload{}, err
	}
	categoryID, _ := validation.ParseID(f.CategoryID)
	out := productPayload{Name: f.Name, CategoryID: categoryID}
	if f.SalePrice != "" {
		price, _ := validation.ParseDecimal(f.SalePrice)
		out.SalePrice = &price
	}
	if f.Stock != "" {
		stock, _ := strconv.ParseInt(f.Stock, 10, 64)
		out.Stock = &stock
	}
	return out, nil
}

type supplierForm struct {
	ID       string `json:"-" validate:"omitempty,id" label:"proveedor"`
	Name     string `json:"name" validate:"required" label:"nombre"`
	Contacto string `json:"contacto" validate:"required" label:"contacto"`
}

func parseSupplierForm(r *http.Request) supplierForm {
	return supplierForm{ID: trimmed(r, "id"), Name: trimmed(r, "name"), Contacto: trimmed(r, "contacto")}
}

type creditForm struct {
	CustomerID  string `validate:"required,id" label:"cliente"`
	TotalAmount string `validate:"required,positive" label:"valor total"`
	IsActive    bool
}

type creditPayload struct {
	CustomerID  int64   `json:"customerId"`
	TotalAmount float64 `json:"totalAmount"`
	IsActive    bool    `json:"isActive"`
}

func parseCreditForm(r *http.Request) creditForm {
	return creditForm{
		CustomerID:  trimmed(r, "customerId"),
		TotalAmount: trimmed(r, "totalAmount"),
		IsActive:    checked(r, "isActive"),
	}
}

func (f creditForm) payload() (creditPayload, error) {
	if err := validation.Struct(f); err != nil {
		return creditPayload{}, err
	}
	customerID, _ := validation.ParseID(f.CustomerID)
	total, _ := validation.ParseDecimal(f.TotalAmount)
	return creditPayload{CustomerID: customerID, TotalAmount: total, IsActive: f.IsActive}, nil
}

type intakeForm struct {
	SupplierID string `validate:"required,id" label:"proveedor"`
	ProductID  string `validate:"required,id" label:"producto"`
	Quantity   string `validate:"required,count,positive" label:"cantidad"`
	UnitCost   string `validate:"required,nonneg" label:"precio de compra"`
	SalePrice  string `validate:"omitempty,nonneg" label:"precio de venta"`
}

type intake struct {
	SupplierID int64
	ProductID  int64
	Quantity   int64
	UnitCost   float64
	SalePrice  *float64
}

func parseIntakeForm(r *http.Request) intakeForm {
	return intakeForm{
		SupplierID: trimmed(r, "supplierId"),
		ProductID:  trimmed(r, "productId"),
		Quantity:   trimmed(r, "quantity"),
		UnitCost:   trimmed(r, "unitCost"),
		SalePrice:  trimmed(r, "salePrice"),
	}
}

func (f intakeForm) parse() (intake, error) {
	if err := validation.Struct(f); err != nil {
		return intake{}, err
	}
	out := intake{}
	out.SupplierID, _ = validation.ParseID(f.SupplierID)
	out.ProductID, _ = validation.ParseID(f.ProductID)
	out.Quantity, _ = strconv.ParseInt(f.Quantity, 10, 64)
	out.UnitCost, _ = validation.ParseDecimal(f.UnitCost)
	if f.SalePrice != "" {
		price, _ := validation.ParseDecimal(f.SalePrice)
		out.SalePrice = &price
	}
	return out, nil
}

func checked(r *http.Request, field string) bool {
	switch strings.ToLower(r.PostFormValue(field)) {
	case "on", "true", "1":
		return true
	}
	return false
}
