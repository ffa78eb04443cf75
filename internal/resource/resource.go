// Package resource exposes typed CRUD operations over one backend collection.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quantix/quantix-console/internal/apiclient"
)

// Sender is satisfied by *apiclient.Client.
type Sender interface {
	Send(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// Transform rewrites a raw list body before decoding, e.g. to unwrap an envelope.
type Transform func(raw json.RawMessage) (json.RawMessage, error)

// Definition names a backend collection.
type Definition struct {
	Name string
	Path string
	// List is applied to list bodies only. Nil keeps the body as is.
	List Transform
}

// Collections known to the backend. The sales-side collections may answer
// lists wrapped in a {"data": [...]} envelope.
var (
	Users            = Definition{Name: "users", Path: "/users"}
	Profiles         = Definition{Name: "profiles", Path: "/profiles"}
	Customers        = Definition{Name: "customers", Path: "/customers"}
	Credits          = Definition{Name: "credits", Path: "/credits"}
	CreditPayments   = Definition{Name: "creditPayments", Path: "/creditPayments", List: UnwrapData}
	Categories       = Definition{Name: "categories", Path: "/categories"}
	Products         = Definition{Name: "products", Path: "/products"}
	Suppliers        = Definition{Name: "suppliers", Path: "/suppliers"}
	ProductSuppliers = Definition{Name: "productSuppliers", Path: "/productSuppliers", List: UnwrapData}
	Sales            = Definition{Name: "sales", Path: "/sales", List: UnwrapData}
	DetailSales      = Definition{Name: "detailSales", Path: "/detailSales", List: UnwrapData}
	Invoices         = Definition{Name: "invoices", Path: "/invoices", List: UnwrapData}
)

// All lists every collection definition.
func All() []Definition {
	return []Definition{Users, Profiles, Customers, Credits, CreditPayments, Categories,
		Products, Suppliers, ProductSuppliers, Sales, DetailSales, Invoices}
}

// UpdateMethod is the verb used for partial updates on every collection.
const UpdateMethod = http.MethodPatch

// Service performs CRUD for one collection and returns client outcomes unchanged.
type Service[T any] struct {
	def    Definition
	client Sender
}

// New binds def to client.
func New[T any](client Sender, def Definition) *Service[T] {
	return &Service[T]{def: def, client: client}
}

// Definition returns the collection served.
func (s *Service[T]) Definition() Definition {
	return s.def
}

// List fetches the whole collection.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	req := apiclient.Request{Method: http.MethodGet, Path: s.def.Path}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Empty() && s.def.List != nil {
		body, err := s.def.List(resp.Body)
		if err != nil {
			return nil, &apiclient.Error{Kind: apiclient.KindAPI, Status: resp.Status, Message: "respuesta inesperada del servidor", Method: req.Method, Path: req.Path, Err: err}
		}
		resp = &apiclient.Response{Status: resp.Status, Body: body}
	}
	items := []T{}
	if err := apiclient.Decode(req, resp, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one item.
func (s *Service[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	req := apiclient.Request{Method: http.MethodGet, Path: s.itemPath(id), Route: s.itemRoute()}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return out, err
	}
	err = apiclient.Decode(req, resp, &out)
	return out, err
}

// Create posts payload and returns the created item.
func (s *Service[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	req := apiclient.Request{Method: http.MethodPost, Path: s.def.Path, Body: payload}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return out, err
	}
	err = apiclient.Decode(req, resp, &out)
	return out, err
}

// Update applies changes to item id and returns the updated item.
func (s *Service[T]) Update(ctx context.Context, id int64, changes any) (T, error) {
	var out T
	req := apiclient.Request{Method: UpdateMethod, Path: s.itemPath(id), Route: s.itemRoute(), Body: changes}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return out, err
	}
	err = apiclient.Decode(req, resp, &out)
	return out, err
}

// Delete removes item id. Both 204 and a JSON acknowledgement succeed.
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Send(ctx, apiclient.Request{Method: http.MethodDelete, Path: s.itemPath(id), Route: s.itemRoute()})
	return err
}

func (s *Service[T]) itemPath(id int64) string {
	return s.def.Path + "/" + strconv.FormatInt(id, 10)
}

func (s *Service[T]) itemRoute() string {
	return s.def.Path + "/{id}"
}

// UnwrapData extracts the "data" member of an envelope. Bare arrays pass through.
func UnwrapData(raw json.RawMessage) (json.RawMessage, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, nil
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return json.RawMessage("[]"), nil
	}
	return envelope.Data, nil
}

// WithList returns a copy of d using t for list bodies.
func (d Definition) WithList(t Transform) Definition {
	d.List = t
	return d
}

// Connector returns the client bound to the browser session of the request
// carried by ctx.
type Connector func(ctx context.Context) Sender
