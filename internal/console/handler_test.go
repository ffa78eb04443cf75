package console_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/console"
	"github.com/quantix/quantix-console/internal/guard"
	"github.com/quantix/quantix-console/internal/resource"
	"github.com/quantix/quantix-console/internal/session"
	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/internal/view"
)

type reply struct {
	status int
	body   string
}

type call struct {
	Method string
	Path   string
	Body   string
}

// fakeAPI answers "METHOD /path" keys relative to /api/v1 and records calls.
type fakeAPI struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []call
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: path, Body: string(raw)})
	rep, ok := f.replies[r.Method+" "+path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"ruta desconocida"}`)
		return
	}
	if rep.status == 0 {
		rep.status = http.StatusOK
	}
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeAPI) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeAPI) find(method, path string) (call, bool) {
	for _, c := range f.recorded() {
		if c.Method == method && c.Path == path {
			return c, true
		}
	}
	return call{}, false
}

type harness struct {
	t      *testing.T
	api    *fakeAPI
	router chi.Router
	sess   *shared.Session
}

func newHarness(t *testing.T, replies map[string]reply) *harness {
	t.Helper()
	api := &fakeAPI{replies: replies}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	manager := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	store := session.FromShared(sess)
	store.SetToken("abc123")
	store.SetCurrentUser([]byte(`{"id":1,"email":"admin@quantix.co","role":"admin"}`))

	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := guard.New("/login", logger)
	connect := func(ctx context.Context) resource.Sender {
		return apiclient.New(srv.URL+"/api/v1", session.FromContext(ctx), apiclient.WithUnauthorizedHook(guard.Expire))
	}
	h := console.NewHandler(logger, templates, shared.NewCSRFManager("csrf"), g, connect)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(g.RequireAuth)
		h.MountRoutes(r)
	})
	return &harness{t: t, api: api, router: router, sess: sess}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(shared.ContextWithSession(req.Context(), h.sess))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) flash() string {
	msg := h.sess.PopFlash()
	if msg == nil {
		return ""
	}
	return msg.Message
}

func (h *harness) token() (string, bool) {
	return session.FromShared(h.sess).Token()
}

func TestProtectedScreenWithoutTokenRedirectsBeforeFetching(t *testing.T) {
	h := newHarness(t, map[string]reply{"GET /users": {body: `[]`}})
	session.Clear(session.FromShared(h.sess))

	rec := h.get("/users")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fusers", rec.Header().Get("Location"))
	assert.Empty(t, h.api.recorded())
}

func TestExpiredJWTRedirectsBeforeFetching(t *testing.T) {
	h := newHarness(t, map[string]reply{"GET /users": {body: `[]`}})
	// {"alg":"HS256"} . {"exp":1000000000}
	session.FromShared(h.sess).SetToken("eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjEwMDAwMDAwMDB9.sig")

	rec := h.get("/users")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, h.api.recorded())
	_, ok := h.token()
	assert.False(t, ok)
}

func TestListUsersFiltersBySearch(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /users": {body: `[{"id":1,"email":"ana@quantix.co","role":"admin"},{"id":2,"email":"luis@quantix.co","role":"vendedor"}]`},
	})

	rec := h.get("/users?search=ANA")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ana@quantix.co")
	assert.NotContains(t, body, "luis@quantix.co")
	assert.Contains(t, body, "admin@quantix.co")

	c, ok := h.api.find(http.MethodGet, "/users")
	require.True(t, ok)
	assert.Empty(t, c.Body)
}

func TestListFailureKeepsSession(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /customers": {status: http.StatusInternalServerError, body: `{"error":"fallo interno"}`},
	})

	rec := h.get("/customers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fallo interno")
	_, ok := h.token()
	assert.True(t, ok)
}

func TestCreateCategoryValidationSkipsBackend(t *testing.T) {
	h := newHarness(t, map[string]reply{})

	rec := h.post("/categories", url.Values{"name": {"ab"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "El campo nombre debe tener al menos 3 caracteres.")
	assert.Empty(t, h.api.recorded())
}

func TestCreateCategoryRedirectsWithFlash(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"POST /categories": {status: http.StatusCreated, body: `{"id":9,"name":"Bebidas"}`},
	})

	rec := h.post("/categories", url.Values{"name": {" Bebidas "}, "description": {"Frías"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/categories", rec.Header().Get("Location"))
	assert.Equal(t, "Categoría creada correctamente.", h.flash())

	c, ok := h.api.find(http.MethodPost, "/categories")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"Bebidas","description":"Frías"}`, c.Body)
}

func TestUpdateSendsPatch(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"PATCH /categories/4": {body: `{"id":4,"name":"Lácteos"}`},
	})

	rec := h.post("/categories/4/edit", url.Values{"name": {"Lácteos"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := h.api.find(http.MethodPatch, "/categories/4")
	assert.True(t, ok)
}

func TestDeleteNotFoundFlashesBackendMessage(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"DELETE /categories/4": {status: http.StatusNotFound, body: `{"message":"not found"}`},
		"GET /categories":      {body: `[{"id":4,"name":"Lácteos"}]`},
	})

	rec := h.post("/categories/4/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/categories", rec.Header().Get("Location"))

	rec = h.get("/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
	assert.Contains(t, rec.Body.String(), "Lácteos")
}

func TestDeleteNoContentSucceeds(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"DELETE /customers/3": {status: http.StatusNoContent},
	})

	rec := h.post("/customers/3/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Cliente eliminado.", h.flash())
}

func TestUnauthorizedMutationLogsOut(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"DELETE /users/2": {status: http.StatusUnauthorized, body: `{"message":"jwt expired"}`},
	})

	rec := h.post("/users/2/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	_, ok := h.token()
	assert.False(t, ok)
	_, cached := session.FromShared(h.sess).CurrentUser()
	assert.False(t, cached)
}

func TestConcurrentUnauthorizedRedirectsOnce(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /suppliers": {status: http.StatusUnauthorized},
		"GET /products":  {status: http.StatusUnauthorized},
	})

	rec := h.get("/intake")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `href="/login"`))
	_, ok := h.token()
	assert.False(t, ok)
}

func TestInvalidPathID(t *testing.T) {
	h := newHarness(t, map[string]reply{})
	rec := h.get("/products/abc/edit")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.api.recorded())
}

func TestIntakeUpdatesStockAndLinksSupplier(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /products/3":       {body: `{"id":3,"name":"Arroz","stock":10,"salePrice":"3200"}`},
		"PATCH /products/3":     {body: `{"id":3,"name":"Arroz","stock":15,"salePrice":3500}`},
		"GET /productSuppliers":  {body: `[{"id":1,"productId":3,"supplierId":8}]`},
		"GET /suppliers/2":       {body: `{"id":2,"name":"Acme"}`},
		"POST /productSuppliers": {status: http.StatusCreated, body: `{"id":2,"productId":3,"supplierId":2}`},
	})

	rec := h.post("/intake", url.Values{
		"supplierId": {"2"},
		"productId":  {"3"},
		"quantity":   {"5"},
		"unitCost":   {"2500,5"},
		"salePrice":  {"3500"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/intake", rec.Header().Get("Location"))
	assert.Equal(t, "Ingreso registrado correctamente.", h.flash())

	patch, ok := h.api.find(http.MethodPatch, "/products/3")
	require.True(t, ok)
	assert.JSONEq(t, `{"stock":15,"salePrice":3500}`, patch.Body)
	link, ok := h.api.find(http.MethodPost, "/productSuppliers")
	require.True(t, ok)
	assert.JSONEq(t, `{"productId":3,"supplierId":2}`, link.Body)

	var entries []console.IntakeEntry
	require.NoError(t, json.Unmarshal([]byte(h.sess.Get(console.IntakeLogKey)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Acme", entries[0].SupplierName)
	assert.Equal(t, "Arroz", entries[0].ProductName)
	assert.Equal(t, int64(10), entries[0].StockBefore)
	assert.Equal(t, int64(15), entries[0].StockAfter)
	assert.InDelta(t, 12502.5, entries[0].Total, 0.001)
}

func TestIntakeExistingLinkIsNotDuplicated(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /products/3":       {body: `{"id":3,"name":"Arroz","stock":0}`},
		"PATCH /products/3":     {body: `{"id":3,"name":"Arroz","stock":4}`},
		"GET /productSuppliers": {body: `{"data":[{"id":1,"productId":3,"supplierId":2}]}`},
		"GET /suppliers/2":      {body: `{"id":2,"name":"Acme"}`},
	})

	rec := h.post("/intake", url.Values{"supplierId": {"2"}, "productId": {"3"}, "quantity": {"4"}, "unitCost": {"100"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, created := h.api.find(http.MethodPost, "/productSuppliers")
	assert.False(t, created)
	patch, _ := h.api.find(http.MethodPatch, "/products/3")
	assert.JSONEq(t, `{"stock":4}`, patch.Body)
}

func TestIntakeValidationRendersForm(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /suppliers": {body: `[]`},
		"GET /products":  {body: `[]`},
	})

	rec := h.post("/intake", url.Values{"supplierId": {"2"}, "productId": {"3"}, "quantity": {"0"}, "unitCost": {"100"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "El campo cantidad debe ser mayor que 0.")
	_, patched := h.api.find(http.MethodPatch, "/products/3")
	assert.False(t, patched)
}

func (h *harness) callIndex(method, path string) int {
	for i, c := range h.api.recorded() {
		if c.Method == method && c.Path == path {
			return i
		}
	}
	return -1
}

func TestIntakeLinkFailureKeepsStockUpdate(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /products/3":        {body: `{"id":3,"name":"Arroz","stock":10}`},
		"PATCH /products/3":      {body: `{"id":3,"name":"Arroz","stock":12}`},
		"GET /productSuppliers":  {body: `[]`},
		"GET /suppliers/2":       {body: `{"id":2,"name":"Acme"}`},
		"POST /productSuppliers": {status: http.StatusInternalServerError, body: `{"message":"fallo al vincular"}`},
	})

	rec := h.post("/intake", url.Values{"supplierId": {"2"}, "productId": {"3"}, "quantity": {"2"}, "unitCost": {"100"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/intake", rec.Header().Get("Location"))

	msg := h.sess.PopFlash()
	require.NotNil(t, msg)
	assert.Equal(t, "error", msg.Kind)
	assert.Contains(t, msg.Message, "El stock se actualizó")
	assert.Contains(t, msg.Message, "fallo al vincular")

	var entries []console.IntakeEntry
	require.NoError(t, json.Unmarshal([]byte(h.sess.Get(console.IntakeLogKey)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Acme", entries[0].SupplierName)
	assert.Equal(t, int64(12), entries[0].StockAfter)
}

func TestProductsFetchCategoriesFirst(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /categories": {body: `[{"id":1,"name":"Granos"}]`},
		"GET /products":   {body: `[{"id":3,"name":"Arroz","categoryId":1,"salePrice":"3200","stock":10}]`},
	})

	rec := h.get("/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Granos")
	categories := h.callIndex(http.MethodGet, "/categories")
	products := h.callIndex(http.MethodGet, "/products")
	require.NotEqual(t, -1, products)
	assert.Less(t, categories, products)
}

func TestProductsSkipListWhenCategoriesFail(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /categories": {status: http.StatusInternalServerError, body: `{"message":"sin categorías"}`},
		"GET /products":   {body: `[]`},
	})

	rec := h.get("/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sin categorías")
	_, fetched := h.api.find(http.MethodGet, "/products")
	assert.False(t, fetched)
}

func TestCreditsFetchCustomersFirst(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /customers": {body: `[{"id":4,"name":"Ana","lastName":"Gómez","document":"1020"}]`},
		"GET /credits":   {body: `[{"id":1,"customerId":4,"totalAmount":"1500","isActive":true},{"id":2,"customerId":99,"totalAmount":750}]`},
	})

	rec := h.get("/credits")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ana Gómez")
	assert.Contains(t, body, "#99")
	customers := h.callIndex(http.MethodGet, "/customers")
	credits := h.callIndex(http.MethodGet, "/credits")
	require.NotEqual(t, -1, credits)
	assert.Less(t, customers, credits)
}

func TestCreateProfileSendsNestedUser(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"POST /profiles": {status: http.StatusCreated, body: `{"id":5}`},
	})

	rec := h.post("/profiles", url.Values{
		"name":     {"Luis"},
		"lastName": {"Pérez"},
		"document": {"1020304050"},
		"phone":    {"3001234567"},
		"email":    {"luis@quantix.co"},
		"password": {"secreto123"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profiles", rec.Header().Get("Location"))
	assert.Equal(t, "Perfil creado correctamente.", h.flash())

	c, ok := h.api.find(http.MethodPost, "/profiles")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"name":"Luis","lastName":"Pérez","document":1020304050,"phone":"3001234567",
		"user":{"email":"luis@quantix.co","password":"secreto123","role":"vendedor"}
	}`, c.Body)
}

func TestProfilesHighlightOwnProfile(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"GET /profiles": {body: `[
			{"id":4,"name":"Luis","lastName":"Pérez","document":"1020","user":{"id":2,"email":"luis@quantix.co"}},
			{"id":5,"name":"Ana","lastName":"Admin","document":"3040","user":{"id":9,"email":"ADMIN@quantix.co"}}
		]`},
	})

	rec := h.get("/profiles")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/profiles/5/edit" class="btn">Mi perfil`)
	assert.Equal(t, 1, strings.Count(body, `class="highlight"`))
}

func TestSupplierSaveCreatesWithoutID(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"POST /suppliers": {status: http.StatusCreated, body: `{"id":6,"name":"Acme"}`},
	})

	rec := h.post("/suppliers", url.Values{"id": {""}, "name": {"Acme"}, "contacto": {"3001234567"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Proveedor creado correctamente.", h.flash())
	c, ok := h.api.find(http.MethodPost, "/suppliers")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"Acme","contacto":"3001234567"}`, c.Body)
	_, patched := h.api.find(http.MethodPatch, "/suppliers/6")
	assert.False(t, patched)
}

func TestSupplierSaveUpdatesWithID(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"PATCH /suppliers/6": {body: `{"id":6,"name":"Acme SAS"}`},
	})

	rec := h.post("/suppliers", url.Values{"id": {"6"}, "name": {"Acme SAS"}, "contacto": {"Laura"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Proveedor actualizado correctamente.", h.flash())
	c, ok := h.api.find(http.MethodPatch, "/suppliers/6")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"Acme SAS","contacto":"Laura"}`, c.Body)
	_, created := h.api.find(http.MethodPost, "/suppliers")
	assert.False(t, created)
}

func TestCreateUserValidation(t *testing.T) {
	cases := []struct {
		name     string
		password string
		message  string
	}{
		{"missing password", "", "El campo contraseña es obligatorio."},
		{"short password", "corta", "El campo contraseña debe tener al menos 8 caracteres."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, map[string]reply{})
			rec := h.post("/users", url.Values{"email": {"luis@quantix.co"}, "password": {tc.password}})
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			assert.Empty(t, h.api.recorded())
		})
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"POST /users": {status: http.StatusCreated, body: `{"id":3,"email":"luis@quantix.co","role":"vendedor"}`},
	})

	rec := h.post("/users", url.Values{"email": {"luis@quantix.co"}, "password": {"secreto123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Usuario creado correctamente.", h.flash())
	c, ok := h.api.find(http.MethodPost, "/users")
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"luis@quantix.co","password":"secreto123","role":"vendedor"}`, c.Body)
}

func TestUpdateUserWithoutPasswordOmitsIt(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"PATCH /users/3": {body: `{"id":3}`},
	})

	rec := h.post("/users/3/edit", url.Values{"email": {"luis@quantix.co"}, "role": {"admin"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	c, ok := h.api.find(http.MethodPatch, "/users/3")
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"luis@quantix.co","role":"admin"}`, c.Body)
}
