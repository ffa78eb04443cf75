package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/session"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   string
}

func backend(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		got.body = string(raw)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNoTokenMeansNoAuthorizationHeader(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `[]`)
	client := apiclient.New(srv.URL+"/api/v1", session.NewMemory())

	_, err := client.Send(context.Background(), apiclient.Request{Path: "/users"})
	require.NoError(t, err)
	_, present := got.header["Authorization"]
	assert.False(t, present)
	assert.Equal(t, "/api/v1/users", got.path)
}

func TestStoredTokenIsSentVerbatim(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `[]`)
	store := session.NewMemory()
	store.SetToken("abc123")
	client := apiclient.New(srv.URL, store)

	_, err := client.Send(context.Background(), apiclient.Request{
		Path:   "/users",
		Header: http.Header{"Authorization": []string{"Bearer spoofed"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer abc123"}, got.header.Values("Authorization"))
}

func TestContentTypeOnlyWithBody(t *testing.T) {
	srv, got := backend(t, http.StatusCreated, `{"id":1}`)
	client := apiclient.New(srv.URL, session.NewMemory())

	_, err := client.Send(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/users"})
	require.NoError(t, err)
	assert.Empty(t, got.header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.header.Get("Accept"))

	_, err = client.Send(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/users", Body: map[string]string{"email": "a@b.co"}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.JSONEq(t, `{"email":"a@b.co"}`, got.body)
	assert.Equal(t, http.MethodPost, got.method)
}

func TestUnauthorizedIgnoresBody(t *testing.T) {
	for _, body := range []string{"", "<html>nope</html>", `{"message":"jwt expired"}`} {
		srv, _ := backend(t, http.StatusUnauthorized, body)
		client := apiclient.New(srv.URL, session.NewMemory())

		_, err := client.Send(context.Background(), apiclient.Request{Path: "/users"})
		require.Error(t, err)
		assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.Equal(t, apiclient.KindUnauthorized, apiclient.KindOf(err))
	}
}

func TestUnauthorizedRunsHook(t *testing.T) {
	srv, _ := backend(t, http.StatusUnauthorized, "")
	var calls atomic.Int32
	client := apiclient.New(srv.URL, session.NewMemory(), apiclient.WithUnauthorizedHook(func(context.Context) {
		calls.Add(1)
	}))

	_, err := client.Send(context.Background(), apiclient.Request{Path: "/users"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNoContentIsEmptySuccess(t *testing.T) {
	srv, _ := backend(t, http.StatusNoContent, "")
	client := apiclient.New(srv.URL, session.NewMemory())

	resp, err := client.Send(context.Background(), apiclient.Request{Method: http.MethodDelete, Path: "/products/4"})
	require.NoError(t, err)
	assert.True(t, resp.Empty())
	assert.Nil(t, resp.Body)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}

func TestSuccessWithUnparseableBodyBecomesEmptyObject(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, "ok")
	client := apiclient.New(srv.URL, session.NewMemory())

	resp, err := client.Send(context.Background(), apiclient.Request{Path: "/health"})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(resp.Body))
}

func TestAPIErrorMessagePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message wins", http.StatusNotFound, `{"message":"not found","error":"Not Found"}`, "not found"},
		{"error fallback", http.StatusBadRequest, `{"error":"Bad Request"}`, "Bad Request"},
		{"message list", http.StatusBadRequest, `{"message":["email must be an email","password too short"]}`, "email must be an email; password too short"},
		{"empty message", http.StatusConflict, `{"message":"","error":"Conflict"}`, "Conflict"},
		{"no fields", http.StatusInternalServerError, `{"statusCode":500}`, apiclient.FallbackMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, apiclient.FallbackMessage},
		{"empty body", http.StatusForbidden, ``, apiclient.FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := backend(t, tc.status, tc.body)
			client := apiclient.New(srv.URL, session.NewMemory())

			_, err := client.Send(context.Background(), apiclient.Request{Method: http.MethodDelete, Path: "/users/9"})
			require.Error(t, err)
			assert.ErrorIs(t, err, apiclient.ErrAPI)

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, tc.want, apiclient.Message(err))
		})
	}
}

func TestTransportErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, session.NewMemory(), apiclient.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := client.Send(context.Background(), apiclient.Request{Path: "/users"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrTransport)
	assert.False(t, apiclient.KindOf(err) == apiclient.KindUnauthorized)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransportErrorOnClosedServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := apiclient.New(url, session.NewMemory())
	_, err := client.Send(context.Background(), apiclient.Request{Path: "/users"})
	require.Error(t, err)
	assert.Equal(t, apiclient.KindTransport, apiclient.KindOf(err))
}

func TestDoDecodesIntoTarget(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `[{"id":1,"email":"a@b.co"}]`)
	client := apiclient.New(srv.URL+"/", session.NewMemory())

	var users []struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, client.Do(context.Background(), apiclient.Request{Path: "users"}, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.co", users[0].Email)
}

func TestDoReportsShapeMismatchAsAPIError(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `{"data":[]}`)
	client := apiclient.New(srv.URL, session.NewMemory())

	var list []json.RawMessage
	err := client.Do(context.Background(), apiclient.Request{Path: "/users"}, &list)
	assert.ErrorIs(t, err, apiclient.ErrAPI)
}

type recordingObserver struct {
	kinds  []apiclient.Kind
	routes []string
}

func (o *recordingObserver) ObserveCall(method, route string, kind apiclient.Kind, status int, elapsed time.Duration) {
	o.kinds = append(o.kinds, kind)
	o.routes = append(o.routes, route)
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv, _ := backend(t, http.StatusNotFound, `{"message":"not found"}`)
	obs := &recordingObserver{}
	client := apiclient.New(srv.URL, session.NewMemory(), apiclient.WithObserver(obs))

	_, _ = client.Send(context.Background(), apiclient.Request{Method: http.MethodDelete, Path: "/users/3", Route: "/users/{id}"})
	assert.Equal(t, []apiclient.Kind{apiclient.KindAPI}, obs.kinds)
	assert.Equal(t, []string{"/users/{id}"}, obs.routes)
}
