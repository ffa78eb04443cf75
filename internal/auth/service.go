package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/quantix/quantix-console/internal/apiclient"
	"github.com/quantix/quantix-console/internal/domain"
	"github.com/quantix/quantix-console/internal/resource"
)

// ErrNoToken means the backend accepted the credentials but issued no token.
var ErrNoToken = errors.New("auth: login response carried no token")

// Service exchanges credentials for a bearer token.
type Service struct {
	loginPath string
}

// NewService posts logins to loginPath, relative to the API base URL.
func NewService(loginPath string) *Service {
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	return &Service{loginPath: loginPath}
}

// Login authenticates email/password against the backend.
func (s *Service) Login(ctx context.Context, client resource.Sender, email, password string) (*domain.LoginResponse, error) {
	req := apiclient.Request{
		Method: http.MethodPost,
		Path:   s.loginPath,
		Body:   domain.LoginRequest{Email: email, Password: password},
	}
	resp, err := client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	var out domain.LoginResponse
	if err := apiclient.Decode(req, resp, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &apiclient.Error{
			Kind:    apiclient.KindAPI,
			Status:  resp.Status,
			Message: "respuesta inesperada del servidor",
			Method:  req.Method,
			Path:    req.Path,
			Err:     ErrNoToken,
		}
	}
	return &out, nil
}
