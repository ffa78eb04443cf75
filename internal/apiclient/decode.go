package apiclient

import (
	"context"
	"encoding/json"
)

// Do sends req and decodes a successful body into out. A nil out, or an
// empty (204) response, skips decoding.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return Decode(req, resp, out)
}

// Decode unmarshals resp into out. A body that does not fit out is reported
// as an API error so callers keep branching on the same vocabulary.
func Decode(req Request, resp *Response, out any) error {
	if out == nil || resp.Empty() {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &Error{
			Kind:    KindAPI,
			Status:  resp.Status,
			Message: "respuesta inesperada del servidor",
			Method:  req.Method,
			Path:    req.Path,
			Err:     err,
		}
	}
	return nil
}
