package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/http/response"
)

// BodyTransformer shapes every operation body. Bare bodies pass through and
// errors become response.ErrorBody; Enveloped wraps both in response.Envelope.
func BodyTransformer(shape response.Shape) huma.Transformer {
	return func(_ huma.Context, status string, v any) (any, error) {
		switch body := v.(type) {
		case response.Envelope, *response.Envelope, response.ErrorBody, *response.ErrorBody:
			return v, nil
		case *APIError:
			return shape.Failure(body.Code, body.Message, body.Details), nil
		case error:
			var statusErr huma.StatusError
			if errors.As(body, &statusErr) {
				return shape.Failure(statusToCode(statusErr.GetStatus()), statusErr.Error(), nil), nil
			}
			return shape.Failure(statusToCode(http.StatusInternalServerError), "Internal server error", nil), nil
		}

		if code, err := strconv.Atoi(status); err == nil && code >= http.StatusBadRequest {
			return shape.Failure(statusToCode(code), http.StatusText(code), v), nil
		}
		return shape.Success(v), nil
	}
}
