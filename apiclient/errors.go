package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Detail     string // The backend's "detail" message when it sent one
	Body       []byte
	kind       error
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Unwrap exposes the matching internal/errors sentinel, so callers can use errors.Is
func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(body),
		Body:       body,
		kind:       kindForStatus(resp.StatusCode),
	}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.ErrSessionExpired
	case status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status >= 500:
		return apperrors.ErrBackend
	default:
		return apperrors.ErrBadRequest
	}
}

// parseDetail reads FastAPI style bodies: {"detail": "text"} or {"detail": [{"msg": "..."}]}
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
