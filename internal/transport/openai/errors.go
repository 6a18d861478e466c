package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response
// and wraps it with a domain sentinel. Timeouts, 408, 429 and 5xx are
// wrapped with domain.ErrProviderTransient so callers may retry;
// everything else gets the permanent sentinel for correct 502 mapping.
func parseAPIError(err error, kind string, permanent error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := classifyStatus(reqErr.HTTPStatusCode, permanent)
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", kind, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrap := classifyStatus(apiErr.HTTPStatusCode, permanent)
		return fmt.Errorf("%s API error %d: %s: %w", kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if isTimeout(err) {
		return fmt.Errorf("%s request timed out: %w", kind, domain.ErrProviderTransient)
	}

	return fmt.Errorf("%s request failed: %w", kind, permanent)
}

func classifyStatus(status int, permanent error) error {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return domain.ErrProviderTransient
	default:
		return permanent
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
