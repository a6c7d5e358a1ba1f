package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Client is a minimal generation interface to allow pluggable providers.
// The API key is supplied per request by the caller and forwarded, never
// stored.
type Client interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

var (
	// ErrTimeout signals the outbound call exceeded its deadline.
	ErrTimeout = errors.New("request timeout")
	// ErrNetwork signals a transport-level failure before any response.
	ErrNetwork = errors.New("network error")
	// ErrNoCandidates signals a 200 response with no usable answer in it.
	ErrNoCandidates = errors.New("empty candidates")
)

// UpstreamError carries a non-200 status and raw body from the generation
// API so handlers can relay both verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation API error: %d", e.Status)
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
