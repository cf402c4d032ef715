package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the licence verification API of the store that sells
// the city guides.
const DefaultEndpoint = "https://api.gumroad.com/v2/licenses/verify"

// RemoteVerifier asks a licence API whether code was sold for the city's
// product. One request per call; no retries.
type RemoteVerifier struct {
	client   *http.Client
	endpoint string
	table    Table
}

// RemoteOption configures a RemoteVerifier.
type RemoteOption func(*RemoteVerifier)

// WithHTTPClient replaces the default client (whose timeout is set by
// NewRemoteVerifier).
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteVerifier) { r.client = c }
}

// NewRemoteVerifier posts to endpoint, or to DefaultEndpoint when it is empty.
func NewRemoteVerifier(endpoint string, timeout time.Duration, t Table, opts ...RemoteOption) *RemoteVerifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	r := &RemoteVerifier{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		table:    t,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type verifyResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (r *RemoteVerifier) Verify(ctx context.Context, cityKey, code string) (Result, error) {
	entry, ok := r.table[cityKey]
	if !ok || entry.ProductID == "" || code == "" {
		return Invalid, nil
	}

	form := url.Values{
		"product_id":           {entry.ProductID},
		"license_key":          {code},
		"increment_uses_count": {"false"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Invalid, &VerificationError{Category: ErrorOutage, City: cityKey, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Invalid, &VerificationError{Category: transportCategory(err), City: cityKey, Message: "calling licence API", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return Invalid, &VerificationError{
			Category: ErrorOutage,
			City:     cityKey,
			Message:  fmt.Sprintf("licence API returned %d", resp.StatusCode),
		}
	}

	var body verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return Invalid, &VerificationError{Category: ErrorBadResponse, City: cityKey, Message: "decoding response", Err: err}
	}
	if body.Success == nil {
		return Invalid, &VerificationError{
			Category: ErrorBadResponse,
			City:     cityKey,
			Message:  fmt.Sprintf("response without success flag (status %d)", resp.StatusCode),
		}
	}
	if *body.Success {
		return Valid, nil
	}
	return Invalid, nil
}

func transportCategory(err error) ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorTimeout
	}
	return ErrorOutage
}
