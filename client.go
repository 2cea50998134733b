// Package agvd is a client for the African Genome Variation Database: token
// auth plus the batched GraphQL variant-frequency search that the agvd
// command line tool is built on.
package agvd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carbocation/pfx"

	"github.com/h3abionet/agvd/variantid"
)

// DefaultBaseURL is the public AGVD GraphQL endpoint. Auth endpoints hang
// off the same base under auth/.
const DefaultBaseURL = "https://agvd-rps.h3abionet.org/devo/"

const variantSearchMutation = `mutation($input: VCFQueryInput) {
  cliVariantSearch(input: $input) {
    variantID
    mafThreshold
    agvdThresholdStatus
    usedThreshold
    clusters {
      name
      maf
    }
  }
}`

// Client issues authenticated requests against one AGVD deployment. The
// zero value is not usable; construct with NewClient. Fields may be adjusted
// before first use but not concurrently with requests, except that
// concurrent VariantSearch calls are fine once configured.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	// MaxRetries is the number of additional attempts after a failed
	// request. Only transport errors, 5xx, and 429 are retried.
	MaxRetries int

	// RetryBackoff is the sleep before the first retry; it doubles on each
	// subsequent retry.
	RetryBackoff time.Duration
}

// NewClient returns a client for the given deployment. An empty baseURL
// selects DefaultBaseURL. The token may be empty when the caller intends to
// Login afterwards.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		BaseURL:      baseURL,
		Token:        token,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// VariantSearch queries one batch of identifiers. The batch must be
// homogeneous by Kind (variantid.SplitBatches guarantees this); the API
// takes rsIDs and positional IDs under different input keys. Unknown
// identifiers are simply absent from the returned slice.
func (c *Client) VariantSearch(ctx context.Context, batch []variantid.VariantID, opts SearchOptions) ([]VariantResult, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	wireIDs := make([]string, 0, len(batch))
	for _, id := range batch {
		wireIDs = append(wireIDs, id.WireID())
	}

	input := map[string]interface{}{
		"threshold": opts.Threshold,
	}
	if batch[0].Kind == variantid.KindRSID {
		input["rsID"] = wireIDs
	} else {
		input["variantID"] = wireIDs
	}
	if len(opts.Clusters) > 0 {
		input["clusters"] = opts.Clusters
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     variantSearchMutation,
		Variables: map[string]interface{}{"input": input},
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.RetryBackoff << (attempt - 1)):
			case <-ctx.Done():
				return nil, pfx.Err(ctx.Err())
			}
		}

		results, retryable, err := c.search(ctx, payload)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) search(ctx context.Context, payload []byte) (results []VariantResult, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, false, pfx.Err(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, true, pfx.Err(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, &AuthError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Body)}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, &StatusError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Body)}
	case resp.StatusCode != http.StatusOK:
		return nil, false, &StatusError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Body)}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, pfx.Err(err)
	}
	if len(out.Errors) > 0 {
		return nil, false, &StatusError{StatusCode: resp.StatusCode, Message: out.Errors[0].Message}
	}

	return out.Data.CliVariantSearch, false, nil
}

// MatchResult resolves one queried identifier to its entry in a batch
// response, matching on the wire form. A false return means AGVD had no
// record for it.
func MatchResult(id variantid.VariantID, results []VariantResult) (VariantResult, bool) {
	wire := id.WireID()
	for _, r := range results {
		if strings.EqualFold(r.VariantID, wire) {
			return r, true
		}
	}
	return VariantResult{}, false
}

// apiMessage pulls a human-readable message out of an error response body,
// preferring the API's {"message": ...} shape.
func apiMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var out struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &out) == nil && out.Message != "" {
		return out.Message
	}

	return strings.TrimSpace(string(body))
}
