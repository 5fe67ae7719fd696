package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/reelkeep/reelkeep/internal/domain"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.omdbapi.com"

// Client talks to the OMDb catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates an OMDb client. baseURL may be empty to use the public
// endpoint; timeout bounds every request.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/4), 1),
		maxRetries: 2,
	}
}

// searchEnvelope matches the ?s= response
type searchEnvelope struct {
	Response string                  `json:"Response"` // "True" / "False"
	Error    string                  `json:"Error"`
	Search   []domain.CatalogSummary `json:"Search"`
}

// detailEnvelope matches the ?i= response
type detailEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	domain.CatalogSummary
}

// Search maps a free-text query to candidate summaries. A valid "Movie not
// found!" response returns found=false with no error; transport failures and
// malformed payloads wrap domain.ErrSearchFailed.
func (c *Client) Search(ctx context.Context, query string) ([]domain.CatalogSummary, bool, error) {
	u := fmt.Sprintf("%s/?s=%s&apikey=%s", c.baseURL, url.QueryEscape(query), c.apiKey)

	var env searchEnvelope
	if err := c.get(ctx, u, &env); err != nil {
		return nil, false, err
	}
	if env.Response != "True" {
		return nil, false, nil
	}
	return env.Search, true, nil
}

// Lookup fetches full details for one catalog id.
func (c *Client) Lookup(ctx context.Context, imdbID string) (domain.CatalogSummary, error) {
	u := fmt.Sprintf("%s/?i=%s&apikey=%s", c.baseURL, url.QueryEscape(imdbID), c.apiKey)

	var env detailEnvelope
	if err := c.get(ctx, u, &env); err != nil {
		return domain.CatalogSummary{}, err
	}
	if env.Response != "True" {
		return domain.CatalogSummary{}, domain.ErrRecordNotFound
	}
	return env.CatalogSummary, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSearchFailed, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("%w: unexpected status code: %d", domain.ErrSearchFailed, resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: malformed response: %v", domain.ErrSearchFailed, err)
		}
		return nil
	}
	return fmt.Errorf("%w: after %d retries: %v", domain.ErrSearchFailed, c.maxRetries, lastErr)
}
