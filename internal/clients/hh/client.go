package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	"github.com/maxaizer/hh-vacancy-parser/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.hh.ru"
	DefaultUserAgent = "JobParser/1.0 (admin@example.com)"
	DefaultTimeout   = 30 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPError is returned for any non-2xx answer of the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.StatusCode, e.Body)
}

// Client owns a single http session to hh.ru. Close releases its idle connections.
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	if maxRequestsPerSecond <= 0 {
		c.rateLimiter = nil
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = baseURL
	}
}

func (c *Client) SetUserAgent(userAgent string) {
	if userAgent != "" {
		c.userAgent = userAgent
	}
}

func (c *Client) SetTimeout(timeout time.Duration) {
	if httpClient, ok := c.httpClient.(*http.Client); ok && timeout > 0 {
		httpClient.Timeout = timeout
	}
}

func (c *Client) Close() {
	if httpClient, ok := c.httpClient.(*http.Client); ok {
		httpClient.CloseIdleConnections()
	}
}

func (c *Client) SearchVacancies(ctx context.Context, parameters SearchParameters) (*SearchPage, error) {

	if err := parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	apiURL := c.baseURL + "/vacancies?" + parameters.ToUrlParams().Encode()

	body, err := c.sendRequest(ctx, "search", apiURL)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).
			Errorf("failed to search vacancies, text: %q, page: %d: %v", parameters.Text, parameters.Page, err)
		return nil, err
	}

	var page SearchPage
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&page); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("error decoding search response: %v", err)
		return nil, fmt.Errorf("error decoding JSON response: %w", err)
	}

	return &page, nil
}

func (c *Client) GetVacancy(ctx context.Context, id string) (*RawVacancy, error) {

	apiURL := c.baseURL + "/vacancies/" + url.PathEscape(id)

	body, err := c.sendRequest(ctx, "detail", apiURL)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).
			Errorf("failed to get vacancy %v details: %v", id, err)
		return nil, err
	}

	var vacancy RawVacancy
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&vacancy); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("error decoding vacancy %v: %v", id, err)
		return nil, fmt.Errorf("error decoding JSON response: %w", err)
	}

	return &vacancy, nil
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, apiURL string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.HhRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
