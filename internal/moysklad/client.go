package moysklad

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public MoySklad JSON API 1.2 endpoint.
	DefaultBaseURL = "https://api.moysklad.ru/api/remap/1.2"

	// defaultPageLimit is the page size for plain collection queries.
	defaultPageLimit = 1000
	// expandPageLimit is the page cap MoySklad enforces on expand queries.
	expandPageLimit = 100

	// pageDelay paces consecutive page fetches to respect the rate limit.
	pageDelay = 50 * time.Millisecond

	requestTimeout = 30 * time.Second

	// momentLayout is the timestamp format the server-side filter expects.
	momentLayout = "2006-01-02 15:04:05"
)

// ClientConfig carries the connection settings for one client instance.
// Token takes precedence over username/password when both are set.
type ClientConfig struct {
	BaseURL  string
	Token    string
	Username string
	Password string

	// PageDelay overrides the inter-page pacing delay; zero means default.
	PageDelay time.Duration
}

// Client is an authenticated MoySklad API client. It is constructed per sync
// run and carries no mutable state beyond the underlying HTTP transport.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	pageDelay  time.Duration
	log        *zap.Logger
}

// ConnectionTest is the result of a reachability probe, safe to serialize
// straight into an operator-facing health response.
type ConnectionTest struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewClient validates credentials and builds a client. Fails with
// ErrNoCredentials when neither token nor username/password is present.
func NewClient(cfg ClientConfig, log *zap.Logger) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var authHeader string
	switch {
	case cfg.Token != "":
		authHeader = "Bearer " + cfg.Token
		log.Info("Using MoySklad token authentication")
	case cfg.Username != "" && cfg.Password != "":
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		authHeader = "Basic " + credentials
		log.Info("Using MoySklad basic authentication")
	default:
		return nil, ErrNoCredentials
	}

	delay := cfg.PageDelay
	if delay == 0 {
		delay = pageDelay
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: authHeader,
		httpClient: &http.Client{Timeout: requestTimeout},
		pageDelay:  delay,
		log:        log,
	}, nil
}

// get performs one GET request and decodes the JSON body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	reqURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractErrorDetail(body)
		c.log.Error("MoySklad API request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, &AuthError{Body: detail}
		case http.StatusForbidden:
			return nil, &PermissionError{Body: detail}
		default:
			return nil, &APIError{Status: resp.StatusCode, Body: detail}
		}
	}

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Body: fmt.Sprintf("invalid JSON response: %v", err)}
	}
	return result, nil
}

// extractErrorDetail pulls the error strings out of a MoySklad error body,
// falling back to the raw body text.
func extractErrorDetail(body []byte) string {
	var parsed struct {
		Errors []struct {
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return string(body)
}

// FetchPage requests one page of a collection endpoint and reports whether a
// subsequent page may exist (a full page implies more rows could follow).
func (c *Client) FetchPage(ctx context.Context, endpoint string, params url.Values, offset, limit int) ([]map[string]any, bool, error) {
	pageParams := url.Values{}
	for k, v := range params {
		pageParams[k] = v
	}
	pageParams.Set("limit", strconv.Itoa(limit))
	pageParams.Set("offset", strconv.Itoa(offset))

	response, err := c.get(ctx, endpoint, pageParams)
	if err != nil {
		return nil, false, err
	}

	rows := extractRows(response)
	return rows, len(rows) == limit, nil
}

// FetchAll walks a paginated collection endpoint to the end. The offset
// advances by rows actually returned; a short or empty page terminates the
// walk. Pages are paced to respect the remote rate limit, and expand queries
// use the lower page cap the server enforces for them.
func (c *Client) FetchAll(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	limit := defaultPageLimit
	if params.Get("expand") != "" {
		limit = expandPageLimit
	}

	var all []map[string]any
	offset := 0

	for {
		rows, hasMore, err := c.FetchPage(ctx, endpoint, params, offset, limit)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		all = append(all, rows...)
		offset += len(rows)

		c.log.Debug("Loaded page from MoySklad",
			zap.String("endpoint", endpoint),
			zap.Int("loaded", len(all)))

		if !hasMore {
			break
		}

		// Small delay between pages to respect rate limits.
		select {
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		case <-time.After(c.pageDelay):
		}
	}

	c.log.Info("Fetched collection from MoySklad",
		zap.String("endpoint", endpoint),
		zap.Int("total", len(all)))
	return all, nil
}

func extractRows(response map[string]any) []map[string]any {
	rawRows, ok := response["rows"].([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(rawRows))
	for _, r := range rawRows {
		if m, ok := r.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// withUpdatedSince appends the server-side incremental filter.
func withUpdatedSince(params url.Values, updatedSince *time.Time) url.Values {
	if updatedSince != nil {
		params.Set("filter", "updated>="+updatedSince.Format(momentLayout))
	}
	return params
}

// TestConnection issues one lightweight request and reports reachability and
// credential validity without returning an error.
func (c *Client) TestConnection(ctx context.Context) *ConnectionTest {
	c.log.Info("Testing MoySklad API connection...")

	params := url.Values{}
	params.Set("limit", "100")
	params.Set("offset", "0")
	response, err := c.get(ctx, "entity/organization", params)
	if err != nil {
		c.log.Error("MoySklad connection test failed", zap.Error(err))
		return &ConnectionTest{
			Success: false,
			Message: fmt.Sprintf("Connection failed: %v", err),
		}
	}

	rows := extractRows(response)
	c.log.Info("MoySklad connection successful", zap.Int("organizations", len(rows)))
	return &ConnectionTest{
		Success: true,
		Message: fmt.Sprintf("Connection successful. Access to %d organizations.", len(rows)),
		Details: map[string]any{"organizations_count": len(rows)},
	}
}

// Organization entities

func (c *Client) Organizations(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/organization", url.Values{})
}

func (c *Client) Employees(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/employee", url.Values{})
}

func (c *Client) Projects(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/project", url.Values{})
}

func (c *Client) Contracts(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "agent,ownAgent,project")
	return c.FetchAll(ctx, "entity/contract", withUpdatedSince(params, updatedSince))
}

// Reference entities

func (c *Client) Currencies(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/currency", url.Values{})
}

func (c *Client) Countries(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/country", url.Values{})
}

func (c *Client) ProductFolders(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/productfolder", url.Values{})
}

func (c *Client) UnitsOfMeasure(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/uom", url.Values{})
}

// Product entities

func (c *Client) Products(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "productFolder,uom,supplier,salePrices,buyPrice")
	return c.FetchAll(ctx, "entity/product", withUpdatedSince(params, updatedSince))
}

func (c *Client) Services(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "productFolder,uom,salePrices,buyPrice")
	return c.FetchAll(ctx, "entity/service", withUpdatedSince(params, updatedSince))
}

func (c *Client) Counterparties(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "contactpersons")
	return c.FetchAll(ctx, "entity/counterparty", withUpdatedSince(params, updatedSince))
}

func (c *Client) Stores(ctx context.Context) ([]map[string]any, error) {
	return c.FetchAll(ctx, "entity/store", url.Values{})
}

// Stock fetches current stock levels from the stock report endpoint,
// optionally restricted to one store.
func (c *Client) Stock(ctx context.Context, storeID string) ([]map[string]any, error) {
	params := url.Values{}
	if storeID != "" {
		params.Set("store.id", storeID)
	}
	return c.FetchAll(ctx, "report/stock/all", params)
}

// Document entities

func (c *Client) CustomerOrders(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/customerorder", updatedSince)
}

func (c *Client) Demands(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/demand", updatedSince)
}

func (c *Client) InvoicesOut(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/invoiceout", updatedSince)
}

func (c *Client) PurchaseOrders(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/purchaseorder", updatedSince)
}

func (c *Client) Supplies(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/supply", updatedSince)
}

func (c *Client) InvoicesIn(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	return c.salesDocuments(ctx, "entity/invoicein", updatedSince)
}

func (c *Client) salesDocuments(ctx context.Context, endpoint string, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "agent,organization,store,state,project,contract")
	return c.FetchAll(ctx, endpoint, withUpdatedSince(params, updatedSince))
}

// Stock movement documents

func (c *Client) Enters(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "store")
	return c.FetchAll(ctx, "entity/enter", withUpdatedSince(params, updatedSince))
}

func (c *Client) Losses(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "store")
	return c.FetchAll(ctx, "entity/loss", withUpdatedSince(params, updatedSince))
}

func (c *Client) Moves(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "sourceStore,targetStore")
	return c.FetchAll(ctx, "entity/move", withUpdatedSince(params, updatedSince))
}

func (c *Client) Inventories(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("expand", "store")
	return c.FetchAll(ctx, "entity/inventory", withUpdatedSince(params, updatedSince))
}
