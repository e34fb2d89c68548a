package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/google"

	"aihr-backend/internal/sheets"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/telemetry"
	"aihr-backend/internal/shared/upstream"
)

const (
	providerName = "google_sheets"
	sheetsScope  = "https://www.googleapis.com/auth/spreadsheets"
)

// Client appends rows through the Sheets v4 REST API using a service account.
type Client struct {
	credentials   []byte
	spreadsheetID string
	baseURL       string
	timeout       time.Duration

	mu         sync.Mutex
	httpClient *http.Client
	knownTabs  map[string]bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient uses hc as is, skipping service-account auth.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// New constructs a client from service-account JSON. Missing values are
// reported on first use.
func New(credentialsJSON, spreadsheetID string, opts ...Option) *Client {
	c := &Client{
		credentials:   []byte(strings.TrimSpace(credentialsJSON)),
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		baseURL:       "https://sheets.googleapis.com",
		timeout:       60 * time.Second,
		knownTabs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendRow appends row to tab.
func (c *Client) AppendRow(ctx context.Context, tab string, row []string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "append", start, err) }()

	hc, err := c.client(ctx)
	if err != nil {
		return err
	}
	if err := c.ensureTab(ctx, hc, tab); err != nil {
		return err
	}

	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	payload, err := json.Marshal(map[string]any{"values": [][]any{values}})
	if err != nil {
		return err
	}
	rangeRef := url.PathEscape(tab + "!A1")
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.baseURL, url.PathEscape(c.spreadsheetID), rangeRef)
	if _, err := c.do(ctx, hc, http.MethodPost, endpoint, payload, "append"); err != nil {
		return err
	}
	return nil
}

func (c *Client) client(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		if c.spreadsheetID == "" {
			return nil, upstream.NotConfigured(providerName, "GOOGLE_SHEETS_SPREADSHEET_ID")
		}
		return c.httpClient, nil
	}
	var missing []string
	if len(c.credentials) == 0 {
		missing = append(missing, "GOOGLE_SHEETS_CREDENTIALS")
	}
	if c.spreadsheetID == "" {
		missing = append(missing, "GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if len(missing) > 0 {
		return nil, upstream.NotConfigured(providerName, missing...)
	}
	conf, err := google.JWTConfigFromJSON(c.credentials, sheetsScope)
	if err != nil {
		return nil, &upstream.Error{Provider: providerName, Op: "auth", Message: "invalid service account credentials", Err: err}
	}
	// The token source must outlive the request that happened to build it.
	hc := conf.Client(context.Background())
	hc.Timeout = c.timeout
	c.httpClient = hc
	telemetry.Info("sheets.client_ready", map[string]any{"service_account": conf.Email})
	return hc, nil
}

func (c *Client) ensureTab(ctx context.Context, hc *http.Client, tab string) error {
	c.mu.Lock()
	known := c.knownTabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties.title", c.baseURL, url.PathEscape(c.spreadsheetID))
	body, err := c.do(ctx, hc, http.MethodGet, endpoint, nil, "get_spreadsheet")
	if err != nil {
		return err
	}
	exists := false
	gjson.GetBytes(body, "sheets.#.properties.title").ForEach(func(_, title gjson.Result) bool {
		if title.String() == tab {
			exists = true
			return false
		}
		return true
	})

	if !exists {
		payload, err := json.Marshal(map[string]any{
			"requests": []any{
				map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": tab}}},
			},
		})
		if err != nil {
			return err
		}
		endpoint = fmt.Sprintf("%s/v4/spreadsheets/%s:batchUpdate", c.baseURL, url.PathEscape(c.spreadsheetID))
		switch _, err := c.do(ctx, hc, http.MethodPost, endpoint, payload, "add_sheet"); {
		case tabAlreadyExists(err):
			// Another writer created it between the lookup and the add.
		case err != nil:
			return err
		default:
			telemetry.Info("sheets.tab_created", map[string]any{"tab": tab})
		}
	}

	c.mu.Lock()
	c.knownTabs[tab] = true
	c.mu.Unlock()
	return nil
}

func tabAlreadyExists(err error) bool {
	var upErr *upstream.Error
	return errors.As(err, &upErr) && upErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(upErr.Message), "already exists")
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, endpoint string, payload []byte, op string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, upstream.Wrap(providerName, op, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.Wrap(providerName, op, err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = upstream.Truncate(respBody, 300)
		}
		return nil, &upstream.Error{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	return respBody, nil
}

var _ sheets.Exporter = (*Client)(nil)
