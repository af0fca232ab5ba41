package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subfetch/internal/oshash"
	"subfetch/internal/services"
)

const (
	defaultEndpoint    = "https://api.opensubtitles.org/xml-rpc"
	defaultUserAgent   = "opensubtitles-download 1.0"
	defaultHTTPTimeout = 45 * time.Second

	loginLanguage = "en"
)

// Config describes the catalog client configuration.
type Config struct {
	Endpoint   string
	UserAgent  string
	HTTPClient *http.Client
}

// Client wraps the catalog's XML-RPC API and payload host.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse endpoint: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog: endpoint %q is not an absolute URL", endpoint)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		http:      client,
	}, nil
}

// Login performs the anonymous authentication handshake and returns the
// session token passed to every search call.
func (c *Client) Login(ctx context.Context) (string, error) {
	envelope, err := c.call(ctx, "LogIn", []any{"", "", loginLanguage, c.userAgent})
	if err != nil {
		return "", err
	}
	token, ok := envelope["token"].(string)
	if !ok || token == "" {
		return "", services.Wrap(services.ErrProtocol, "catalog", "login", "response carries no token", nil)
	}
	return token, nil
}

// Search queries the catalog for subtitles matching a fingerprint. The langs
// string is the raw comma-separated request ("eng,fre") and is sent as a
// single query; filtering per language happens client side during ranking.
// Hits that are not structs are skipped, matching the lenient shape of the
// catalog's responses.
func (c *Client) Search(ctx context.Context, token, langs string, fp oshash.Fingerprint) ([]map[string]any, error) {
	query := map[string]any{
		"sublanguageid": langs,
		"moviehash":     fp.HexHash(),
		"moviebytesize": fp.SizeString(),
	}
	envelope, err := c.call(ctx, "SearchSubtitles", []any{token, []any{query}})
	if err != nil {
		return nil, err
	}
	hits, ok := envelope["data"].([]any)
	if !ok {
		return nil, services.Wrap(services.ErrProtocol, "catalog", "search", "response carries no data array", nil)
	}
	records := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		if record, ok := hit.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// FetchPayload retrieves the raw bytes behind a candidate's download link.
// The payload is gzip-compressed; decompression is the pipeline's job.
func (c *Client) FetchPayload(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", "fetch", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", "fetch", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrTransport, "catalog", "fetch",
			fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", "fetch", "read payload", err)
	}
	return data, nil
}

// call posts one XML-RPC method call and returns the response envelope after
// checking the shared status convention: every envelope carries a status
// string and anything not beginning with "200" is a failure.
func (c *Client) call(ctx context.Context, method string, args []any) (map[string]any, error) {
	body, err := marshalCall(method, args)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "build request", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrTransport, "catalog", method,
			fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(errBody))), nil)
	}

	value, err := parseResponse(resp.Body)
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) {
			return nil, services.Wrap(services.ErrTransport, "catalog", method, fault.Error(), nil)
		}
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "decode response", err)
	}

	envelope, ok := value.(map[string]any)
	if !ok {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "invalid response envelope", nil)
	}
	status, ok := envelope["status"].(string)
	if !ok {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "envelope carries no status", nil)
	}
	if !strings.HasPrefix(status, "200") {
		return nil, services.Wrap(services.ErrTransport, "catalog", method, "request failed: "+status, nil)
	}
	return envelope, nil
}
