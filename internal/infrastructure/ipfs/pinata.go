package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

const (
	DefaultAPIURL     = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud"
)

// PinataConfig holds the pinning service endpoints and credentials.
// JWT takes precedence over the key pair.
type PinataConfig struct {
	APIURL       string
	GatewayURL   string
	APIKey       string
	APISecret    string
	JWT          string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// PinataClient implements Store over the Pinata HTTP API.
type PinataClient struct {
	cfg  PinataConfig
	http *retryablehttp.Client
	log  *slog.Logger
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewPinataClient(cfg PinataConfig, log *slog.Logger) *PinataClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultGatewayURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")

	log = log.With("component", "pinata")

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	client.Logger = log

	return &PinataClient{cfg: cfg, http: client, log: log}
}

// Put pins data as a file via pinFileToIPFS.
func (c *PinataClient) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		name = "file"
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	meta, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/pinning/pinFileToIPFS", body.Bytes())
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin %s: %v: %w", name, err, errs.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("pin %s: %s: %w", name, readStatus(resp), errs.ErrStorageUnavailable)
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("pin %s: decode response: %v: %w", name, err, errs.ErrStorageUnavailable)
	}
	if err := ValidateCID(out.IpfsHash); err != nil {
		return "", fmt.Errorf("pin %s: bad cid %q: %w", name, out.IpfsHash, errs.ErrStorageUnavailable)
	}

	c.log.Debug("pinned", "name", name, "cid", out.IpfsHash, "size", out.PinSize)

	return out.IpfsHash, nil
}

// Get reads id through the gateway.
func (c *PinataClient) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateCID(id); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.cfg.GatewayURL+"/ipfs/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", id, err, errs.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", id, errs.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %s: %s: %w", id, readStatus(resp), errs.ErrStorageUnavailable)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", id, err, errs.ErrStorageUnavailable)
	}

	return data, nil
}

// Delete unpins id. A 404 from the service means it is already gone.
func (c *PinataClient) Delete(ctx context.Context, id string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.APIURL+"/pinning/unpin/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("unpin %s: %w", id, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unpin %s: %v: %w", id, err, errs.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug("unpin: already gone", "cid", id)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unpin %s: %s: %w", id, readStatus(resp), errs.ErrStorageUnavailable)
	}

	return nil
}

func (c *PinataClient) authorize(req *retryablehttp.Request) {
	if c.cfg.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.JWT)
		return
	}
	req.Header.Set("pinata_api_key", c.cfg.APIKey)
	req.Header.Set("pinata_secret_api_key", c.cfg.APISecret)
}

func readStatus(resp *http.Response) string {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	s := strings.TrimSpace(string(msg))
	if s == "" {
		return resp.Status
	}
	return resp.Status + ": " + s
}

// IsUnavailable reports whether err came from an unreachable or failing store.
func IsUnavailable(err error) bool {
	return errors.Is(err, errs.ErrStorageUnavailable)
}
