// Package sandbox implements the execution provider adapter over its REST
// API. Provider responses are decoded here, once, into typed results and
// errors; nothing outside this package inspects provider payloads.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fragbox/backend/internal/config"
	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

// Provider errors, classified at the adapter boundary.
var (
	ErrProviderUnavailable   = errors.New("sandbox provider: unavailable")
	ErrProviderRequestFailed = errors.New("sandbox provider: request failed")
	ErrSandboxNotFound       = errors.New("sandbox provider: sandbox not found")
)

const (
	defaultBaseURL = "https://api.e2b.dev/v1"
	defaultDomain  = "e2b.dev"

	requestTimeout = 60 * time.Second
)

// KeyFunc resolves the provider API key at request time. Used to fall back to
// an operator-stored key when the environment does not carry one.
type KeyFunc func(ctx context.Context) string

type Client struct {
	apiKey  string
	keyFunc KeyFunc
	baseURL string
	domain  string
	http    *http.Client
	logger  *logger.Logger
}

type ClientConfig struct {
	Config  config.SandboxConfig
	KeyFunc KeyFunc
	Logger  *logger.Logger
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.Config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	domain := cfg.Config.Domain
	if domain == "" {
		domain = defaultDomain
	}
	return &Client{
		apiKey:  cfg.Config.APIKey,
		keyFunc: cfg.KeyFunc,
		baseURL: baseURL,
		domain:  domain,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  cfg.Logger,
	}
}

func (c *Client) key(ctx context.Context) string {
	if c.apiKey != "" {
		return c.apiKey
	}
	if c.keyFunc != nil {
		return c.keyFunc(ctx)
	}
	return ""
}

func (c *Client) Configured(ctx context.Context) bool {
	return c.key(ctx) != ""
}

// ==================== WIRE TYPES ====================

type createSandboxRequest struct {
	TemplateID string            `json:"templateID"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	TimeoutMs  int64             `json:"timeoutMs,omitempty"`
}

type sandboxInfoResponse struct {
	SandboxID  string `json:"sandboxID"`
	TemplateID string `json:"templateID"`
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type fileContentResponse struct {
	Content string `json:"content"`
}

type runCommandRequest struct {
	Command    string            `json:"command"`
	Env        map[string]string `json:"env,omitempty"`
	TimeoutMs  int64             `json:"timeoutMs,omitempty"`
	Background bool              `json:"background,omitempty"`
}

type runCodeRequest struct {
	Code string `json:"code"`
}

type providerErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ==================== CLIENT ====================

func (c *Client) Create(ctx context.Context, template string, opts ports.SandboxCreateOptions) (ports.SandboxHandle, error) {
	payload := createSandboxRequest{
		TemplateID: template,
		Metadata:   opts.Metadata,
	}
	if opts.Timeout > 0 {
		payload.TimeoutMs = opts.Timeout.Milliseconds()
	}

	var info sandboxInfoResponse
	if err := c.do(ctx, http.MethodPost, "/sandboxes", opts.Credentials, payload, &info); err != nil {
		return nil, err
	}

	c.logger.Infow("provider_sandbox_created", "sandbox_id", info.SandboxID, "template", template)
	return c.handle(info.SandboxID, info.TemplateID, opts.Credentials), nil
}

func (c *Client) Connect(ctx context.Context, sandboxID string, creds ports.SandboxCredentials) (ports.SandboxHandle, error) {
	var info sandboxInfoResponse
	path := "/sandboxes/" + url.PathEscape(sandboxID)
	if err := c.do(ctx, http.MethodGet, path, creds, nil, &info); err != nil {
		return nil, err
	}
	return c.handle(info.SandboxID, info.TemplateID, creds), nil
}

func (c *Client) handle(id, template string, creds ports.SandboxCredentials) *Handle {
	return &Handle{client: c, id: id, template: template, creds: creds}
}

// do sends one JSON request and decodes the response, mapping provider
// failures to the typed errors above.
func (c *Client) do(ctx context.Context, method, path string, creds ports.SandboxCredentials, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.key(ctx))
	req.Header.Set("Content-Type", "application/json")
	if creds.TeamID != "" && creds.AccessToken != "" {
		req.Header.Set("X-Team-ID", creds.TeamID)
		req.Header.Set("X-Access-Token", creds.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorw("provider_request_failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		var perr providerErrorResponse
		_ = json.Unmarshal(data, &perr)
		if perr.Message == "" {
			perr.Message = resp.Status
		}

		c.logger.Warnw("provider_error_response",
			"method", method, "path", path, "status", resp.StatusCode, "message", perr.Message)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrSandboxNotFound, perr.Message)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: %s", ErrProviderUnavailable, perr.Message)
		default:
			return fmt.Errorf("%w: %s", ErrProviderRequestFailed, perr.Message)
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: invalid response body: %v", ErrProviderRequestFailed, err)
		}
	}
	return nil
}

// ==================== HANDLE ====================

// Handle is a live sandbox owned by exactly one run.
type Handle struct {
	client   *Client
	id       string
	template string
	creds    ports.SandboxCredentials
}

func (h *Handle) ID() string       { return h.id }
func (h *Handle) Template() string { return h.template }

func (h *Handle) path(suffix string) string {
	return "/sandboxes/" + url.PathEscape(h.id) + suffix
}

func (h *Handle) WriteFile(ctx context.Context, path, content string) error {
	return h.client.do(ctx, http.MethodPost, h.path("/files"), h.creds, writeFileRequest{Path: path, Content: content}, nil)
}

func (h *Handle) ReadFile(ctx context.Context, path string) (string, error) {
	var out fileContentResponse
	p := h.path("/files/content") + "?path=" + url.QueryEscape(path)
	if err := h.client.do(ctx, http.MethodGet, p, h.creds, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (h *Handle) ListFiles(ctx context.Context, path string) ([]domain.SandboxFile, error) {
	var out []domain.SandboxFile
	p := h.path("/files/tree") + "?path=" + url.QueryEscape(path)
	if err := h.client.do(ctx, http.MethodGet, p, h.creds, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Handle) RunCommand(ctx context.Context, cmd string, opts ports.CommandOptions) (*domain.CommandResult, error) {
	payload := runCommandRequest{
		Command:    cmd,
		Env:        opts.Env,
		Background: opts.Background,
	}
	if opts.Timeout > 0 {
		payload.TimeoutMs = opts.Timeout.Milliseconds()
	}

	var out domain.CommandResult
	if err := h.client.do(ctx, http.MethodPost, h.path("/commands"), h.creds, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *Handle) RunCode(ctx context.Context, code string) (*domain.CodeExecution, error) {
	var out domain.CodeExecution
	if err := h.client.do(ctx, http.MethodPost, h.path("/code"), h.creds, runCodeRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *Handle) SetTimeout(ctx context.Context, timeout time.Duration) error {
	payload := struct {
		TimeoutMs int64 `json:"timeoutMs"`
	}{TimeoutMs: timeout.Milliseconds()}
	return h.client.do(ctx, http.MethodPost, h.path("/timeout"), h.creds, payload, nil)
}

func (h *Handle) GetHost(port int) string {
	return fmt.Sprintf("%d-%s.%s", port, h.id, h.client.domain)
}

func (h *Handle) Kill(ctx context.Context) error {
	return h.client.do(ctx, http.MethodDelete, h.path(""), h.creds, nil, nil)
}
