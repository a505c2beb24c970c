// Package rest implements the service.Service interface against the todolist
// REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todoctl/internal/config"
	"todoctl/internal/service"
)

const (
	loginPath    = "api/v1/users/login"
	registerPath = "api/v1/users/register"
	infoPath     = "api/v1/users/info"
	tasksPath    = "api/v1/tasks"
	taskPath     = "api/v1/tasks/{id}"

	// RequestIDHeader carries a fresh UUID on every request.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Service over HTTP.
type Client struct {
	hc       *http.Client
	basePath string
	log      *zap.Logger
}

// New creates a client for the server configured in cfg.
func New(cfg *config.Config, log *zap.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.Server, http.DefaultClient, log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// basePath must be an absolute URL.
func NewWithHTTPClient(basePath string, hc *http.Client, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(basePath)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", basePath)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{hc: hc, basePath: u.String(), log: log.Named("rest")}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var env service.Envelope[string]
	err := c.do(ctx, http.MethodPost, loginPath, nil, nil, credentials{username, password}, &env)
	if err != nil {
		return "", err
	}
	if env.Data == "" {
		return "", errors.New("login reply carried no token")
	}
	return env.Data, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, registerPath, nil, nil, credentials{username, password}, nil)
}

// Profile implements service.Service.
func (c *Client) Profile(ctx context.Context, token string) (service.Profile, error) {
	var env service.Envelope[service.Profile]
	if err := c.do(ctx, http.MethodGet, infoPath, nil, bearer(token), nil, &env); err != nil {
		return service.Profile{}, err
	}
	return env.Data, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	var env service.Envelope[service.TaskPage]
	if err := c.do(ctx, http.MethodGet, tasksPath, nil, bearer(token), nil, &env); err != nil {
		return nil, err
	}
	if env.Data.Items == nil {
		return []service.Task{}, nil
	}
	return env.Data.Items, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, token string, task service.NewTask) (service.Envelope[service.Task], error) {
	var env service.Envelope[service.Task]
	err := c.do(ctx, http.MethodPost, tasksPath, nil, bearer(token), task, &env)
	return env, err
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, token string, id int64, patch service.TaskPatch) (service.Envelope[service.Task], error) {
	var env service.Envelope[service.Task]
	err := c.do(ctx, http.MethodPut, taskPath, taskParams(id), bearer(token), patch, &env)
	return env, err
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath, taskParams(id), bearer(token), nil, nil)
}

func taskParams(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

// bearer wraps the credential for the Authorization header. An empty
// credential still produces a header.
func bearer(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}

// do sends one request and decodes the reply envelope into out.
// A nil out discards the body.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, auth *oauth2.Token, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	urls := googleapi.ResolveRelative(c.basePath, path)
	req, err := http.NewRequestWithContext(ctx, method, urls, reqBody)
	if err != nil {
		return err
	}
	if params != nil {
		googleapi.Expand(req.URL, params)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		auth.SetAuthHeader(req)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", req.URL.String()),
			zap.String("request_id", requestID),
			zap.Error(err))
		return wrapError(err)
	}
	defer googleapi.CloseBody(res)

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", req.URL.String()),
		zap.Int("status", res.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed reply from %s %s: %w", method, path, err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := serverMessage(apiErr.Body)
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("unauthorized (run: todoctl login): %w", err)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %w", err)
	}
	if msg != "" {
		return fmt.Errorf("server error %d: %s: %w", apiErr.Code, msg, err)
	}
	return err
}

// serverMessage extracts the message from an error envelope body.
func serverMessage(body string) string {
	var env service.Envelope[json.RawMessage]
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return ""
	}
	switch {
	case env.Message != "" && env.Error != "":
		return env.Message + ": " + env.Error
	case env.Message != "":
		return env.Message
	default:
		return env.Error
	}
}

var _ service.Service = (*Client)(nil)
