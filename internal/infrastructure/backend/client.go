// Package backend is the HTTP transport adapter for the remote task API.
// It attaches bearer auth and classifies failures; no retries, no caching.
// All resilience lives in the cache synchronizer.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
)

// Client issues authenticated JSON requests against the backend.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a backend client for the given base URL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "taskflow-client",
			MaxIdleConnDuration: time.Minute,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// DoJSON performs one request. A non-nil in is marshalled as the JSON body;
// a non-nil out receives the decoded response body. The token may be empty
// for unauthenticated endpoints (sign-in/up).
func (c *Client) DoJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request body", err)
		}
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeNetwork, fmt.Sprintf("%s %s", method, path), err)
	}

	status := resp.StatusCode()
	if status >= 400 {
		return classifyStatus(status, resp.Body())
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "decode response body", err)
		}
	}
	return nil
}

// Healthy reports whether the backend answers at all. Used by the connection
// monitor; any response, even an error status, counts as reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/health")
	req.Header.SetMethod(http.MethodGet)

	deadline := time.Now().Add(3 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.http.DoDeadline(req, resp, deadline) == nil
}

// errorBody is the backend's error payload shape.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func classifyStatus(status int, body []byte) error {
	msg := serverMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		if msg == "" {
			return domain.ErrUnauthorized
		}
		return domain.NewError(domain.ErrCodeUnauthorized, msg)
	case status == http.StatusForbidden:
		if msg == "" {
			return domain.ErrNotAuthorized
		}
		return domain.NewError(domain.ErrCodeForbidden, msg)
	case status == http.StatusNotFound:
		if msg == "" {
			return domain.ErrTaskNotFound
		}
		return domain.NewError(domain.ErrCodeNotFound, msg)
	case status >= 400 && status < 500:
		if msg == "" {
			msg = fmt.Sprintf("request rejected with status %d", status)
		}
		return domain.NewError(domain.ErrCodeInvalid, msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("backend error %d", status)
		}
		return domain.NewError(domain.ErrCodeInternal, msg)
	}
}

func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
