// Package provider implements the outbound HTTP relay to the remote
// messaging provider. It has no socket transport of its own; session
// commands are forwarded over HTTP and the provider's status code and body
// are passed back verbatim.
package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/chatfusion/warelay/config"
	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTimeout = 30 * time.Second

// Response is a verbatim provider reply. JSON is nil when the body is not
// valid JSON; the raw body is always preserved.
type Response struct {
	StatusCode int
	Body       []byte
	JSON       interface{}
}

// IsJSON reports whether the provider body decoded as JSON.
func (r *Response) IsJSON() bool {
	return r.JSON != nil
}

// Success reports whether the provider signalled success: a 2xx status and,
// when the body is a JSON object carrying a "success" field, that field being
// truthy.
func (r *Response) Success() bool {
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return false
	}
	if m, ok := r.JSON.(map[string]interface{}); ok {
		if v, has := m["success"]; has {
			return cast.ToBool(v)
		}
	}
	return true
}

// StringField returns a top-level string field of a JSON object body, or "".
func (r *Response) StringField(name string) string {
	if m, ok := r.JSON.(map[string]interface{}); ok {
		return cast.ToString(m[name])
	}
	return ""
}

// Client relays session commands to the configured provider endpoint using
// the provider credential, never an operator key.
type Client struct {
	cfg config.ProviderConfig
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) timeout() time.Duration {
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return defaultTimeout
}

// call performs one relayed HTTP request. A missing endpoint or credential is
// a configuration error; a transport failure or timeout is a connectivity
// error; any reachable provider reply, success or not, comes back as a
// Response.
func (c *Client) call(ctx context.Context, method, apiPath string, body interface{}) (*Response, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/")
	if baseURL == "" || strings.TrimSpace(c.cfg.Token) == "" {
		return nil, ErrNotConfigured
	}
	url := baseURL + apiPath

	var (
		code    int
		payload []byte
	)
	var req *dataflow.DataFlow
	switch method {
	case http.MethodPost:
		req = gout.POST(url)
		if body != nil {
			req = req.SetJSON(body)
		}
	default:
		req = gout.GET(url)
	}

	err := req.
		WithContext(ctx).
		SetTimeout(c.timeout()).
		SetHeader(gout.H{
			"x-api-key": c.cfg.Token,
			"accept":    "application/json",
		}).
		Code(&code).
		BindBody(&payload).
		Do()
	if err != nil {
		zap.L().Warn("provider: relay transport failure",
			zap.String("method", method), zap.String("path", apiPath), zap.Error(err))
		return nil, &ConnectivityError{Err: errors.Wrap(err, "relay "+apiPath)}
	}

	resp := &Response{StatusCode: code, Body: payload}
	if len(payload) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(payload, &decoded); err == nil {
			resp.JSON = decoded
		}
	}
	return resp, nil
}

// Session lifecycle commands. Paths mirror the provider's own surface.

func (c *Client) StartSession(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/start/"+sessionId, nil)
}

func (c *Client) SessionStatus(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/status/"+sessionId, nil)
}

func (c *Client) SessionQR(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/qr/"+sessionId, nil)
}

func (c *Client) RestartSession(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/restart/"+sessionId, nil)
}

func (c *Client) TerminateSession(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/terminate/"+sessionId, nil)
}

func (c *Client) TerminateInactiveSessions(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/terminateInactive", nil)
}

func (c *Client) TerminateAllSessions(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/session/terminateAll", nil)
}

// SendMessageBody is the structured body relayed on send-message.
type SendMessageBody struct {
	ChatId      string `json:"chatId"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

func (c *Client) SendMessage(ctx context.Context, sessionId string, body SendMessageBody) (*Response, error) {
	return c.call(ctx, http.MethodPost, "/client/sendMessage/"+sessionId, body)
}

func (c *Client) GetContacts(ctx context.Context, sessionId string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/client/getContacts/"+sessionId, nil)
}
