// Package relay is the operator-facing session command surface. Each call is
// authenticated against a stored API key, forwarded to the remote provider
// with the provider credential, and relayed back verbatim; a few outcomes
// trigger local side effects that never alter the relayed response.
package relay

import (
	"errors"
	"net/http"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/chatfusion/warelay/internal/ingest"
	"github.com/chatfusion/warelay/internal/provider"
	"github.com/chatfusion/warelay/internal/store"
	"github.com/chatfusion/warelay/internal/webserver"
	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// contactResponseLimit truncates the contact array relayed back to the
// caller; the full collection still goes through the sync side effect.
const contactResponseLimit = 10

type Gateway struct {
	client    *provider.Client
	store     store.RecordStore
	keys      KeyValidator
	processor *ingest.Processor
}

func NewGateway(client *provider.Client, st store.RecordStore, keys KeyValidator, processor *ingest.Processor) *Gateway {
	return &Gateway{client: client, store: st, keys: keys, processor: processor}
}

func (g *Gateway) RegisterRoutes() {
	auth := g.apiKeyMiddleware
	webserver.ApiGET("/session/start/:sessionId", g.startSession, auth)
	webserver.ApiGET("/session/status/:sessionId", g.sessionStatus, auth)
	webserver.ApiGET("/session/qr/:sessionId", g.sessionQR, auth)
	webserver.ApiGET("/session/qr/:sessionId/image", g.sessionQRImage, auth)
	webserver.ApiGET("/session/restart/:sessionId", g.restartSession, auth)
	webserver.ApiGET("/session/terminate/:sessionId", g.terminateSession, auth)
	webserver.ApiGET("/session/terminateInactive", g.terminateInactive, auth)
	webserver.ApiGET("/session/terminateAll", g.terminateAll, auth)
	webserver.ApiGET("/session/list", g.listSessions, auth)
	webserver.ApiPOST("/client/sendMessage/:sessionId", g.sendMessage, auth)
	webserver.ApiGET("/client/getContacts/:sessionId", g.getContacts, auth)
	webserver.ApiGET("/client/getMessages/:sessionId", g.getMessages, auth)
	webserver.ApiGET("/client/contacts/:sessionId", g.listStoredContacts, auth)
	webserver.ApiGET("/status", g.serverStatus, auth)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{"success": false, "message": message})
}

// relayError maps the outbound error taxonomy onto responses: configuration
// and connectivity failures are distinct 500s; provider-reported failures are
// never translated here, they pass through with their own status and body.
func relayError(c echo.Context, err error) error {
	var connErr *provider.ConnectivityError
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		return fail(c, http.StatusInternalServerError, "messaging provider is not configured")
	case errors.As(err, &connErr):
		return fail(c, http.StatusInternalServerError, "messaging provider unreachable")
	default:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
}

// passThrough relays the provider's status code and body unchanged; a
// non-JSON body is preserved under a raw-text fallback instead of discarded.
func passThrough(c echo.Context, resp *provider.Response) error {
	if resp.IsJSON() {
		return c.JSONBlob(resp.StatusCode, resp.Body)
	}
	return c.JSON(resp.StatusCode, map[string]interface{}{"raw": string(resp.Body)})
}

// startSession relays session start. On provider success it creates the
// local Device with status connecting, owned by the calling operator; a
// creation failure is logged and swallowed so the relayed response stands.
func (g *Gateway) startSession(c echo.Context) error {
	sessionId := c.Param("sessionId")
	resp, err := g.client.StartSession(c.Request().Context(), sessionId)
	if err != nil {
		return relayError(c, err)
	}

	if resp.Success() {
		op := currentOperator(c)
		dev, created, err := g.store.CreateDeviceIfAbsent(
			c.Request().Context(), sessionId, op.Id, domain.DeviceStatusConnecting)
		if err != nil {
			zap.L().Warn("relay: device creation side effect failed",
				zap.String("session_id", sessionId), zap.Error(err))
		} else if created {
			zap.L().Info("relay: device created",
				zap.String("session_id", sessionId), zap.String("key", dev.Key),
				zap.Int64("user_id", op.Id))
		}
	}
	return passThrough(c, resp)
}

func (g *Gateway) sessionStatus(c echo.Context) error {
	resp, err := g.client.SessionStatus(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

func (g *Gateway) sessionQR(c echo.Context) error {
	resp, err := g.client.SessionQR(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

// sessionQRImage renders the provider's QR payload as a scannable PNG. When
// the response carries no QR field, the JSON passes through untouched.
func (g *Gateway) sessionQRImage(c echo.Context) error {
	resp, err := g.client.SessionQR(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return relayError(c, err)
	}
	if code := resp.StringField("qr"); code != "" {
		png, err := qrcode.Encode(code, qrcode.Medium, 256)
		if err != nil {
			zap.L().Warn("relay: qr image encode failed", zap.Error(err))
			return passThrough(c, resp)
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}
	return passThrough(c, resp)
}

func (g *Gateway) restartSession(c echo.Context) error {
	resp, err := g.client.RestartSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

func (g *Gateway) terminateSession(c echo.Context) error {
	resp, err := g.client.TerminateSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

func (g *Gateway) terminateInactive(c echo.Context) error {
	resp, err := g.client.TerminateInactiveSessions(c.Request().Context())
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

func (g *Gateway) terminateAll(c echo.Context) error {
	resp, err := g.client.TerminateAllSessions(c.Request().Context())
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}

func (g *Gateway) sendMessage(c echo.Context) error {
	var body provider.SendMessageBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "unable to parse request body")
	}
	if body.ChatId == "" || body.ContentType == "" {
		return fail(c, http.StatusBadRequest, "chatId and contentType are required")
	}
	resp, err := g.client.SendMessage(c.Request().Context(), c.Param("sessionId"), body)
	if err != nil {
		return relayError(c, err)
	}
	return passThrough(c, resp)
}
