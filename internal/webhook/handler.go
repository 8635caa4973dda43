// Package webhook accepts the provider's asynchronous callbacks. A delivery
// is authenticated with the static shared secret, acknowledged immediately,
// and dispatched to the ingest pipeline; the provider never sees a failure
// for payload shapes it is free to vary.
package webhook

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/chatfusion/warelay/internal/ingest"
	"github.com/chatfusion/warelay/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SecretHeader carries the provider's shared secret, distinct from the
// operator API key header on the relay surface.
const SecretHeader = "x-webhook-secret"

type Handler struct {
	secret    string
	processor *ingest.Processor
}

func NewHandler(secret string, processor *ingest.Processor) *Handler {
	return &Handler{secret: secret, processor: processor}
}

func (h *Handler) RegisterRoutes() {
	webserver.ApiPOST("/webhook", h.HandleWebhook)
}

// HandleWebhook is the provider callback endpoint. Only authentication can
// fail the request; every downstream outcome acknowledges 200.
func (h *Handler) HandleWebhook(c echo.Context) error {
	if !h.authenticate(c) {
		zap.L().Warn("webhook: rejected delivery with bad secret",
			zap.String("remote_addr", c.Request().RemoteAddr))
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "invalid webhook secret",
		})
	}

	body, _ := io.ReadAll(c.Request().Body)
	payload := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			// the provider varies its shapes; an undecodable body is
			// acknowledged and logged, never failed
			zap.L().Warn("webhook: undecodable body", zap.Int("size", len(body)), zap.Error(err))
			payload = map[string]interface{}{}
		}
	}

	evt := resolveEvent(payload)
	zap.L().Info("webhook: event received",
		zap.String("received_type", evt.DataType),
		zap.String("session_id", evt.SessionId))

	if evt.SessionId != "" && evt.DataType != "" {
		h.processor.Dispatch(evt)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "webhook received",
		"receivedType": evt.DataType,
		"sessionId":    evt.SessionId,
	})
}

func (h *Handler) authenticate(c echo.Context) bool {
	if h.secret == "" {
		// fail closed: an unset secret never authorizes anything
		return false
	}
	got := c.Request().Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}

// resolveEvent normalizes the freeform callback body into an ingest event.
// The data payload may be nested under outgoingData, data, or sit bare at the
// top level; a bare message-shaped body with no declared dataType is treated
// as a message event.
func resolveEvent(payload map[string]interface{}) ingest.Event {
	evt := ingest.Event{
		SessionId: cast.ToString(payload["sessionId"]),
		DataType:  cast.ToString(payload["dataType"]),
	}
	if evt.SessionId == "" {
		evt.SessionId = cast.ToString(payload["session"])
	}

	switch {
	case hasMessage(payload["outgoingData"]):
		evt.Data = payload["outgoingData"].(map[string]interface{})
	case isMap(payload["data"]):
		evt.Data = payload["data"].(map[string]interface{})
	default:
		evt.Data = payload
	}

	if evt.DataType == "" && looksLikeMessage(evt.Data) {
		evt.DataType = "message"
	}
	return evt
}

func isMap(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func hasMessage(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := m["message"]
	return has
}

func looksLikeMessage(data map[string]interface{}) bool {
	if data == nil {
		return false
	}
	if _, has := data["message"]; has {
		return true
	}
	if _, has := data["_data"]; has {
		return true
	}
	if _, has := data["body"]; has {
		return true
	}
	_, has := data["id"]
	return has
}
