package relay

import (
	"github.com/chatfusion/warelay/internal/normalize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// getContacts relays the provider's contact dump. When the response carries a
// recognizable contact collection and a Device exists for the session, the
// full collection is handed to the ingest pool for bulk upsert; the response
// itself is truncated to the first contactResponseLimit entries. Sync and
// response shaping are independent paths over the same data.
func (g *Gateway) getContacts(c echo.Context) error {
	sessionId := c.Param("sessionId")
	resp, err := g.client.GetContacts(c.Request().Context(), sessionId)
	if err != nil {
		return relayError(c, err)
	}

	collection, found := normalize.ExtractContactCollection(resp.JSON)
	if !found {
		return passThrough(c, resp)
	}

	if dev, err := g.store.GetDeviceBySessionId(c.Request().Context(), sessionId); err == nil {
		g.processor.SubmitContactSync(dev.Key, collection)
	} else {
		zap.L().Debug("relay: contact sync skipped, no device for session",
			zap.String("session_id", sessionId))
	}

	// truncation reshapes the body but the provider's status still passes
	// through
	return c.JSON(resp.StatusCode, truncateContactEnvelope(resp.JSON, contactResponseLimit))
}

// truncateContactEnvelope limits the contact array to n entries while keeping
// it in the same position of the provider's envelope.
func truncateContactEnvelope(body interface{}, n int) interface{} {
	switch v := body.(type) {
	case []interface{}:
		return truncateSlice(v, n)
	case map[string]interface{}:
		for _, key := range []string{"contacts", "data"} {
			if arr, isSlice := v[key].([]interface{}); isSlice {
				out := make(map[string]interface{}, len(v))
				for k, val := range v {
					out[k] = val
				}
				out[key] = truncateSlice(arr, n)
				return out
			}
		}
	}
	return body
}

func truncateSlice(items []interface{}, n int) []interface{} {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
