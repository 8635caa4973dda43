// Package normalize maps the provider's many inbound payload shapes onto the
// canonical Message and Contact records. Everything here is a pure function
// over decoded JSON maps so the extraction rules stay unit-testable away from
// any transport.
package normalize

import (
	"regexp"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/spf13/cast"
)

// numberRe extracts the digits preceding the domain suffix of a serialized
// provider id, e.g. "6281234@c.us" -> "6281234".
var numberRe = regexp.MustCompile(`^(\d+)@`)

// ExtractMessageData picks the message body out of a webhook payload. The
// provider nests the raw message under varying keys; the first matching shape
// wins:
//
//	payload._data > payload.message._data > payload.message > payload
func ExtractMessageData(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}
	if data := asMap(payload["_data"]); data != nil {
		return data
	}
	if msg := asMap(payload["message"]); msg != nil {
		if data := asMap(msg["_data"]); data != nil {
			return data
		}
		return msg
	}
	return payload
}

// NormalizeMessage maps an extracted message payload onto a canonical Message
// scoped to deviceKey. Malformed payloads are defaulted, never rejected: a
// message with no resolvable identity is stored with empty-string and zero
// values.
func NormalizeMessage(deviceKey string, payload map[string]interface{}) *domain.Message {
	data := ExtractMessageData(payload)

	msg := &domain.Message{
		DeviceKey: deviceKey,
		MessageId: resolveSerializedId(data["id"]),
		From:      resolveEndpoint(data["from"]),
		To:        resolveEndpoint(data["to"]),
		Text:      firstString(data, "body", "text", "caption"),
		Type:      cast.ToString(data["type"]),
		Timestamp: resolveTimestamp(data),
		IsGroup:   cast.ToBool(data["isGroup"]),
		FromMe:    resolveFromMe(data),
		Read:      cast.ToInt(data["ack"]),
	}
	return msg
}

// resolveSerializedId handles the two id shapes the provider emits: an object
// carrying `_serialized`, or a bare string.
func resolveSerializedId(v interface{}) string {
	if m := asMap(v); m != nil {
		if s := cast.ToString(m["_serialized"]); s != "" {
			return s
		}
		return cast.ToString(m["id"])
	}
	return cast.ToString(v)
}

// resolveEndpoint prefers the `.user` sub-field of an endpoint object and
// otherwise strips the domain suffix from a serialized endpoint string.
func resolveEndpoint(v interface{}) string {
	if m := asMap(v); m != nil {
		if s := cast.ToString(m["user"]); s != "" {
			return s
		}
		return cast.ToString(m["_serialized"])
	}
	s := cast.ToString(v)
	if m := numberRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func resolveTimestamp(data map[string]interface{}) int64 {
	if v, ok := data["t"]; ok {
		return cast.ToInt64(v)
	}
	if v, ok := data["timestamp"]; ok {
		return cast.ToInt64(v)
	}
	return 0
}

func resolveFromMe(data map[string]interface{}) bool {
	if v, ok := data["fromMe"]; ok {
		return cast.ToBool(v)
	}
	if m := asMap(data["id"]); m != nil {
		return cast.ToBool(m["fromMe"])
	}
	return false
}

func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := cast.ToString(data[k]); s != "" {
			return s
		}
	}
	return ""
}

func asMap(v interface{}) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}
