package normalize

import (
	"strings"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/chatfusion/warelay/pkg/common"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// UserSuffix is the provider domain suffix carried by individual-user
// contact identifiers. Group ("@g.us") and broadcast identifiers are never
// persisted.
const UserSuffix = "@c.us"

// businessProfile is the nested business sub-object of a contact payload,
// decoded leniently: the provider sends strings, arrays, or objects depending
// on account type.
type businessProfile struct {
	Description string      `mapstructure:"description"`
	Email       string      `mapstructure:"email"`
	Website     interface{} `mapstructure:"website"`
	Address     string      `mapstructure:"address"`
	Latitude    float64     `mapstructure:"latitude"`
	Longitude   float64     `mapstructure:"longitude"`
	Categories  interface{} `mapstructure:"categories"`
}

// ResolveContactId resolves the canonical identity of a contact payload:
//
//	id._serialized > id > contactId > number (suffixed) > generated uuid
//
// A bare number is serialized with the individual-user suffix so idempotent
// upserts key on the same identity the provider would use. The uuid fallback
// never carries the suffix, so such contacts fail the persistence filter and
// are skipped downstream.
func ResolveContactId(raw map[string]interface{}) string {
	if id := resolveSerializedId(raw["id"]); id != "" {
		return id
	}
	if id := cast.ToString(raw["contactId"]); id != "" {
		return id
	}
	if number := cast.ToString(raw["number"]); number != "" {
		return number + UserSuffix
	}
	return common.UUID()
}

// IsIndividualContactId reports whether the resolved identity belongs to an
// individual user account.
func IsIndividualContactId(contactId string) bool {
	return strings.Contains(contactId, UserSuffix)
}

// ContactNumber extracts the phone number of a contact: direct fields first,
// then the digits preceding the domain suffix of the serialized id.
func ContactNumber(raw map[string]interface{}, contactId string) string {
	if number := cast.ToString(raw["number"]); number != "" {
		return number
	}
	if number := cast.ToString(raw["phone"]); number != "" {
		return number
	}
	if m := numberRe.FindStringSubmatch(contactId); len(m) > 1 {
		return m[1]
	}
	return ""
}

// NormalizeContact maps a raw contact payload onto a canonical Contact scoped
// to deviceKey. ok is false when the contact must not be persisted (non
// individual-user identity); the caller logs the skip reason.
func NormalizeContact(deviceKey string, raw map[string]interface{}) (contact *domain.Contact, ok bool) {
	if raw == nil {
		return nil, false
	}
	contactId := ResolveContactId(raw)
	if !IsIndividualContactId(contactId) {
		return nil, false
	}

	contact = &domain.Contact{
		ContactId:   contactId,
		DeviceKey:   deviceKey,
		Name:        firstString(raw, "name", "pushname", "verifiedName"),
		ContactName: firstString(raw, "contactName", "shortName"),
		Number:      ContactNumber(raw, contactId),
		IsBusiness:  cast.ToBool(raw["isBusiness"]),
		IsGroup:     cast.ToBool(raw["isGroup"]),
		IsUser:      resolveIsUser(raw),
	}

	if bpRaw := asMap(raw["businessProfile"]); bpRaw != nil {
		var bp businessProfile
		if err := mapstructure.WeakDecode(bpRaw, &bp); err == nil {
			contact.Description = bp.Description
			contact.Email = bp.Email
			contact.Website = flattenList(bp.Website, "url")
			contact.Address = bp.Address
			contact.Latitude = bp.Latitude
			contact.Longitude = bp.Longitude
			contact.Categories = flattenList(bp.Categories, "localized_display_name")
		}
	}
	return contact, true
}

func resolveIsUser(raw map[string]interface{}) bool {
	if v, ok := raw["isUser"]; ok {
		return cast.ToBool(v)
	}
	// absent flag: individual suffix already implies a user account
	return true
}

// flattenList joins an array-valued profile field into one comma-delimited
// string. Items may be plain strings or objects carrying nameKey; non-array
// values pass through unchanged.
func flattenList(v interface{}, nameKey string) string {
	switch items := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if m := asMap(item); m != nil {
				if s := cast.ToString(m[nameKey]); s != "" {
					parts = append(parts, s)
				}
				continue
			}
			if s := cast.ToString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return cast.ToString(v)
	}
}

// ExtractContactCollection sniffs a provider response body for a contact
// collection. Recognized shapes, first match wins: a top-level array, an
// array under "contacts" or "data", or a single contact-shaped object.
func ExtractContactCollection(body interface{}) ([]map[string]interface{}, bool) {
	switch v := body.(type) {
	case []interface{}:
		return toMapSlice(v), true
	case map[string]interface{}:
		if arr, ok := v["contacts"].([]interface{}); ok {
			return toMapSlice(arr), true
		}
		if arr, ok := v["data"].([]interface{}); ok {
			return toMapSlice(arr), true
		}
		if looksLikeContact(v) {
			return []map[string]interface{}{v}, true
		}
	}
	return nil, false
}

func looksLikeContact(m map[string]interface{}) bool {
	if _, ok := m["id"]; ok {
		return true
	}
	if _, ok := m["number"]; ok {
		return true
	}
	_, ok := m["contactId"]
	return ok
}

func toMapSlice(items []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}
