package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveContactId(t *testing.T) {
	id := ResolveContactId(map[string]interface{}{
		"id": map[string]interface{}{"_serialized": "111@c.us"},
	})
	assert.Equal(t, "111@c.us", id)

	id = ResolveContactId(map[string]interface{}{"id": "222@c.us"})
	assert.Equal(t, "222@c.us", id)

	id = ResolveContactId(map[string]interface{}{"contactId": "333@c.us"})
	assert.Equal(t, "333@c.us", id)

	// bare number gets serialized with the individual-user suffix
	id = ResolveContactId(map[string]interface{}{"number": "444"})
	assert.Equal(t, "444@c.us", id)

	// no identity at all falls back to a generated uuid without a suffix
	id = ResolveContactId(map[string]interface{}{})
	assert.NotEmpty(t, id)
	assert.False(t, IsIndividualContactId(id))
}

func TestNormalizeContactFiltersNonIndividual(t *testing.T) {
	_, ok := NormalizeContact("K", map[string]interface{}{"id": "555@g.us"})
	assert.False(t, ok)

	_, ok = NormalizeContact("K", map[string]interface{}{"id": "status@broadcast"})
	assert.False(t, ok)

	_, ok = NormalizeContact("K", nil)
	assert.False(t, ok)

	contact, ok := NormalizeContact("K", map[string]interface{}{"id": "555@c.us"})
	require.True(t, ok)
	assert.Equal(t, "555@c.us", contact.ContactId)
}

func TestContactNumberExtraction(t *testing.T) {
	// direct field first
	n := ContactNumber(map[string]interface{}{"number": "777"}, "888@c.us")
	assert.Equal(t, "777", n)

	// then digits preceding the suffix of the serialized id
	n = ContactNumber(map[string]interface{}{}, "888@c.us")
	assert.Equal(t, "888", n)

	n = ContactNumber(map[string]interface{}{}, "no-digits")
	assert.Equal(t, "", n)
}

func TestNormalizeContactBusinessProfile(t *testing.T) {
	contact, ok := NormalizeContact("KEY12345", map[string]interface{}{
		"id":         "999@c.us",
		"name":       "Shop",
		"isBusiness": true,
		"businessProfile": map[string]interface{}{
			"description": "a shop",
			"email":       "shop@example.com",
			"website":     []interface{}{"https://a.example", map[string]interface{}{"url": "https://b.example"}},
			"address":     "1 Main St",
			"latitude":    float64(1.5),
			"longitude":   float64(-2.25),
			"categories": []interface{}{
				map[string]interface{}{"localized_display_name": "Retail"},
				"Food",
			},
		},
	})
	require.True(t, ok)
	assert.Equal(t, "Shop", contact.Name)
	assert.True(t, contact.IsBusiness)
	assert.Equal(t, "a shop", contact.Description)
	assert.Equal(t, "shop@example.com", contact.Email)
	assert.Equal(t, "https://a.example, https://b.example", contact.Website)
	assert.Equal(t, "1 Main St", contact.Address)
	assert.Equal(t, 1.5, contact.Latitude)
	assert.Equal(t, -2.25, contact.Longitude)
	assert.Equal(t, "Retail, Food", contact.Categories)
}

func TestNormalizeContactScalarWebsite(t *testing.T) {
	contact, ok := NormalizeContact("K", map[string]interface{}{
		"id": "1@c.us",
		"businessProfile": map[string]interface{}{
			"website": "https://only.example",
		},
	})
	require.True(t, ok)
	assert.Equal(t, "https://only.example", contact.Website)
}

func TestNormalizeContactNames(t *testing.T) {
	contact, ok := NormalizeContact("K", map[string]interface{}{
		"id":          "2@c.us",
		"pushname":    "Pushed",
		"contactName": "Saved",
	})
	require.True(t, ok)
	assert.Equal(t, "Pushed", contact.Name)
	assert.Equal(t, "Saved", contact.ContactName)
	assert.True(t, contact.IsUser)
}

func TestExtractContactCollection(t *testing.T) {
	one := map[string]interface{}{"id": "1@c.us"}
	two := map[string]interface{}{"id": "2@c.us"}

	// top-level array
	col, ok := ExtractContactCollection([]interface{}{one, two})
	require.True(t, ok)
	assert.Len(t, col, 2)

	// under "contacts"
	col, ok = ExtractContactCollection(map[string]interface{}{
		"success":  true,
		"contacts": []interface{}{one},
	})
	require.True(t, ok)
	assert.Len(t, col, 1)

	// under "data"
	col, ok = ExtractContactCollection(map[string]interface{}{
		"data": []interface{}{one, two},
	})
	require.True(t, ok)
	assert.Len(t, col, 2)

	// single contact-shaped object
	col, ok = ExtractContactCollection(one)
	require.True(t, ok)
	assert.Len(t, col, 1)

	// unrecognized shapes
	_, ok = ExtractContactCollection(map[string]interface{}{"success": true})
	assert.False(t, ok)
	_, ok = ExtractContactCollection("not json-shaped")
	assert.False(t, ok)
	_, ok = ExtractContactCollection(nil)
	assert.False(t, ok)
}
