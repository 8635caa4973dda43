package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/chatfusion/warelay/internal/ingest"
	"github.com/chatfusion/warelay/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "hook-secret"

func newTestHandler(t *testing.T) (*Handler, *store.GormStore, *ingest.Processor) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().AutoMigrate(domain.Tables...))
	st := store.NewGormStore(db)

	proc, err := ingest.NewProcessor(st, 4)
	require.NoError(t, err)
	t.Cleanup(proc.Close)
	return NewHandler(testSecret, proc), st, proc
}

func deliver(h *Handler, body, secret string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	_ = h.HandleWebhook(e.NewContext(req, rec))
	return rec
}

func TestWebhookAuth(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := deliver(h, `{"sessionId":"abc123","dataType":"ready"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = deliver(h, `{"sessionId":"abc123","dataType":"ready"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid webhook secret")
}

func TestWebhookEmptySecretFailsClosed(t *testing.T) {
	_, _, proc := newTestHandler(t)
	h := NewHandler("", proc)

	rec := deliver(h, `{"sessionId":"abc123","dataType":"ready"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAckShape(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := deliver(h, `{"sessionId":"abc123","dataType":"qr"}`, testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"receivedType":"qr"`)
	assert.Contains(t, rec.Body.String(), `"sessionId":"abc123"`)
}

func TestWebhookUndecodableBodyAcked(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := deliver(h, `this is not json`, testSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = deliver(h, ``, testSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookUnrecognizedTypeAcked(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := deliver(h, `{"sessionId":"abc123","dataType":"battery_level","data":{"pct":50}}`, testSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"receivedType":"battery_level"`)
}

func TestWebhookStatusThenMessage(t *testing.T) {
	h, st, proc := newTestHandler(t)
	ctx := context.Background()

	dev, _, err := st.CreateDeviceIfAbsent(ctx, "abc123", 1, domain.DeviceStatusConnecting)
	require.NoError(t, err)

	rec := deliver(h, `{"sessionId":"abc123","dataType":"ready"}`, testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	proc.Wait()

	got, err := st.GetDeviceBySessionId(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceStatusReady, got.Status)
	assert.True(t, got.Ready)

	body := `{"sessionId":"abc123","dataType":"message","data":{"message":{"_data":{
		"id":{"_serialized":"msg1"},"from":"111@c.us","to":"222@c.us",
		"body":"hi","t":1000,"type":"chat"}}}}`
	rec = deliver(h, body, testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	proc.Wait()

	msgs, err := st.ListMessagesByDeviceKey(ctx, dev.Key, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg1", msgs[0].MessageId)
	assert.Equal(t, "111", msgs[0].From)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, int64(1000), msgs[0].Timestamp)
}

func TestWebhookNestedShapeResolution(t *testing.T) {
	h, st, proc := newTestHandler(t)
	ctx := context.Background()

	dev, _, err := st.CreateDeviceIfAbsent(ctx, "abc123", 1, domain.DeviceStatusReady)
	require.NoError(t, err)

	// the same message arrives under outgoingData, under data, and bare at the
	// top level; all three shapes persist
	shapes := []string{
		`{"sessionId":"abc123","dataType":"message","outgoingData":{"message":{"id":{"_serialized":"m-out"},"body":"a"}}}`,
		`{"session":"abc123","dataType":"message","data":{"id":{"_serialized":"m-data"},"body":"b"}}`,
		`{"sessionId":"abc123","body":"c","id":{"_serialized":"m-bare"}}`,
	}
	for _, shape := range shapes {
		rec := deliver(h, shape, testSecret)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	proc.Wait()

	msgs, err := st.ListMessagesByDeviceKey(ctx, dev.Key, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestWebhookMissingSessionNotDispatched(t *testing.T) {
	h, st, proc := newTestHandler(t)
	ctx := context.Background()

	dev, _, err := st.CreateDeviceIfAbsent(ctx, "abc123", 1, domain.DeviceStatusReady)
	require.NoError(t, err)

	rec := deliver(h, `{"dataType":"message","data":{"id":{"_serialized":"m1"},"body":"x"}}`, testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	proc.Wait()

	msgs, err := st.ListMessagesByDeviceKey(ctx, dev.Key, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
