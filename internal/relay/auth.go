package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/chatfusion/warelay/internal/store"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ApiKeyHeader carries the operator credential on every relay call.
const ApiKeyHeader = "x-api-key"

const operatorContextKey = "relay.operator"

// Operator is the authenticated account a validated API key is bound to.
type Operator struct {
	Id   int64
	Name string
}

// KeyValidator resolves an operator API key to its owning account. It is an
// injected interface so the in-memory cache in front of the store can later
// be replaced by a networked backing service without touching handlers.
type KeyValidator interface {
	Validate(ctx context.Context, apiKey string) (*Operator, error)
}

const keyCacheTTL = time.Minute

type cachedOperator struct {
	operator Operator
	expires  time.Time
}

// StoreKeyValidator validates keys against the record store with a small
// per-process TTL cache in front of the repeated lookups.
type StoreKeyValidator struct {
	store store.RecordStore

	mu    sync.RWMutex
	cache map[string]cachedOperator
}

var _ KeyValidator = (*StoreKeyValidator)(nil)

func NewStoreKeyValidator(st store.RecordStore) *StoreKeyValidator {
	return &StoreKeyValidator{store: st, cache: make(map[string]cachedOperator)}
}

func (v *StoreKeyValidator) Validate(ctx context.Context, apiKey string) (*Operator, error) {
	if apiKey == "" {
		return nil, echo.ErrUnauthorized
	}

	v.mu.RLock()
	entry, hit := v.cache[apiKey]
	v.mu.RUnlock()
	if hit && time.Now().Before(entry.expires) {
		op := entry.operator
		return &op, nil
	}

	row, err := v.store.FindActiveApiKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	op := Operator{Id: row.OprId, Name: row.Name}

	v.mu.Lock()
	v.cache[apiKey] = cachedOperator{operator: op, expires: time.Now().Add(keyCacheTTL)}
	v.mu.Unlock()
	return &op, nil
}

// apiKeyMiddleware authenticates the operator API key header. Authorization
// failure is always observable as a 401, distinct from every other failure
// class on this surface.
func (g *Gateway) apiKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		apiKey := c.Request().Header.Get(ApiKeyHeader)
		op, err := g.keys.Validate(c.Request().Context(), apiKey)
		if err != nil {
			zap.L().Warn("relay: api key rejected",
				zap.String("remote_addr", c.Request().RemoteAddr))
			return fail(c, http.StatusUnauthorized, "invalid or missing api key")
		}
		c.Set(operatorContextKey, op)
		return next(c)
	}
}

func currentOperator(c echo.Context) *Operator {
	op, _ := c.Get(operatorContextKey).(*Operator)
	return op
}
