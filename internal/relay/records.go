package relay

import (
	"net/http"
	"os"
	"time"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var startedAt = time.Now()

// listSessions returns the calling operator's devices from the local store.
func (g *Gateway) listSessions(c echo.Context) error {
	op := currentOperator(c)
	devs, err := g.store.ListDevicesByUser(c.Request().Context(), op.Id)
	if err != nil {
		zap.L().Warn("relay: list devices failed", zap.Int64("user_id", op.Id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to list sessions")
	}
	return ok(c, map[string]interface{}{"success": true, "sessions": devs})
}

// deviceForOperator resolves the session's device and enforces operator
// ownership; callers treat any miss as not-found.
func (g *Gateway) deviceForOperator(c echo.Context, sessionId string) (*domain.Device, bool) {
	dev, err := g.store.GetDeviceBySessionId(c.Request().Context(), sessionId)
	if err != nil {
		return nil, false
	}
	if op := currentOperator(c); op == nil || dev.UserId != op.Id {
		return nil, false
	}
	return dev, true
}

// getMessages reads ingested messages for a session from the local store.
func (g *Gateway) getMessages(c echo.Context) error {
	dev, found := g.deviceForOperator(c, c.Param("sessionId"))
	if !found {
		return fail(c, http.StatusNotFound, "no device for session")
	}
	limit := cast.ToInt(c.QueryParam("limit"))
	msgs, err := g.store.ListMessagesByDeviceKey(c.Request().Context(), dev.Key, limit)
	if err != nil {
		zap.L().Warn("relay: list messages failed", zap.String("device_key", dev.Key), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to list messages")
	}
	return ok(c, map[string]interface{}{"success": true, "messages": msgs})
}

// listStoredContacts reads synced contacts for a session from the local
// store, independent of the provider relay.
func (g *Gateway) listStoredContacts(c echo.Context) error {
	dev, found := g.deviceForOperator(c, c.Param("sessionId"))
	if !found {
		return fail(c, http.StatusNotFound, "no device for session")
	}
	limit := cast.ToInt(c.QueryParam("limit"))
	contacts, err := g.store.ListContactsByDeviceKey(c.Request().Context(), dev.Key, limit)
	if err != nil {
		zap.L().Warn("relay: list contacts failed", zap.String("device_key", dev.Key), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "failed to list contacts")
	}
	return ok(c, map[string]interface{}{"success": true, "contacts": contacts})
}

// serverStatus reports process uptime and host resource usage.
func (g *Gateway) serverStatus(c echo.Context) error {
	hostname, _ := os.Hostname()
	devices, _ := g.store.CountDevices(c.Request().Context())

	info := map[string]interface{}{
		"success":  true,
		"hostname": hostname,
		"uptime":   time.Since(startedAt).String(),
		"devices":  devices,
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["mem_used_percent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info["cpu_percent"] = percents[0]
	}
	return ok(c, info)
}
