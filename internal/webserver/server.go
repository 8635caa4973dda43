// Package webserver hosts the echo HTTP server and the package-level route
// registry the handler packages register themselves into.
package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/chatfusion/warelay/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

var server *WebServer

type WebServer struct {
	root      *echo.Echo
	appConfig *config.AppConfig
}

// Init creates the global web server instance.
func Init(cfg *config.AppConfig) *WebServer {
	server = NewWebServer(cfg)
	return server
}

func NewWebServer(cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(ZapLoggerMiddleware())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		zap.L().Error("http error", zap.String("path", c.Path()), zap.Error(err))
		_ = c.JSON(code, map[string]interface{}{"success": false, "message": err.Error()})
	}
	return &WebServer{root: e, appConfig: cfg}
}

// Echo exposes the underlying server, used by tests to drive handlers
// directly.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func (s *WebServer) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.appConfig.Web.Host, s.appConfig.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

// ZapLoggerMiddleware logs each request with the global zap logger.
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}

// Listen starts the global web server instance.
func Listen() error {
	return server.Listen()
}

// Route registry, used by handler packages at registration time.

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}
