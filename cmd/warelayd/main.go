package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chatfusion/warelay/config"
	"github.com/chatfusion/warelay/internal/app"
	"github.com/chatfusion/warelay/internal/ingest"
	"github.com/chatfusion/warelay/internal/provider"
	"github.com/chatfusion/warelay/internal/relay"
	"github.com/chatfusion/warelay/internal/store"
	"github.com/chatfusion/warelay/internal/webhook"
	"github.com/chatfusion/warelay/internal/webserver"
	"go.uber.org/zap"
)

var (
	cfile  = flag.String("c", "/etc/warelay.yml", "config file")
	initdb = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*cfile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		fmt.Println("database initialized")
		return
	}

	recordStore := store.NewGormStore(application.DB())
	processor, err := ingest.NewProcessor(recordStore, 0)
	if err != nil {
		zap.L().Fatal("failed to start ingest processor", zap.Error(err))
	}
	defer processor.Close()

	client := provider.NewClient(cfg.Provider)
	gateway := relay.NewGateway(client, recordStore, relay.NewStoreKeyValidator(recordStore), processor)
	hooks := webhook.NewHandler(cfg.Webhook.Secret, processor)

	webserver.Init(cfg)
	gateway.RegisterRoutes()
	hooks.RegisterRoutes()

	go func() {
		if err := webserver.Listen(); err != nil {
			zap.L().Fatal("web server stopped", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zap.L().Info("shutting down")
}
