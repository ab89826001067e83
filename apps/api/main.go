package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillforge/gateway/apps/api/echo"
	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/approval"
	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/core/tenant"
	"github.com/skillforge/gateway/services/email"
	"github.com/skillforge/gateway/services/logger"
	"github.com/skillforge/gateway/services/upstream"
	"github.com/skillforge/gateway/storage/state"
	"github.com/skillforge/gateway/storage/state/inmem"
	"github.com/skillforge/gateway/storage/state/redisstore"
	"github.com/skillforge/gateway/storage/state/sqlxstore"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up the shared state store
	var store state.Store
	switch conf.State.Backend {
	case "redis":
		client, err := redisstore.Open(conf.State)
		errAndDie(std, err)
		defer func() { _ = client.Close() }()
		store = redisstore.NewStore(client)
	case "postgres":
		db, err := sqlxstore.Open(conf.Database)
		errAndDie(std, err)
		defer func() { _ = db.Close() }()
		store = sqlxstore.NewStore(db)
	default:
		store = inmem.NewStore()
	}

	// set up services
	api := upstream.NewClient(conf.Upstream)
	verifier := session.NewVerifier(conf, logger)
	resolver := session.NewResolver(conf, verifier, api)

	tenantCache := tenant.NewCache(store, conf.Tenant.CacheTTL)
	registry := tenant.NewRegistry(tenantCache, logger, conf.Server.SessionCacheSize, conf.Tenant.CacheTTL)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(std)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	approvals := approval.NewService(api, mailSvc, logger)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Addr:      conf.Server.Address(),
		Conf:      conf,
		Logger:    logger,
		Verifier:  verifier,
		Resolver:  resolver,
		Upstream:  api,
		Tenants:   registry,
		Store:     store,
		Approvals: approvals,
		Shutdown:  func() { shutdown <- syscall.SIGTERM },
	})
	go app.Start()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Printf("stopping server: %v", err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
