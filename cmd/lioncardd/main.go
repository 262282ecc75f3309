package main

import (
	"context"
	"log/slog"
	"net/http"

	"lioncard-backend/lib/configutil"
	configsqlite "lioncard-backend/lib/configutil/sqlite"
	"lioncard-backend/lib/scrapers/campuscard"
	"lioncard-backend/lib/serviceutil"
	"lioncard-backend/lib/telemetry"
	"lioncard-backend/services/lioncard"
	lioncarddb "lioncard-backend/services/lioncard/db"
)

type Config struct {
	Database      configsqlite.Struct `json:"database"`
	EncryptionKey string              `json:"encryption_key"`
	BaseUrl       string              `json:"base_url"`
	Port          int                 `json:"port"`
	Verbose       bool                `json:"verbose"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	telemetry.InitSlog(config.Verbose)

	t, err := telemetry.SetupFromEnv(ctx, "lioncardd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	db, err := config.Database.OpenDB(lioncarddb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	client, err := campuscard.NewClient(campuscard.ClientOptions{
		BaseUrl: config.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize campus card client", err)
	}

	store, err := lioncard.NewCredentialStore(db, []byte(config.EncryptionKey))
	if err != nil {
		serviceutil.Fatal("failed to initialize credential store", err)
	}

	service := lioncard.NewService(lioncard.PortalAuthenticator{Client: client}, store)
	if err := service.Bootstrap(ctx); err != nil {
		// a dead portal at startup is not fatal, the saved credentials
		// are still in place and a later refresh can succeed
		slog.WarnContext(ctx, "could not restore saved session", "err", err)
	}

	port := config.Port
	if port == 0 {
		port = 8320
	}

	mux := http.NewServeMux()
	registerRoutes(mux, service)
	go serviceutil.StartHttpServer(port, mux)

	<-ctx.Done()
}
