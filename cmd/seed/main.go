// Command seed creates the acme and globex demo tenants in the configured
// store. It is safe to run repeatedly.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/app"
	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/cryptox"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slogx.New(slogx.Config{
		Service: "notes-seed",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	cryptox.SetPepperPath(cfg.PepperFile)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	seeder := &service.SeedService{Store: st}
	res, err := seeder.Seed(slogx.WithContext(ctx, logger), service.DemoTenants, service.DemoPassword)
	_ = st.Close()
	if err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seed complete",
		slog.Int("tenants_created", res.TenantsCreated),
		slog.Int("users_created", res.UsersCreated),
	)
	for _, t := range service.DemoTenants {
		for _, a := range t.Accounts {
			logger.Info("demo account", slog.String("tenant", t.Slug), slog.String("email", a.Email), slog.String("role", string(a.Role)))
		}
	}
}
