package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/browseprobe/internal/config"
	"github.com/hamed0406/browseprobe/internal/httpapi"
	apimw "github.com/hamed0406/browseprobe/internal/httpapi/middleware"
	"github.com/hamed0406/browseprobe/internal/logging"
	"github.com/hamed0406/browseprobe/internal/notify"
	"github.com/hamed0406/browseprobe/internal/probe"
	"github.com/hamed0406/browseprobe/internal/repo"
	"github.com/hamed0406/browseprobe/internal/repo/memory"
	"github.com/hamed0406/browseprobe/internal/repo/postgres"
	"github.com/hamed0406/browseprobe/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var targets repo.TargetStore
	var results repo.ResultStore
	var alerts repo.AlertStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		targets, results, alerts = pg, pg, pg
		logger.Info("store_postgres")
	} else {
		mem := memory.New()
		targets, results, alerts = mem, mem, mem
		logger.Info("store_memory")
	}

	base := probe.NewBrowseChecker(probe.Options{
		Endpoint:      cfg.Endpoint,
		APIKey:        cfg.APIKey,
		VisitorData:   cfg.VisitorData,
		ClientName:    cfg.ClientName,
		ClientVersion: cfg.ClientVersion,
		ClientNameID:  cfg.ClientNameID,
		UserAgent:     cfg.UserAgent,
		GL:            cfg.GL,
		HL:            cfg.HL,
		Timeout:       cfg.Timeout,
		InsecureTLS:   cfg.InsecureTLS,
	})
	chk := probe.Checker(base)
	if cfg.RetryAttempts > 1 {
		chk = &probe.RetryChecker{Inner: base, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}

	if cfg.RecheckInterval > 0 {
		rp := scheduler.NewReprober(logger, targets, results, chk,
			cfg.RecheckInterval, cfg.Timeout, cfg.MaxConcurrent)
		go rp.Run(ctx)

		if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
			al := scheduler.NewAlerter(results, alerts, notify.Multi{slack}, scheduler.AlerterConfig{
				AlertOnRecovery: true,
				Cooldown:        15 * time.Minute,
				PollInterval:    cfg.RecheckInterval,
			})
			go func() { _ = al.Run(ctx) }()
		}
	}

	api := httpapi.NewServer(logger, targets, results, chk)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	router := api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}
