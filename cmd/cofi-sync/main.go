// Command cofi-sync periodically mirrors the upstream transaction history
// into the local SQLite cache so reports can run offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blueshirts/cofi/internal/amqp"
	clihelpers "github.com/blueshirts/cofi/internal/cli"
	"github.com/blueshirts/cofi/internal/services"
	"github.com/blueshirts/cofi/internal/source/api"
)

func main() {
	var (
		user         = flag.String("user", "", "account email used to log in")
		pass         = flag.String("pass", "", "account password")
		settingsPath = flag.String("settings", "", "path to the settings document")
		once         = flag.Bool("once", false, "refresh once and exit instead of running periodically")
	)
	flag.Parse()

	clihelpers.LoadEnvFile()
	logger := clihelpers.SetupLogger()

	logger.Info("Starting cofi-sync")

	cfg := clihelpers.LoadAndValidateConfig(logger, *settingsPath)

	if *user == "" {
		*user = cfg.Settings.User
	}
	if *pass == "" {
		*pass = cfg.Settings.Pass
	}
	if *user == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "cofi-sync: -user and -pass are required (or set them in the settings document)")
		flag.Usage()
		os.Exit(1)
	}

	// The sync worker always talks to the live API; the cache it maintains is
	// what the offline backend reads.
	client := api.NewClient(cfg.Settings.URL, cfg.Settings.Token, cfg.HTTPTimeout, cfg.CredentialTTL)

	repo := clihelpers.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	syncCfg := services.SyncServiceConfig{
		User:     *user,
		Pass:     *pass,
		AppToken: cfg.Settings.Token,
		Interval: cfg.SyncInterval,
	}
	svc := services.NewSyncService(client, client, client, repo, syncCfg)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without announcements", "error", err)
		} else {
			defer amqpClient.Close()
			svc.WithPublisher(amqpClient)
		}
	}

	if *once {
		if err := svc.RunOnce(context.Background()); err != nil {
			logger.Error("Cache refresh failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, done := clihelpers.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			logger.Error("Sync service stop failed", "error", err)
		}
	})

	if err := svc.Start(ctx); err != nil {
		logger.Error("Failed to start sync service", "error", err)
		os.Exit(1)
	}

	clihelpers.WaitForShutdown(ctx, done)
}
