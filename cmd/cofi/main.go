// Command cofi prints a monthly spending report for a user's transaction
// history as JSON on stdout.
//
// Usage:
//
//	cofi -user <email> -pass <password> [-ignore-donuts] [-ignore-cc-payments] [-offline]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/blueshirts/cofi/internal/amqp"
	"github.com/blueshirts/cofi/internal/backend"
	clihelpers "github.com/blueshirts/cofi/internal/cli"
	"github.com/blueshirts/cofi/internal/services"
	gsheet "github.com/blueshirts/cofi/internal/sheets/google"
)

func main() {
	var (
		user             = flag.String("user", "", "account email used to log in")
		pass             = flag.String("pass", "", "account password")
		token            = flag.String("token", "", "application token (overrides settings)")
		settingsPath     = flag.String("settings", "", "path to the settings document")
		ignoreDonuts     = flag.Bool("ignore-donuts", false, "exclude donut merchants from the report")
		ignoreCCPayments = flag.Bool("ignore-cc-payments", false, "suppress offsetting credit card payment pairs")
		offline          = flag.Bool("offline", false, "read the local transaction cache instead of the API")
		export           = flag.Bool("export", false, "also export the report to the configured spreadsheet")
	)
	flag.Parse()

	clihelpers.LoadEnvFile()
	logger := clihelpers.SetupLogger()
	cfg := clihelpers.LoadAndValidateConfig(logger, *settingsPath)

	// Fall back to the credentials stored in the settings document.
	if *user == "" {
		*user = cfg.Settings.User
	}
	if *pass == "" {
		*pass = cfg.Settings.Pass
	}
	if *user == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "cofi: -user and -pass are required (or set them in the settings document)")
		flag.Usage()
		os.Exit(1)
	}

	appToken := cfg.Settings.Token
	if *token != "" {
		appToken = *token
	}
	if *offline {
		cfg.Backend = string(backend.CacheBackend)
	}

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	svc := services.NewReportService(result.Backend, cfg.DonutMerchants)

	if *export && cfg.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize sheet exporter", "error", err)
			os.Exit(1)
		}
		svc.WithExporter(exporter)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without announcements", "error", err)
		} else {
			defer amqpClient.Close()
			svc.WithPublisher(amqpClient)
		}
	}

	creds, err := result.Backend.Login(ctx, *user, *pass, appToken)
	if err != nil {
		logger.Error("Login failed", "error", err, "user", *user)
		os.Exit(1)
	}

	report, err := svc.Run(ctx, creds, *user, services.ReportOptions{
		IgnoreDonuts:     *ignoreDonuts,
		IgnoreCCPayments: *ignoreCCPayments,
	})
	if err != nil {
		logger.Error("Report failed", "error", err, "uid", creds.UID)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("Failed to render report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
