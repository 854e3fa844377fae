package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"casalgastos/internal/amqp"
	"casalgastos/internal/config"
	applog "casalgastos/internal/log"
	"casalgastos/internal/sheets"
	gsheet "casalgastos/internal/sheets/google"
	memsheet "casalgastos/internal/sheets/memory"
	"casalgastos/internal/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Mirror transaction events into the spreadsheet",
		Long: `Consumes transaction events from the AMQP queue and keeps one spreadsheet
row per transaction. Without GOOGLE_SPREADSHEET_ID the rows are kept in memory,
which is only useful to check the broker wiring.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.ValidateMirror(); err != nil {
		return err
	}

	var mirror sheets.Mirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return err
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = memsheet.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring to memory")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror, cfg.WorkerPrefetch, logger)
	if err := w.Run(ctx, client); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Mirror worker failed", applog.FieldError, err)
		return err
	}
	return nil
}
