package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/chamatt/NotaNegocia-oB3/internal/api"
	"github.com/chamatt/NotaNegocia-oB3/internal/config"
	"github.com/chamatt/NotaNegocia-oB3/internal/database"
	"github.com/chamatt/NotaNegocia-oB3/internal/decode"
	"github.com/chamatt/NotaNegocia-oB3/internal/export"
	"github.com/chamatt/NotaNegocia-oB3/internal/format"
	"github.com/chamatt/NotaNegocia-oB3/internal/position"
	"github.com/chamatt/NotaNegocia-oB3/internal/prior"
	"github.com/chamatt/NotaNegocia-oB3/internal/reconcile"
	"github.com/chamatt/NotaNegocia-oB3/internal/registry"
	"github.com/chamatt/NotaNegocia-oB3/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "notab3",
		Usage: "normalize B3 trade notes and reconcile positions for the annual declaration",
		Commands: []*cli.Command{
			serveCommand(),
			processCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP reconciliation service",
		Action: func(c *cli.Context) error {
			return runServe(c.Context)
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	policy, err := position.ParsePolicy(cfg.QuantityPolicy)
	if err != nil {
		return fmt.Errorf("QUANTITY_POLICY: %w", err)
	}

	// Registrant directory, with optional PostgreSQL persistence
	cvmClient := registry.NewClient(cfg.CVMURL, cfg.CVMRetryMax, cfg.CVMRetryBaseDelay)

	var repo registry.Repository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		migrationsSub, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			return fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		repo = registry.NewPgRepository(pool)
	}

	directory := registry.NewService(cvmClient, repo)
	if repo != nil {
		if err := directory.WarmFromRepository(ctx); err != nil {
			slog.Warn("warming registrant directory from database failed", "error", err)
		}
	}

	directoryWorker := worker.NewDirectoryWorker(directory, cfg.CVMRefreshInterval)
	go directoryWorker.Run(ctx)

	// Session services
	priors := prior.NewStore()
	aggregator := position.NewService(policy)
	session := reconcile.NewService(decode.New(), aggregator, priors, directory)

	// Optional Google Sheets export
	var exporter api.SummaryExporter
	if cfg.SheetsSpreadsheetID != "" {
		writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		exporter = export.NewService(writer)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, mutating endpoints are unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, session, directory, exporter, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "decode a trade note and print the reconciled positions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "path to the B3 trade note .xlsx",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "prior",
				Usage: "prior-year holding as TICKER=QTY@PRICE, repeatable",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "disposal quantity policy: gross or net",
				Value: "gross",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "write the summary to a local .xlsx report",
			},
			&cli.BoolFlag{
				Name:  "cvm",
				Usage: "fetch the CVM registrant directory for CNPJ resolution",
			},
		},
		Action: func(c *cli.Context) error {
			return runProcess(c)
		},
	}
}

func runProcess(c *cli.Context) error {
	policy, err := position.ParsePolicy(c.String("policy"))
	if err != nil {
		return err
	}

	priors := prior.NewStore()
	for _, spec := range c.StringSlice("prior") {
		ticker, patch, err := parsePriorFlag(spec)
		if err != nil {
			return err
		}
		if _, err := priors.Apply(ticker, patch); err != nil {
			return fmt.Errorf("prior %s: %w", ticker, err)
		}
	}

	var directory reconcile.RegistrantDirectory
	if c.Bool("cvm") {
		cfg := config.Load()
		svc := registry.NewService(registry.NewClient(cfg.CVMURL, cfg.CVMRetryMax, cfg.CVMRetryBaseDelay), nil)
		if err := svc.RefreshDirectory(c.Context); err != nil {
			slog.Warn("fetching CVM registrant directory failed, disclosures will omit CNPJs", "error", err)
		} else {
			directory = svc
		}
	}

	session := reconcile.NewService(decode.New(), position.NewService(policy), priors, directory)

	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	summary, err := session.LoadNote(f)
	if err != nil {
		return err
	}

	fmt.Printf("Decoded %d transactions (%d skipped, %d errors)\n\n",
		summary.Decoded, summary.Skipped, len(summary.RowErrors))
	for _, rowErr := range summary.RowErrors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Err)
	}

	for _, p := range summary.Positions {
		fmt.Printf("%-8s qty %-10s avg %-12s net %s\n",
			p.Ticker, p.TotalQuantity.String(),
			format.CurrencyPtr(p.AveragePrice), format.Currency(p.NetValue))
	}

	fmt.Println()
	for _, d := range session.Disclosures() {
		fmt.Println(d.Line)
	}

	if out := c.String("output"); out != "" {
		exporter := export.NewService(export.NewXLSXWriter(out))
		if err := exporter.ExportSummary(c.Context, summary.Positions, session.Disclosures()); err != nil {
			return fmt.Errorf("writing summary report: %w", err)
		}
		fmt.Printf("\nSummary written to %s\n", out)
	}

	return nil
}

// parsePriorFlag parses a TICKER=QTY@PRICE holding flag value.
func parsePriorFlag(spec string) (string, prior.Patch, error) {
	ticker, rest, ok := strings.Cut(spec, "=")
	if !ok {
		return "", prior.Patch{}, fmt.Errorf("invalid prior %q, want TICKER=QTY@PRICE", spec)
	}
	qtyStr, priceStr, ok := strings.Cut(rest, "@")
	if !ok {
		return "", prior.Patch{}, fmt.Errorf("invalid prior %q, want TICKER=QTY@PRICE", spec)
	}

	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return "", prior.Patch{}, fmt.Errorf("invalid prior quantity %q: %w", qtyStr, err)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return "", prior.Patch{}, fmt.Errorf("invalid prior price %q: %w", priceStr, err)
	}

	return strings.ToUpper(strings.TrimSpace(ticker)), prior.Patch{Price: &price, Quantity: &qty}, nil
}
