package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/noah-isme/plano-treino/internal/app"
	"github.com/noah-isme/plano-treino/internal/service"
	"github.com/noah-isme/plano-treino/pkg/config"
	"github.com/noah-isme/plano-treino/pkg/logger"
)

const usage = `usage: planoctl <command>

commands:
  migrate     rewrite every trainer ledger in the current schema
  advisories  list students at or over the advisory threshold
  metrics     read every ledger and print the collected metrics
  report <trainer> <student-id> [csv|pdf]
              print a student's weight history report
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("planoctl: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	switch args[0] {
	case "migrate":
		n, err := a.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "migrated %d ledgers\n", n)
	case "advisories":
		groups, err := a.Advisories(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			for _, adv := range g.Advisories {
				fmt.Fprintf(stdout, "%s\t%s\t%s\t%d\n", g.Trainer, adv.StudentID, adv.StudentName, adv.CompletedWorkouts)
			}
		}
	case "metrics":
		if _, err := a.LoadLedgers(ctx); err != nil {
			return err
		}
		return a.Metrics.WriteText(stdout)
	case "report":
		if len(args) < 3 || len(args) > 4 {
			fmt.Fprint(stdout, usage)
			return fmt.Errorf("report needs a trainer and a student id")
		}
		format := service.ExportCSV
		if len(args) == 4 {
			format = service.ExportFormat(args[3])
		}
		result, err := a.Exports.StudentProgress(ctx, args[1], args[2], format)
		if err != nil {
			return err
		}
		_, err = stdout.Write(result.Content)
		return err
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
