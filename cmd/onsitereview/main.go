package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/app"
	"github.com/SamuraiJenkinz/onsitereview/internal/batch"
	"github.com/SamuraiJenkinz/onsitereview/internal/config"
	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cmd := &cli.Command{
		Name:  "onsitereview",
		Usage: "Score ServiceNow incident tickets against quality rubrics",
		Commands: []*cli.Command{
			newEvaluateCommand(cfg, logger),
			newTemplatesCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newEvaluateCommand(cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate tickets from a ServiceNow JSON export or PDF printout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "ServiceNow export (.json) or incident printout (.pdf)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "Scoring template",
				Value:   rubric.TemplateOnsiteReview,
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "Tickets evaluated in parallel",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the full results as JSON to this path",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a batch summary PDF to this path",
			},
			&cli.StringFlag{
				Name:  "scorecards",
				Usage: "Write per-ticket scorecard PDFs into this directory",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "Persist results to the evaluation archive",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			concurrency := int(command.Int("concurrency"))
			if concurrency <= 0 {
				concurrency = cfg.BatchConcurrency
			}

			application, err := app.NewApp(ctx, cfg, logger, app.Options{
				WithArchive: command.Bool("archive"),
			})
			if err != nil {
				return err
			}
			defer application.Close()

			tickets, err := loadTickets(application, command.String("input"))
			if err != nil {
				return err
			}

			orchestrator := application.NewOrchestrator(concurrency, func(p batch.Progress) {
				fmt.Fprintf(os.Stderr, "\revaluated %d/%d (errors: %d)", p.Completed+p.Errored, p.Total, p.Errored)
			})

			result, runErr := orchestrator.Run(ctx, tickets, command.String("template"))
			fmt.Fprintln(os.Stderr)
			if result == nil {
				return runErr
			}

			printSummary(result)

			if path := command.String("output"); path != "" {
				if err := writeJSON(path, result); err != nil {
					return err
				}
			}
			if path := command.String("report"); path != "" {
				if err := application.Reports.WriteBatchReport(result, path); err != nil {
					return err
				}
			}
			if dir := command.String("scorecards"); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create scorecard dir: %w", err)
				}
				for _, r := range result.Results {
					if _, err := application.Reports.WriteTicketReport(r, dir); err != nil {
						return err
					}
				}
			}
			if application.Archive != nil && len(result.Results) > 0 {
				if err := application.Archive.SaveBatch(ctx, result.Results); err != nil {
					return err
				}
				logger.Info("results archived", zap.Int("count", len(result.Results)))
			}

			usage := application.Client.Usage()
			logger.Info("token usage",
				zap.Int64("prompt", usage.PromptTokens),
				zap.Int64("completion", usage.CompletionTokens))
			return runErr
		},
	}
}

func newTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List the available scoring templates",
		Action: func(ctx context.Context, command *cli.Command) error {
			registry, err := rubric.Load()
			if err != nil {
				return err
			}
			for _, name := range registry.TemplateNames() {
				t, err := registry.Template(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s, %d points)\n", t.Name, t.DisplayName, t.MaxScore)
				for _, c := range t.Criteria {
					switch c.Policy {
					case rubric.PolicyAdditive:
						fmt.Printf("  %-28s %2d pts (%s)\n", c.ID, c.MaxPoints, c.Source)
					case rubric.PolicyDeduction:
						fmt.Printf("  %-28s -%d on failure\n", c.ID, c.Penalty)
					case rubric.PolicyAutoFail:
						fmt.Printf("  %-28s auto-fail on violation\n", c.ID)
					}
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func loadTickets(application *app.App, input string) ([]*models.Ticket, error) {
	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		t, err := application.PDFParser.ParseFile(input)
		if err != nil {
			return nil, err
		}
		return []*models.Ticket{t}, nil
	}
	return application.Parser.ParseFile(input)
}

func printSummary(result *batch.Result) {
	s := result.Summary
	fmt.Printf("Evaluated %d ticket(s), %d error(s)\n", s.Count, s.Errored)
	if s.Count == 0 {
		return
	}
	fmt.Printf("Average score: %.1f  (%.1f%%)\n", s.AverageScore, s.AveragePercentage)
	fmt.Printf("Pass rate: %.1f%%\n", s.PassRate)
	for _, band := range models.Bands {
		if n := s.BandDistribution[band]; n > 0 {
			fmt.Printf("  %-7s %d\n", band, n)
		}
	}
	if len(s.CommonIssues) > 0 {
		fmt.Println("Common issues:")
		for _, issue := range s.CommonIssues {
			fmt.Printf("  - %s\n", issue)
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
