package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"partyhistory"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	provider   string
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "partyhistory",
		Short:         "Party history quiz, tutor and timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "content provider: gemini or openai")

	rootCmd.AddCommand(playCmd(), chatCmd(), timelineCmd(), questionsCmd(), journalCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

// setup loads configuration and builds the app for a subcommand.
func setup(ctx context.Context) (*partyhistory.App, error) {
	cfg, err := partyhistory.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if provider != "" {
		cfg.Provider.Name = provider
	}

	logger, err := partyhistory.NewLogger(cfg.Env, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app, err := partyhistory.NewApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}

func closeApp(app *partyhistory.App) {
	if err := app.Close(); err != nil {
		app.Logger.Warn("Failed to close app", zap.Error(err))
	}
	_ = app.Logger.Sync()
}

func timelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show key milestones in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(app)

			fmt.Println("⏳ 正在回溯历史长河...")
			events := app.Timeline(cmd.Context())
			if len(events) == 0 {
				fmt.Println("暂无时间线数据。")
				return nil
			}

			fmt.Println("\n光辉历程")
			for _, evt := range events {
				fmt.Printf("\n[%s] %s\n", evt.Year, evt.Title)
				fmt.Printf("  %s\n", evt.Description)
				fmt.Printf("  意义: %s\n", evt.Significance)
			}
			return nil
		},
	}
}

func questionsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Fetch a question set and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(app)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			questions := app.Acquirer.Acquire(ctx, 0)
			output, err := json.MarshalIndent(questions, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal questions: %w", err)
			}

			if outputFile == "" {
				fmt.Println(string(output))
				return nil
			}
			if err := os.WriteFile(outputFile, output, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			app.Logger.Info("Questions saved", zap.String("path", outputFile), zap.Int("count", len(questions)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func journalCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent question-set acquisitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(app)

			if app.Journal == nil {
				return fmt.Errorf("journal is disabled (journal_path is empty)")
			}

			rows, err := app.Journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tPROVIDER\tOUTCOME\tREASON\tQUESTIONS\tDURATION")
			for _, a := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					a.StartedAt.Local().Format(time.DateTime), a.Provider, a.Outcome, a.Reason,
					a.QuestionCount, a.FinishedAt.Sub(a.StartedAt).Round(time.Millisecond))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")
	return cmd
}
