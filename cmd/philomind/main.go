package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"philomind/cmd/philomind/ui"
	"philomind/internal/analysis"
	"philomind/internal/config"
	"philomind/internal/journey"
	"philomind/internal/logging"
	"philomind/internal/questions"
	"philomind/internal/sharecard"
	"philomind/internal/snapshot"
)

var (
	// Global flags
	verbose  bool
	mockMode bool

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "philomind",
	Short: "PhiloMind - a reflective questionnaire for the examined life",
	Long: `PhiloMind asks seven deep questions, sends your answers to Gemini for a
structured philosophical analysis, and renders the result as a shareable
maturity reading.

Run without arguments to start the interactive journey.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "philomind" && cmd.CalledAs() == "philomind" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// questionsCmd prints the active question bank
var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the active question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, bank, err := bootstrap()
		if err != nil {
			return err
		}
		for _, q := range bank {
			fmt.Printf("%d. %s\n", q.ID, q.Text)
			for _, opt := range q.Options {
				fmt.Printf("   - %s\n", opt)
			}
		}
		return nil
	},
}

// shareCmd regenerates and delivers a share card from the saved journey
var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Generate the share card for your saved results",
	Long: `Renders the share card for the persisted journey and saves it as a PNG.
Requires a completed analysis in the saved journey.`,
	RunE: runShare,
}

// resetCmd clears the persisted journey
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the saved journey and start fresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		store, err := snapshot.NewStore(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			return err
		}
		logger.Info("journey cleared", zap.String("home", home))
		fmt.Println("Journey cleared.")
		return nil
	},
}

var shareTarget string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.Flags().BoolVar(&mockMode, "mock", false, "use a canned analysis instead of calling Gemini")

	shareCmd.Flags().StringVar(&shareTarget, "target", "download", "share target: download, twitter, whatsapp, instagram")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(resetCmd)
}

// bootstrap resolves the home dir, config and question bank.
func bootstrap() (string, *config.Config, questions.Bank, error) {
	home, err := config.Home()
	if err != nil {
		return "", nil, nil, err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return "", nil, nil, err
	}
	bank, err := questions.LoadBank(filepath.Join(home, "questions.yaml"))
	if err != nil {
		return "", nil, nil, err
	}
	return home, cfg, bank, nil
}

func newPipeline(cfg *config.Config) (*sharecard.Pipeline, *sharecard.Capturer) {
	renderer := sharecard.NewRenderer(cfg.ShareCard.GetWidth(), cfg.ShareCard.GetHeight(), cfg.ShareCard.Background)
	capturer := sharecard.NewCapturer(sharecard.Options{
		Width:           cfg.ShareCard.GetWidth(),
		Height:          cfg.ShareCard.GetHeight(),
		SettleDelay:     cfg.ShareCard.SettleDelay(),
		PrimaryTimeout:  cfg.ShareCard.PrimaryTimeout(),
		FallbackTimeout: cfg.ShareCard.FallbackTimeout(),
		PrimaryScale:    cfg.ShareCard.GetPrimaryScale(),
		FallbackScale:   cfg.ShareCard.GetFallbackScale(),
	})
	pipeline := sharecard.NewPipeline(renderer, capturer, &sharecard.LocalPlatform{}, cfg.ShareCard.AppURL)
	return pipeline, capturer
}

func runInteractive() error {
	home, cfg, bank, err := bootstrap()
	if err != nil {
		return err
	}

	if err := logging.Initialize(home, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.CloseAll()
	logging.Boot("PhiloMind %s starting", cfg.Version)

	store, err := snapshot.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	machine := journey.NewMachine(store)

	var client analysis.Client
	if mockMode {
		client = mockClient{}
	} else {
		client = analysis.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.RequestTimeout())
	}

	pipeline, capturer := newPipeline(cfg)
	defer capturer.Close()

	return ui.Run(ui.NewModel(cfg, machine, client, pipeline, bank))
}

func runShare(cmd *cobra.Command, args []string) error {
	_, cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	store, err := snapshot.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	machine := journey.NewMachine(store)
	result := machine.Result()
	if machine.State() != journey.StateResults || result == nil {
		return fmt.Errorf("no completed analysis to share; finish the questionnaire first")
	}

	var target sharecard.Target
	switch shareTarget {
	case "download":
		target = sharecard.TargetDownload
	case "twitter":
		target = sharecard.TargetTwitter
	case "whatsapp":
		target = sharecard.TargetWhatsApp
	case "instagram":
		target = sharecard.TargetInstagram
	default:
		return fmt.Errorf("unknown share target %q", shareTarget)
	}

	pipeline, capturer := newPipeline(cfg)
	defer capturer.Close()

	delivery, err := pipeline.Share(context.Background(), result, target)
	if err != nil {
		return err
	}
	logger.Info("share delivered",
		zap.String("target", string(target)),
		zap.String("tier", delivery.Tier.String()),
		zap.String("path", delivery.Path))
	if delivery.Path != "" {
		fmt.Printf("Share card saved to %s\n", delivery.Path)
	} else {
		fmt.Println("Share dispatched.")
	}
	return nil
}

// mockClient serves the canned result for offline demos.
type mockClient struct{}

func (mockClient) Analyze(ctx context.Context, bank questions.Bank, answers map[int]string) (*analysis.Result, error) {
	return analysis.MockResult(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
