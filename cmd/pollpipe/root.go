package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noamseg/pollpipe/internal/core"
	"github.com/noamseg/pollpipe/internal/polly"
	"github.com/noamseg/pollpipe/internal/qual"
)

var (
	logger *zap.Logger

	flagVerbose bool
	flagConfig  string
	flagDrafts  string
	flagSite    string
)

var ratingEmojis = map[int]string{1: "🟥", 2: "🟧", 3: "🟨", 4: "🟩", 5: "💚"}

var rootCmd = &cobra.Command{
	Use:           "pollpipe",
	Short:         "Automated survey-to-dashboard pipeline",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may be set another way.
		_ = godotenv.Load()

		var err error
		if flagVerbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config/surveys.yaml", "path to the surveys config file")
	rootCmd.PersistentFlags().StringVar(&flagDrafts, "drafts", "drafts", "directory for rendered drafts")
	rootCmd.PersistentFlags().StringVar(&flagSite, "site", "..", "path to the site repo checkout")

	rootCmd.AddCommand(surveysCmd, peekCmd, generateCmd, publishCmd, botCmd)
}

func newPipeline() *core.Pipeline {
	return &core.Pipeline{
		API:        polly.NewClient(),
		Synth:      qual.NewSynthesizer(qual.NewAnthropicClient()),
		ConfigPath: flagConfig,
	}
}
