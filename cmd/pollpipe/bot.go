package main

import (
	"github.com/spf13/cobra"

	"github.com/noamseg/pollpipe/internal/bot"
	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/github"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Slack slash-command server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := config.SafeEnv("POLLPIPE_ADDR", ":3000")
		server := bot.NewServer(newPipeline(), github.NewClient(), logger)
		return server.Run(addr)
	},
}
