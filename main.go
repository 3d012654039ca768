package main

import (
	"os"

	"tradenet/cli"
	"tradenet/config"
	"tradenet/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	logger.Debug("Config: data dir: %s | output: %s (%s)", cfg.DataDir, cfg.OutputDir, cfg.OutputFormat)

	if err := cli.NewRootCommand(cfg, logger).Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
