package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tradenet/config"
	"tradenet/reference"
	"tradenet/utils"
)

// app carries what every subcommand needs.
type app struct {
	cfg          *config.Config
	logger       *utils.Logger
	codeBookPath string
}

// NewRootCommand builds the tradenet command group.
func NewRootCommand(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	cmd := &cobra.Command{
		Use:           "tradenet",
		Short:         "Extract bilateral trade links from yearly trade-flow facets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.codeBookPath, "code-book", "c",
		filepath.Join("src", "code_book.yaml"), "codebook for extract data by HS6 digits")

	cmd.AddCommand(
		newFetchCmd(a),
		newCountryCmd(a),
		newProductCmd(a),
		newHSCmd(a),
		newReportCmd(a),
	)
	return cmd
}

func (a *app) registry() (*reference.Registry, error) {
	return reference.Load(reference.Options{
		DataDir:              a.cfg.DataDir,
		CountryCodesFile:     a.cfg.CountryCodesFile,
		CountryCodesEncoding: a.cfg.CountryCodesEncoding,
		ProductCodesFile:     a.cfg.ProductCodesFile,
	}, a.logger)
}

// retry is the back-off used when connecting to PostgreSQL.
func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Logger:      a.logger,
	}
}
