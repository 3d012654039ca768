package cli

import (
	"github.com/spf13/cobra"

	"tradenet/services"
	"tradenet/storage"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		runID     string
		format    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the summary of a run stored by fetch in sqlite or postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, where, err := storage.OpenStore(storage.Options{
				Format:     format,
				OutputDir:  outputDir,
				SQLitePath: a.cfg.SQLitePath,
				DSN:        a.cfg.DSN(),
				RunID:      runID,
				Retry:      a.retry(),
			})
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.FetchRun(runID)
			if err != nil {
				return err
			}
			a.logger.Info("[storage] %d rows read from %s", table.Len(), where)

			summary := services.NewSummaryServiceTo(a.logger, cmd.OutOrStdout())
			summary.Print(summary.Generate(table))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&runID, "run", "", "run id logged by fetch")
	f.StringVar(&format, "format", "sqlite", "store to read from: sqlite or postgres")
	f.StringVarP(&outputDir, "output-dir", "o", a.cfg.OutputDir, "output dir holding the sqlite file")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}
