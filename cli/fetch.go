package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tradenet/reference"
	"tradenet/services"
	"tradenet/storage"
)

type fetchOptions struct {
	source      string
	target      string
	outputDir   string
	years       string
	groups      []string
	allProducts bool
	hsFrom      int
	hsTo        int
	format      string
	extract     services.ExtractOptions
}

func newFetchCmd(a *app) *cobra.Command {
	opts := fetchOptions{extract: services.DefaultExtractOptions()}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run fetch command to get a data facet output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.source, "source", "i", "ALL", "source countries (ISO-3 or numeric, comma separated), default: ALL")
	f.StringVarP(&opts.target, "target", "j", "ALL", "target countries (ISO-3 or numeric, comma separated), default: ALL")
	f.StringVarP(&opts.outputDir, "output-dir", "o", a.cfg.OutputDir, "output dir path")
	f.StringVar(&opts.years, "years", "2000-2018", "years to extract: a range (2000-2018) or a list (2000,2005)")
	f.StringSliceVar(&opts.groups, "groups", nil, "code book groups to extract, default: every group")
	f.BoolVar(&opts.allProducts, "all-products", false, "ignore the code book and keep every product")
	f.IntVar(&opts.hsFrom, "hs-from", 0, "HS revision year the code book is written in")
	f.IntVar(&opts.hsTo, "hs-to", 0, "HS revision year of the trade facets")
	f.StringVar(&opts.format, "format", a.cfg.OutputFormat, "output format: "+strings.Join(storage.Formats, ", "))
	f.BoolVar(&opts.extract.CompressCountry, "compress-country", false, "sum values over products per country pair")
	f.BoolVar(&opts.extract.CompressProduct, "compress-product", true, "sum duplicate rows per target and product")
	f.BoolVar(&opts.extract.Panel, "panel", false, "zero-fill every missing country pair")

	return cmd
}

func (a *app) runFetch(cmd *cobra.Command, opts fetchOptions) error {
	years, err := parseYears(opts.years)
	if err != nil {
		return err
	}
	if (opts.hsFrom == 0) != (opts.hsTo == 0) {
		return fmt.Errorf("--hs-from and --hs-to must be given together")
	}

	registry, err := a.registry()
	if err != nil {
		return err
	}

	var products []string
	if !opts.allProducts {
		products, err = a.productCodes(registry, opts)
		if err != nil {
			return err
		}
	}

	query := services.Query{
		Sources:  parseCountries(opts.source),
		Targets:  parseCountries(opts.target),
		Products: products,
	}

	loader := services.NewFacetLoader(a.cfg.DataDir, a.cfg.FacetYearToken, a.logger)
	extractor := services.NewExtractor(loader, registry, a.logger)
	extractor.Progress = func(done, total, year int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r[%d/%d] %d", done, total, year)
		if done == total {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}

	table, err := extractor.FetchLinksByYears(years, query, opts.extract)
	if err != nil {
		return err
	}

	writer, where, err := storage.Open(storage.Options{
		Format:     opts.format,
		OutputDir:  opts.outputDir,
		SQLitePath: a.cfg.SQLitePath,
		DSN:        a.cfg.DSN(),
		RunID:      uuid.NewString(),
		Retry:      a.retry(),
	})
	if err != nil {
		return err
	}
	if err := writer.Write(table); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	a.logger.Info("[storage] %d rows written to %s", table.Len(), where)

	summary := services.NewSummaryServiceTo(a.logger, cmd.OutOrStdout())
	summary.Print(summary.Generate(table))
	return nil
}

// productCodes reads the selected code book groups and, when asked, maps them
// onto the HS revision of the facets.
func (a *app) productCodes(registry *reference.Registry, opts fetchOptions) ([]string, error) {
	cb, err := reference.LoadCodebook(a.codeBookPath)
	if err != nil {
		return nil, err
	}
	codes, err := cb.Codes(opts.groups...)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("code book %s selects no product codes", a.codeBookPath)
	}

	if opts.hsFrom != 0 && opts.hsFrom != opts.hsTo {
		codes, err = registry.QueryHSCodeByYears(opts.hsFrom, opts.hsTo, codes)
		if err != nil {
			return nil, err
		}
	}
	a.logger.Info("[fetch] %d product codes selected", len(codes))
	return codes, nil
}

// parseCountries splits a comma list; "ALL" or blank means no filter.
func parseCountries(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "ALL") {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseYears accepts "2005", "2000-2018" or "2000,2003,2010".
func parseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if from, to, ok := strings.Cut(s, "-"); ok {
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		b, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		if b < a {
			return nil, fmt.Errorf("year range %q ends before it starts", s)
		}
		return services.YearRange(a, b), nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		y, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", p)
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no years given")
	}
	return years, nil
}
