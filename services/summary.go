package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"tradenet/models"
	"tradenet/utils"
)

// SummaryService reports headline figures for an extracted table.
type SummaryService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return NewSummaryServiceTo(logger, os.Stdout)
}

// NewSummaryServiceTo prints reports to w.
func NewSummaryServiceTo(logger *utils.Logger, w io.Writer) *SummaryService {
	return &SummaryService{logger: logger, out: w}
}

// Generate computes the summary. Top pairs are ranked by summed value over all
// years and products.
func (s *SummaryService) Generate(table *models.LinkTable) *models.LinkSummary {
	report := &models.LinkSummary{ValueByYear: make(map[int]float64)}
	if table == nil || len(table.Links) == 0 {
		return report
	}

	report.Rows = len(table.Links)

	entities := utils.NewSet[string]()
	products := utils.NewSet[string]()
	pairs := make(map[countryPair]float64)

	for _, l := range table.Links {
		entities.Add(l.Source)
		entities.Add(l.Target)
		if l.Product != "" {
			products.Add(l.Product)
		}
		if l.Value == 0 {
			report.ZeroRows++
		}
		report.TotalValue += l.Value
		pairs[countryPair{l.Source, l.Target}] += l.Value
		if table.HasYear {
			report.ValueByYear[l.Year] += l.Value
		}
	}
	report.Entities = entities.Size()
	report.ProductCount = products.Size()

	ranked := make([]models.PairValue, 0, len(pairs))
	for p, v := range pairs {
		ranked = append(ranked, models.PairValue{Source: p.source, Target: p.target, Value: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		if ranked[i].Source != ranked[j].Source {
			return ranked[i].Source < ranked[j].Source
		}
		return ranked[i].Target < ranked[j].Target
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopPairs = ranked

	s.logger.Debug("[summary] %d rows, %d countries, total %.3f", report.Rows, report.Entities, report.TotalValue)
	return report
}

func (s *SummaryService) Print(r *models.LinkSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  BILATERAL TRADE LINKS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Rows              : \033[1m%d\033[0m\n", r.Rows)
	fmt.Fprintf(w, "  Countries         : \033[1m%d\033[0m\n", r.Entities)
	if r.ProductCount > 0 {
		fmt.Fprintf(w, "  Products          : \033[1m%d\033[0m\n", r.ProductCount)
	}
	fmt.Fprintf(w, "  Zero-filled rows  : \033[1m%d\033[0m\n", r.ZeroRows)
	fmt.Fprintf(w, "  Total value (k$)  : \033[1;32m%.3f\033[0m\n", r.TotalValue)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top 5 Country Pairs\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopPairs) == 0 {
		fmt.Fprintf(w, "  No links found\n")
	} else {
		for i, p := range r.TopPairs {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-5s → %-5s \033[1;32m%14.3f\033[0m\n", i+1, p.Source, p.Target, p.Value)
		}
	}
	fmt.Fprintln(w)

	if len(r.ValueByYear) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Value by Year\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		years := make([]int, 0, len(r.ValueByYear))
		for y := range r.ValueByYear {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			fmt.Fprintf(w, "  %d  %16.3f\n", y, r.ValueByYear[y])
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}
