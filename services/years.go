package services

import (
	"fmt"

	"tradenet/models"
)

// FetchLinksByYears runs CreateBilateralLinks for each year in order with the
// same filters and stacks the results, tagging every row with its year.
func (e *Extractor) FetchLinksByYears(years []int, q Query, opts ExtractOptions) (*models.LinkTable, error) {
	result := &models.LinkTable{HasProduct: opts.keepsProduct(), HasYear: true}

	for i, year := range years {
		e.logger.Info("[links] year %d (%d/%d)", year, i+1, len(years))

		created, err := e.CreateBilateralLinks(year, q, opts)
		if err != nil {
			return nil, fmt.Errorf("links for %d: %w", year, err)
		}
		for _, l := range created.Links {
			l.Year = year
			result.Links = append(result.Links, l)
		}

		if e.Progress != nil {
			e.Progress(i+1, len(years), year)
		}
	}

	e.logger.Info("[links] %d rows over %d years", len(result.Links), len(years))
	return result, nil
}

// YearRange returns the years from..to inclusive, ascending.
func YearRange(from, to int) []int {
	if to < from {
		return nil
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
