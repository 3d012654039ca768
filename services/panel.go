package services

import (
	"tradenet/models"
	"tradenet/utils"
)

// BalancePanel turns a sparse edge list into a dense bilateral matrix over
// every entity seen as a source or target. Values of repeated pairs are
// summed, absent pairs get 0, and self-pairs are left out, so n entities
// yield n*(n-1) rows sorted by (source, target).
func BalancePanel(links []models.Link) []models.Link {
	entities := utils.NewSet[string]()
	values := make(map[countryPair]float64, len(links))
	for _, l := range links {
		entities.Add(l.Source)
		entities.Add(l.Target)
		if l.Source == l.Target {
			continue
		}
		values[countryPair{l.Source, l.Target}] += l.Value
	}

	names := entities.Sorted()
	out := make([]models.Link, 0, len(names)*(len(names)-1))
	for _, i := range names {
		for _, j := range names {
			if i == j {
				continue
			}
			out = append(out, models.Link{Source: i, Target: j, Value: values[countryPair{i, j}]})
		}
	}
	return out
}
