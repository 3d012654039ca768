package services

import (
	"math"
	"strconv"
	"strings"

	"tradenet/models"
	"tradenet/reference"
	"tradenet/utils"
)

// Cleaner turns raw facet rows into typed trade records.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses raw rows. Rows with an unparseable country, product or value
// are dropped; a missing quantity becomes 0. A blank year takes fallbackYear.
func (c *Cleaner) Clean(raw []models.RawTradeRow, fallbackYear int) []models.TradeRecord {
	result := make([]models.TradeRecord, 0, len(raw))
	missingQty := 0

	for _, r := range raw {
		rec, ok := c.parseRow(r, fallbackYear)
		if !ok {
			continue
		}
		if !hasNumber(r.Quantity) {
			missingQty++
		}
		result = append(result, rec)
	}

	if dropped := len(raw) - len(result); dropped > 0 {
		c.logger.Warn("[cleaner] Cleaned %d → %d rows (dropped %d)", len(raw), len(result), dropped)
	}
	if missingQty > 0 {
		c.logger.Debug("[cleaner] %d rows without quantity, set to 0", missingQty)
	}
	return result
}

func (c *Cleaner) parseRow(r models.RawTradeRow, fallbackYear int) (models.TradeRecord, bool) {
	year := fallbackYear
	if s := strings.TrimSpace(r.Year); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			c.logger.Warn("[cleaner] line %d: bad year %q", r.Line, r.Year)
			return models.TradeRecord{}, false
		}
		year = y
	}

	source, err := strconv.Atoi(strings.TrimSpace(r.Source))
	if err != nil {
		c.logger.Warn("[cleaner] line %d: bad source country %q", r.Line, r.Source)
		return models.TradeRecord{}, false
	}
	target, err := strconv.Atoi(strings.TrimSpace(r.Target))
	if err != nil {
		c.logger.Warn("[cleaner] line %d: bad target country %q", r.Line, r.Target)
		return models.TradeRecord{}, false
	}
	product, err := reference.MakeProductCode(r.Product)
	if err != nil {
		c.logger.Warn("[cleaner] line %d: %v", r.Line, err)
		return models.TradeRecord{}, false
	}
	value, ok := parseAmount(r.Value)
	if !ok {
		c.logger.Warn("[cleaner] line %d: bad value %q", r.Line, r.Value)
		return models.TradeRecord{}, false
	}
	quantity, _ := parseAmount(r.Quantity)

	return models.TradeRecord{
		Year:     year,
		Source:   source,
		Target:   target,
		Product:  product,
		Value:    value,
		Quantity: quantity,
	}, true
}

// parseAmount reads a finite float; "NA", "NaN" and blanks report false.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "NA") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func hasNumber(raw string) bool {
	_, ok := parseAmount(raw)
	return ok
}
