package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ConversionSheet is the worksheet holding HS concordance pairs.
const ConversionSheet = "Conversion Tables"

// Concordance maps product codes between two HS revisions.
type Concordance struct {
	OriginYear int
	TargetYear int
	mapping    map[string]string
}

// ConcordanceFile returns the workbook name for a pair of revisions.
func ConcordanceFile(originYear, targetYear int) string {
	return fmt.Sprintf("hs%d_hs%d.xlsx", originYear, targetYear)
}

// LoadConcordance reads hs<origin>_hs<target>.xlsx from the data directory.
func (r *Registry) LoadConcordance(originYear, targetYear int) (*Concordance, error) {
	name := ConcordanceFile(originYear, targetYear)
	path := filepath.Join(r.dir, name)

	if _, err := os.Stat(path); err != nil {
		legacy := strings.TrimSuffix(path, ".xlsx") + ".xls"
		if _, lerr := os.Stat(legacy); lerr == nil {
			return nil, fmt.Errorf("%w: %s is a legacy .xls workbook, re-save it as %s", ErrMisconfigured, legacy, name)
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: HS mapping from %d to %d not found", ErrMisconfigured, originYear, targetYear)
		}
		return nil, fmt.Errorf("hs: stat %s: %w", path, err)
	}

	c, err := ReadConcordance(path)
	if err != nil {
		return nil, err
	}
	c.OriginYear, c.TargetYear = originYear, targetYear
	r.logger.Info("[reference] Loaded %d HS mappings from %s", c.Len(), name)
	return c, nil
}

// ReadConcordance parses a concordance workbook. The first row is a header;
// the first two columns are (origin, target); rows with a blank cell are skipped.
func ReadConcordance(path string) (*Concordance, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("hs: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := ConversionSheet
	rows, err := f.GetRows(sheet)
	if err != nil {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("hs: %s has no worksheets", path)
		}
		sheet = sheets[0]
		if rows, err = f.GetRows(sheet); err != nil {
			return nil, fmt.Errorf("hs: read sheet %q of %s: %w", sheet, path, err)
		}
	}

	c := &Concordance{mapping: make(map[string]string)}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		origin, target := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if origin == "" || target == "" {
			continue
		}
		from, err := MakeProductCode(origin)
		if err != nil {
			continue
		}
		to, err := MakeProductCode(target)
		if err != nil {
			to = target
		}
		if _, dup := c.mapping[from]; !dup {
			c.mapping[from] = to
		}
	}
	return c, nil
}

// Len returns the number of mapped origin codes.
func (c *Concordance) Len() int {
	return len(c.mapping)
}

// Map converts one normalized code, falling back to the code itself.
func (c *Concordance) Map(code string) string {
	if to, ok := c.mapping[code]; ok {
		return to
	}
	return code
}

// QueryHSCodeByYears converts codes from the origin revision to the target
// revision. Codes without a mapping come back normalized but unchanged.
func (r *Registry) QueryHSCodeByYears(originYear, targetYear int, codes []string) ([]string, error) {
	c, err := r.LoadConcordance(originYear, targetYear)
	if err != nil {
		return nil, err
	}
	normalized, err := MakeProductCodes(codes)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(normalized))
	for i, code := range normalized {
		out[i] = c.Map(code)
	}
	return out, nil
}
