package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"tradenet/models"
	"tradenet/utils"
)

// ErrMisconfigured is returned when a reference file the process relies on is
// missing. It signals a deployment problem, not bad data.
var ErrMisconfigured = errors.New("mis-configured")

// Options locates the reference tables inside the data directory.
type Options struct {
	DataDir              string
	CountryCodesFile     string
	CountryCodesEncoding string
	ProductCodesFile     string
}

// Registry holds the country and product tables. It is immutable after Load.
type Registry struct {
	dir       string
	logger    *utils.Logger
	countries []models.Country
	byCode    map[int]int
	byISO3    map[string]int
	products  map[string]models.Product
}

// Load reads the country and product tables from the data directory.
func Load(opts Options, logger *utils.Logger) (*Registry, error) {
	entries, err := os.ReadDir(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: data directory %s: %v", ErrMisconfigured, opts.DataDir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty directory %s", ErrMisconfigured, opts.DataDir)
	}

	r := &Registry{
		dir:      opts.DataDir,
		logger:   logger,
		byCode:   make(map[int]int),
		byISO3:   make(map[string]int),
		products: make(map[string]models.Product),
	}

	if err := r.loadCountries(filepath.Join(opts.DataDir, opts.CountryCodesFile), opts.CountryCodesEncoding); err != nil {
		return nil, err
	}
	if err := r.loadProducts(filepath.Join(opts.DataDir, opts.ProductCodesFile)); err != nil {
		return nil, err
	}

	logger.Info("[reference] Loaded %d countries and %d products from %s",
		len(r.countries), len(r.products), opts.DataDir)
	return r, nil
}

// NewRegistry builds a Registry from in-memory tables.
func NewRegistry(dir string, countries []models.Country, products []models.Product, logger *utils.Logger) *Registry {
	r := &Registry{
		dir:      dir,
		logger:   logger,
		byCode:   make(map[int]int),
		byISO3:   make(map[string]int),
		products: make(map[string]models.Product),
	}
	for _, c := range countries {
		r.addCountry(c)
	}
	for _, p := range products {
		if _, ok := r.products[p.Code]; !ok {
			r.products[p.Code] = p
		}
	}
	return r
}

// DataDir returns the directory the registry was loaded from.
func (r *Registry) DataDir() string {
	return r.dir
}

// Countries returns a copy of the country table in file order.
func (r *Registry) Countries() []models.Country {
	out := make([]models.Country, len(r.countries))
	copy(out, r.countries)
	return out
}

// QueryCountry looks up a numeric country code ("4") or an ISO-3 string ("AFG").
// A miss is logged and reported through the boolean.
func (r *Registry) QueryCountry(code string) (models.Country, bool) {
	s := strings.TrimSpace(code)
	if n, err := strconv.Atoi(s); err == nil {
		return r.QueryCountryCode(n)
	}

	idx, ok := r.byISO3[strings.ToUpper(s)]
	if !ok {
		r.logger.Error("[reference] invalid country code: %s", code)
		return models.Country{}, false
	}
	return r.countries[idx], true
}

// QueryCountryCode looks up a numeric country code.
func (r *Registry) QueryCountryCode(code int) (models.Country, bool) {
	idx, ok := r.byCode[code]
	if !ok {
		r.logger.Error("[reference] invalid country code: %d", code)
		return models.Country{}, false
	}
	return r.countries[idx], true
}

// QueryProduct normalizes code to 6 digits and looks it up.
func (r *Registry) QueryProduct(code string) (models.Product, bool) {
	normalized, err := MakeProductCode(code)
	if err != nil {
		r.logger.Error("[reference] invalid product code: %s", code)
		return models.Product{}, false
	}
	p, ok := r.products[normalized]
	if !ok {
		r.logger.Error("[reference] invalid product code: %s", code)
		return models.Product{}, false
	}
	return p, true
}

func (r *Registry) addCountry(c models.Country) {
	r.countries = append(r.countries, c)
	idx := len(r.countries) - 1
	if _, ok := r.byCode[c.Code]; !ok {
		r.byCode[c.Code] = idx
	}
	if c.ISO3 != "" {
		key := strings.ToUpper(c.ISO3)
		if _, ok := r.byISO3[key]; !ok {
			r.byISO3[key] = idx
		}
	}
}

// loadCountries reads code, abbreviation, name, iso2, iso3 in column order.
func (r *Registry) loadCountries(path, encoding string) error {
	rows, err := readTable(path, encoding)
	if err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) < 5 {
			r.logger.Warn("[reference] %s line %d: expected 5 columns, got %d", filepath.Base(path), i+2, len(row))
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			r.logger.Warn("[reference] %s line %d: bad country code %q", filepath.Base(path), i+2, row[0])
			continue
		}
		r.addCountry(models.Country{
			Code: code,
			Abbr: strings.TrimSpace(row[1]),
			Name: strings.TrimSpace(row[2]),
			ISO2: strings.TrimSpace(row[3]),
			ISO3: strings.TrimSpace(row[4]),
		})
	}
	return nil
}

func (r *Registry) loadProducts(path string) error {
	rows, err := readTable(path, "")
	if err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) < 1 {
			continue
		}
		code, err := MakeProductCode(row[0])
		if err != nil {
			r.logger.Warn("[reference] %s line %d: %v", filepath.Base(path), i+2, err)
			continue
		}
		if _, dup := r.products[code]; dup {
			continue
		}
		p := models.Product{Code: code}
		if len(row) > 1 {
			p.Description = strings.TrimSpace(row[1])
		}
		r.products[code] = p
	}
	return nil
}

// readTable reads a headed CSV file and returns the data rows.
func readTable(path, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not existed", ErrMisconfigured, path)
		}
		return nil, fmt.Errorf("reference: open %s: %w", path, err)
	}
	defer f.Close()

	var src io.Reader = f
	if enc := strings.ToLower(strings.TrimSpace(encoding)); enc != "" && enc != "utf-8" && enc != "utf8" {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("reference: unknown encoding %q: %w", encoding, err)
		}
		src = e.NewDecoder().Reader(f)
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reference: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reference: %s has no header", path)
	}
	return records[1:], nil
}
