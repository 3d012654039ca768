package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tradenet/models"
	"tradenet/utils"
)

// ErrFacetNotFound means no file in the data directory carries the year token.
// It is a configuration error; callers are expected to stop.
var ErrFacetNotFound = errors.New("invalid year query for the current dataset")

// Facet is one year's full trade-flow table.
type Facet struct {
	Year    int
	Path    string
	Records []models.TradeRecord
}

// FacetLoader discovers and decodes yearly facet files.
type FacetLoader struct {
	dir     string
	token   string
	cleaner *Cleaner
	logger  *utils.Logger
}

// NewFacetLoader creates a loader over dir. token is a format with one %d verb
// for the year, such as "Y%d".
func NewFacetLoader(dir, token string, logger *utils.Logger) *FacetLoader {
	if !strings.Contains(token, "%d") {
		token += "%d"
	}
	return &FacetLoader{
		dir:     dir,
		token:   token,
		cleaner: NewCleaner(logger),
		logger:  logger,
	}
}

// Find returns the path of the file whose name embeds the year token.
func (l *FacetLoader) Find(year int) (string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return "", fmt.Errorf("facet: read directory %s: %w", l.dir, err)
	}

	needle := fmt.Sprintf(l.token, year)
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), needle) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no file containing %q in %s", ErrFacetNotFound, needle, l.dir)
	}

	sort.Strings(matches)
	if len(matches) > 1 {
		l.logger.Warn("[facet] %d files match %q, using %s", len(matches), needle, matches[0])
	}
	return filepath.Join(l.dir, matches[0]), nil
}

// Load finds and decodes the facet for year.
func (l *FacetLoader) Load(year int) (*Facet, error) {
	path, err := l.Find(year)
	if err != nil {
		return nil, err
	}

	l.logger.Info("[facet] loading: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("facet: open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := readFacetRows(f)
	if err != nil {
		return nil, fmt.Errorf("facet: %s: %w", path, err)
	}

	return &Facet{
		Year:    year,
		Path:    path,
		Records: l.cleaner.Clean(raw, year),
	}, nil
}

// readFacetRows reads a t,i,j,k,v,q CSV. Columns are located by header name;
// t and q are optional.
func readFacetRows(r io.Reader) ([]models.RawTradeRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"i", "j", "k", "v"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	cell := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return rec[idx]
	}

	var rows []models.RawTradeRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, models.RawTradeRow{
			Line:     line,
			Year:     cell(rec, "t"),
			Source:   cell(rec, "i"),
			Target:   cell(rec, "j"),
			Product:  cell(rec, "k"),
			Value:    cell(rec, "v"),
			Quantity: cell(rec, "q"),
		})
	}
	return rows, nil
}

// FacetCache memoizes the most recently loaded facet. It holds one year at a
// time; storing a different year replaces the slot.
type FacetCache struct {
	facet  *Facet
	hits   int
	misses int
}

// NewFacetCache returns an empty cache.
func NewFacetCache() *FacetCache {
	return &FacetCache{}
}

// Get returns the cached facet when it is for year.
func (c *FacetCache) Get(year int) (*Facet, bool) {
	if c.facet != nil && c.facet.Year == year {
		c.hits++
		return c.facet, true
	}
	c.misses++
	return nil, false
}

// Put replaces the cached facet.
func (c *FacetCache) Put(f *Facet) {
	c.facet = f
}

// Invalidate empties the cache.
func (c *FacetCache) Invalidate() {
	c.facet = nil
}

// Year reports the cached year, if any.
func (c *FacetCache) Year() (int, bool) {
	if c.facet == nil {
		return 0, false
	}
	return c.facet.Year, true
}

// Stats returns hit and miss counts.
func (c *FacetCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
