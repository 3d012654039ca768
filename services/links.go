package services

import (
	"sort"
	"strconv"
	"strings"

	"tradenet/models"
	"tradenet/reference"
	"tradenet/utils"
)

// FacetSource loads a year's facet.
type FacetSource interface {
	Load(year int) (*Facet, error)
}

// CountryResolver resolves numeric or ISO-3 country codes.
type CountryResolver interface {
	QueryCountry(code string) (models.Country, bool)
	QueryCountryCode(code int) (models.Country, bool)
}

// Query selects the rows of a facet. An empty slice means no filtering on
// that axis. A non-empty slice that resolves to nothing matches nothing.
type Query struct {
	Sources  []string
	Targets  []string
	Products []string
}

// One wraps a single code as a filter list; "" yields no filter.
func One(code string) []string {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	return []string{code}
}

// ExtractOptions controls how an extraction is compressed and balanced.
type ExtractOptions struct {
	CompressCountry bool
	CompressProduct bool
	Panel           bool
}

// DefaultExtractOptions compresses products and nothing else.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{CompressProduct: true}
}

func (o ExtractOptions) keepsProduct() bool {
	return !o.CompressCountry && !o.Panel
}

// Extractor builds bilateral link tables out of yearly facets.
type Extractor struct {
	facets    FacetSource
	countries CountryResolver
	cache     *FacetCache
	logger    *utils.Logger

	// Progress, when set, is called after each year of FetchLinksByYears.
	Progress func(done, total, year int)
}

// NewExtractor creates an Extractor that owns a fresh single-slot facet cache.
func NewExtractor(facets FacetSource, countries CountryResolver, logger *utils.Logger) *Extractor {
	return &Extractor{
		facets:    facets,
		countries: countries,
		cache:     NewFacetCache(),
		logger:    logger,
	}
}

// Cache exposes the facet cache, mainly for invalidation.
func (e *Extractor) Cache() *FacetCache {
	return e.cache
}

func (e *Extractor) facet(year int) (*Facet, error) {
	if f, ok := e.cache.Get(year); ok {
		e.logger.Debug("[links] facet %d served from cache", year)
		return f, nil
	}
	f, err := e.facets.Load(year)
	if err != nil {
		return nil, err
	}
	e.cache.Put(f)
	return f, nil
}

// CreateBilateralLink is the single-item form of CreateBilateralLinks.
// Empty arguments disable the matching filter.
func (e *Extractor) CreateBilateralLink(year int, source, target, product string, opts ExtractOptions) (*models.LinkTable, error) {
	return e.CreateBilateralLinks(year, Query{
		Sources:  One(source),
		Targets:  One(target),
		Products: One(product),
	}, opts)
}

// CreateBilateralLinks extracts the links of one year. Source and target codes
// come back as ISO-3 strings. The cached facet is never modified.
func (e *Extractor) CreateBilateralLinks(year int, q Query, opts ExtractOptions) (*models.LinkTable, error) {
	facet, err := e.facet(year)
	if err != nil {
		return nil, err
	}

	sources := e.resolveCountries(q.Sources)
	targets := e.resolveCountries(q.Targets)
	products := e.resolveProducts(q.Products)

	groups := make(map[int][]models.TradeRecord)
	for _, rec := range facet.Records {
		if sources != nil && !sources.Contains(rec.Source) {
			continue
		}
		if targets != nil && !targets.Contains(rec.Target) {
			continue
		}
		if products != nil && !products.Contains(rec.Product) {
			continue
		}
		groups[rec.Source] = append(groups[rec.Source], rec)
	}

	sourceCodes := make([]int, 0, len(groups))
	for code := range groups {
		sourceCodes = append(sourceCodes, code)
	}
	sort.Ints(sourceCodes)

	names := newISO3Namer(e.countries, e.logger)
	links := make([]models.Link, 0, len(facet.Records))
	for _, code := range sourceCodes {
		subset := groups[code]
		if opts.CompressProduct {
			subset = compressProducts(subset)
		}
		for _, rec := range subset {
			links = append(links, models.Link{
				Source:   names.name(rec.Source),
				Target:   names.name(rec.Target),
				Product:  rec.Product,
				Value:    rec.Value,
				Quantity: rec.Quantity,
			})
		}
	}

	table := &models.LinkTable{Links: links, HasProduct: true}
	if opts.CompressCountry {
		table.Links = compressCountries(table.Links)
		table.HasProduct = false
	}
	if opts.Panel {
		table.Links = BalancePanel(table.Links)
		table.HasProduct = false
	}

	e.logger.Debug("[links] %d: %d source countries, %d rows", year, len(sourceCodes), len(table.Links))
	return table, nil
}

// resolveCountries maps codes to numeric country codes, dropping the ones that
// do not resolve. nil means the axis is unfiltered.
func (e *Extractor) resolveCountries(codes []string) *utils.Set[int] {
	if len(codes) == 0 {
		return nil
	}
	set := utils.NewSet[int]()
	missed := 0
	for _, c := range codes {
		country, ok := e.countries.QueryCountry(c)
		if !ok {
			missed++
			continue
		}
		set.Add(country.Code)
	}
	if missed > 0 {
		e.logger.Warn("[links] %d of %d country codes did not resolve", missed, len(codes))
	}
	return set
}

func (e *Extractor) resolveProducts(codes []string) *utils.Set[string] {
	if len(codes) == 0 {
		return nil
	}
	set := utils.NewSet[string]()
	for _, c := range codes {
		code, err := reference.MakeProductCode(c)
		if err != nil {
			e.logger.Error("[links] invalid product code: %s", c)
			continue
		}
		set.Add(code)
	}
	return set
}

type pairKey struct {
	target  int
	product string
}

// compressProducts sums value and quantity by (target, product), sorted by key.
func compressProducts(records []models.TradeRecord) []models.TradeRecord {
	sums := make(map[pairKey]*models.TradeRecord)
	keys := make([]pairKey, 0)
	for _, rec := range records {
		k := pairKey{target: rec.Target, product: rec.Product}
		if agg, ok := sums[k]; ok {
			agg.Value += rec.Value
			agg.Quantity += rec.Quantity
			continue
		}
		r := rec
		sums[k] = &r
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		return keys[i].product < keys[j].product
	})

	out := make([]models.TradeRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, *sums[k])
	}
	return out
}

type countryPair struct {
	source string
	target string
}

// compressCountries collapses links to (source, target) pairs summing value.
func compressCountries(links []models.Link) []models.Link {
	sums := make(map[countryPair]float64)
	for _, l := range links {
		sums[countryPair{l.Source, l.Target}] += l.Value
	}

	out := make([]models.Link, 0, len(sums))
	for p, v := range sums {
		out = append(out, models.Link{Source: p.source, Target: p.target, Value: v})
	}
	sortLinks(out)
	return out
}

func sortLinks(links []models.Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].Source != links[j].Source {
			return links[i].Source < links[j].Source
		}
		return links[i].Target < links[j].Target
	})
}

// iso3Namer memoizes numeric → ISO-3 lookups for one extraction so that each
// code is looked up, and reported, once. Unknown codes are reported by the
// resolver itself.
type iso3Namer struct {
	countries CountryResolver
	logger    *utils.Logger
	names     map[int]string
}

func newISO3Namer(countries CountryResolver, logger *utils.Logger) *iso3Namer {
	return &iso3Namer{countries: countries, logger: logger, names: make(map[int]string)}
}

func (n *iso3Namer) name(code int) string {
	if s, ok := n.names[code]; ok {
		return s
	}
	s := strconv.Itoa(code)
	if c, ok := n.countries.QueryCountryCode(code); ok {
		if c.ISO3 != "" {
			s = c.ISO3
		} else {
			n.logger.Warn("[links] country %d has no ISO-3 code, keeping the numeric code", code)
		}
	}
	n.names[code] = s
	return s
}
