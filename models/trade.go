package models

// TradeRecord is one row of a yearly trade-flow facet.
// Source and Target are numeric country codes; Product is the 6-digit HS code.
// Value is in thousands of current USD, Quantity in metric tons.
type TradeRecord struct {
	Year     int
	Source   int
	Target   int
	Product  string
	Value    float64
	Quantity float64
}

// RawTradeRow holds the unparsed cells of a facet row, straight from the CSV.
type RawTradeRow struct {
	Line     int
	Year     string
	Source   string
	Target   string
	Product  string
	Value    string
	Quantity string
}

// Country is one entry of the country reference table.
type Country struct {
	Code int
	Abbr string
	Name string
	ISO2 string
	ISO3 string
}

// Product is one entry of the product reference table.
type Product struct {
	Code        string
	Description string
}

// Link is an aggregated directed trade relationship.
// Source and Target hold ISO-3 codes once a link leaves the extractor.
type Link struct {
	Source   string
	Target   string
	Product  string
	Value    float64
	Quantity float64
	Year     int
}

// LinkTable is a set of links plus the column layout they are written with:
// i, j, v, then k, q when HasProduct, then year when HasYear.
type LinkTable struct {
	Links      []Link
	HasProduct bool
	HasYear    bool
}

// Columns returns the header row matching the table layout.
func (t *LinkTable) Columns() []string {
	cols := []string{"i", "j", "v"}
	if t.HasProduct {
		cols = append(cols, "k", "q")
	}
	if t.HasYear {
		cols = append(cols, "year")
	}
	return cols
}

// Len returns the number of rows.
func (t *LinkTable) Len() int {
	return len(t.Links)
}

// TotalValue sums v over all rows.
func (t *LinkTable) TotalValue() float64 {
	var total float64
	for _, l := range t.Links {
		total += l.Value
	}
	return total
}

// PairValue is a (source, target) pair and its summed value.
type PairValue struct {
	Source string
	Target string
	Value  float64
}

// LinkSummary holds headline figures computed over an extracted table.
type LinkSummary struct {
	Rows         int
	Entities     int
	TotalValue   float64
	ZeroRows     int
	TopPairs     []PairValue
	ValueByYear  map[int]float64
	ProductCount int
}
