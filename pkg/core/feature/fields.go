package feature

// Column names produced by the feature-store collaborator. Every column is
// optional; components resolve them through Lookup and tolerate absence.
const (
	Date = "date"

	Revenue           = "total_revenue"
	NetIncome         = "net_income"
	FreeCashFlow      = "free_cash_flow"
	OperatingMargin   = "operating_margin"
	NetMargin         = "net_margin"
	DebtToEquity      = "debt_to_equity"
	DebtToAssets      = "debt_to_assets"
	CurrentRatio      = "current_ratio"
	QuickRatio        = "quick_ratio"
	NetDebt           = "net_debt"
	SharesOutstanding = "ordinary_shares_number"
	RevenueCAGR3Y     = "revenue_cagr_3y"
	FCFCAGR3Y         = "fcf_cagr_3y"

	Close    = "close"
	AdjClose = "adj_close"
	Price    = "price"
)

// Aliases lists, per concept, the column names tried in priority order.
// The first name is the canonical one.
var Aliases = map[string][]string{
	Revenue:           {Revenue, "revenue", "operating_revenue"},
	NetIncome:         {NetIncome, "net_income_common_stockholders"},
	FreeCashFlow:      {FreeCashFlow, "fcf"},
	SharesOutstanding: {SharesOutstanding, "shares_outstanding", "diluted_average_shares"},
	NetDebt:           {NetDebt},
}

// PriceFields are the price-like columns read by the market analyzer,
// in priority order. ReturnFields excludes the quoted "price" field, which
// is a point value rather than a close series.
var (
	PriceFields  = []string{Close, AdjClose, Price}
	ReturnFields = []string{Close, AdjClose}
)

// Names returns the priority list for a concept, or the concept itself
// when no aliases are registered.
func Names(concept string) []string {
	if names, ok := Aliases[concept]; ok {
		return names
	}
	return []string{concept}
}
