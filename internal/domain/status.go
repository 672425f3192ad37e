package domain

import "strings"

// Kind identifies which of the three datasets a record set belongs to.
type Kind string

const (
	KindPurchases Kind = "purchases"
	KindStock     Kind = "stock"
	KindSales     Kind = "sales"
)

var kindLabels = map[Kind]string{
	KindPurchases: "Purchases",
	KindStock:     "Stock",
	KindSales:     "Sales",
}

var kindAliases = map[string]Kind{
	"purchases": KindPurchases,
	"purchase":  KindPurchases,
	"compras":   KindPurchases,
	"stock":     KindStock,
	"inventory": KindStock,
	"estoque":   KindStock,
	"sales":     KindSales,
	"sale":      KindSales,
	"vendas":    KindSales,
}

// Kinds lists every dataset kind in display order.
func Kinds() []Kind {
	return []Kind{KindStock, KindSales, KindPurchases}
}

// Label returns a human-readable label for the kind.
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}

	return "Unknown"
}

// ParseKind returns the kind for a given name (case-insensitive).
func ParseKind(name string) (Kind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]

	return kind, ok
}
