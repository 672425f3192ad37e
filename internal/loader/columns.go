package loader

import "strings"

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// Accepted header spellings per field. The first entry is the canonical
// column name written by the export package.
var (
	dateColumns         = []string{"date", "data", "order_date", "sale_date", "purchase_date"}
	supplierColumns     = []string{"supplier", "fornecedor", "vendor"}
	productNameColumns  = []string{"product_name", "product", "produto", "nome_produto", "item"}
	productIDColumns    = []string{"product_id", "sku", "id", "codigo"}
	categoryColumns     = []string{"category", "categoria"}
	storeColumns        = []string{"store", "loja", "shop", "branch"}
	quantityColumns     = []string{"quantity", "qty", "quantidade", "qtd", "units"}
	minStockColumns     = []string{"min_stock", "minimum_stock", "estoque_minimo", "min"}
	unitPriceColumns    = []string{"unit_price", "price", "preco", "preço", "preco_unitario"}
	unitCostColumns     = []string{"unit_cost", "cost", "custo", "custo_unitario", "hpp"}
	deliveryDaysColumns = []string{"delivery_days", "lead_time", "prazo_entrega", "prazo"}
	lastUpdateColumns   = []string{"last_update", "updated_at", "ultima_atualizacao"}
)

// table is a header row plus data rows, the common shape of CSV and
// spreadsheet input.
type table struct {
	header []string
	rows   [][]string
}

// col returns the index of the first header matching any of names, or -1.
func (t *table) col(names ...string) int {
	if len(names) == 0 {
		return -1
	}
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range t.header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
