package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// parseSelection reads a multi-select parameter. Both styles are supported:
//
//	?stores=A&stores=B
//	?stores=A,B
//
// An absent parameter means every value. A present but empty one selects
// nothing.
func parseSelection(c *gin.Context, param string) domain.Selection {
	raw, ok := c.GetQueryArray(param)
	if !ok {
		return domain.All
	}

	values := make([]string, 0, len(raw))
	seen := make(map[string]struct{})
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			values = append(values, part)
		}
	}
	return domain.Select(values...)
}

// parsePeriod reads from and to as YYYY-MM-DD.
func parsePeriod(c *gin.Context) (domain.Period, error) {
	var p domain.Period
	for _, b := range []struct {
		param string
		dst   **time.Time
	}{
		{"from", &p.From},
		{"to", &p.To},
	} {
		value := strings.TrimSpace(c.Query(b.param))
		if value == "" {
			continue
		}
		t, err := time.Parse(domain.DateLayout, value)
		if err != nil {
			return p, badRequest(fmt.Errorf("%s must be YYYY-MM-DD: %q", b.param, value))
		}
		*b.dst = &t
	}
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return p, badRequest(fmt.Errorf("to %s is before from %s", p.To.Format(domain.DateLayout), p.From.Format(domain.DateLayout)))
	}
	return p, nil
}

func parseBool(c *gin.Context, param string) (bool, error) {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, badRequest(fmt.Errorf("%s must be a boolean: %q", param, value))
	}
	return b, nil
}

// parsePositiveInt returns def when the parameter is absent.
func parsePositiveInt(c *gin.Context, param string, def int) (int, error) {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, badRequest(fmt.Errorf("%s must be a positive integer: %q", param, value))
	}
	return n, nil
}

func parsePurchasesFilter(c *gin.Context) (domain.PurchasesFilter, error) {
	period, err := parsePeriod(c)
	if err != nil {
		return domain.PurchasesFilter{}, err
	}
	return domain.PurchasesFilter{
		Period:    period,
		Suppliers: parseSelection(c, "suppliers"),
		Products:  parseSelection(c, "products"),
	}, nil
}

func parseStockFilter(c *gin.Context) (domain.StockFilter, error) {
	belowMin, err := parseBool(c, "below_min")
	if err != nil {
		return domain.StockFilter{}, err
	}
	return domain.StockFilter{
		Category:     c.DefaultQuery("category", "all"),
		Search:       c.Query("search"),
		OnlyBelowMin: belowMin,
	}, nil
}

func parseSalesFilter(c *gin.Context) (domain.SalesFilter, error) {
	period, err := parsePeriod(c)
	if err != nil {
		return domain.SalesFilter{}, err
	}
	return domain.SalesFilter{
		Period:   period,
		Stores:   parseSelection(c, "stores"),
		Products: parseSelection(c, "products"),
	}, nil
}

func parseConsolidatedFilter(c *gin.Context) (domain.ConsolidatedFilter, error) {
	period, err := parsePeriod(c)
	if err != nil {
		return domain.ConsolidatedFilter{}, err
	}
	return domain.ConsolidatedFilter{
		Period:     period,
		Products:   parseSelection(c, "products"),
		Categories: parseSelection(c, "categories"),
		Stores:     parseSelection(c, "stores"),
		Product:    strings.TrimSpace(c.Query("product")),
	}, nil
}
