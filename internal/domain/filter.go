package domain

import "time"

// DateRange keeps records whose date field falls within [From, To],
// compared as calendar dates. A nil bound is open.
type DateRange struct {
	Field string     `json:"field"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// Membership keeps records whose text field is one of Values. An empty
// Values slice keeps nothing, matching "nothing selected = nothing shown".
type Membership struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// Search keeps records whose text field contains Term, ignoring case.
// A blank Term disables the predicate.
type Search struct {
	Field string `json:"field"`
	Term  string `json:"term"`
}

// Flag keeps records whose boolean field equals Want.
type Flag struct {
	Field string `json:"field"`
	Want  bool   `json:"want"`
}

// FilterSpec is the conjunction of all predicates applied to one dataset.
// The zero value keeps every record.
type FilterSpec struct {
	Date     *DateRange   `json:"date,omitempty"`
	Members  []Membership `json:"members,omitempty"`
	Searches []Search     `json:"searches,omitempty"`
	Flags    []Flag       `json:"flags,omitempty"`
}

// IsEmpty reports whether the spec has no predicates at all.
func (f FilterSpec) IsEmpty() bool {
	return f.Date == nil && len(f.Members) == 0 && len(f.Searches) == 0 && len(f.Flags) == 0
}

// WithMember returns a copy of the spec with an extra membership predicate.
func (f FilterSpec) WithMember(field string, values []string) FilterSpec {
	out := f
	out.Members = append(append([]Membership(nil), f.Members...), Membership{Field: field, Values: values})
	return out
}

// WithSearch returns a copy of the spec with an extra substring predicate.
func (f FilterSpec) WithSearch(field, term string) FilterSpec {
	out := f
	out.Searches = append(append([]Search(nil), f.Searches...), Search{Field: field, Term: term})
	return out
}

// WithFlag returns a copy of the spec with an extra boolean predicate.
func (f FilterSpec) WithFlag(field string, want bool) FilterSpec {
	out := f
	out.Flags = append(append([]Flag(nil), f.Flags...), Flag{Field: field, Want: want})
	return out
}

// WithDate returns a copy of the spec restricted to a date range.
func (f FilterSpec) WithDate(field string, from, to *time.Time) FilterSpec {
	out := f
	out.Date = &DateRange{Field: field, From: from, To: to}
	return out
}

// Selection is an optional multi-select value from a request. Set is false
// when the caller did not send the parameter at all.
type Selection struct {
	Set    bool     `json:"set"`
	Values []string `json:"values"`
}

// All is a selection that was not provided.
var All = Selection{}

// Select builds a provided selection.
func Select(values ...string) Selection {
	return Selection{Set: true, Values: values}
}

// Period is an optional inclusive calendar range.
type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// IsZero reports whether neither bound is set.
func (p Period) IsZero() bool {
	return p.From == nil && p.To == nil
}

// PurchasesFilter drives the purchases dashboard. Products with no values
// selected means every product.
type PurchasesFilter struct {
	Period    Period    `json:"period"`
	Suppliers Selection `json:"suppliers"`
	Products  Selection `json:"products"`
}

// StockFilter drives the stock dashboard.
type StockFilter struct {
	Category     string `json:"category"`
	Search       string `json:"search"`
	OnlyBelowMin bool   `json:"only_below_min"`
}

// SalesFilter drives the sales dashboard.
type SalesFilter struct {
	Period   Period    `json:"period"`
	Stores   Selection `json:"stores"`
	Products Selection `json:"products"`
}

// ConsolidatedFilter drives the consolidated 360° dashboard. Product selects
// the product shown in the 360° panel; empty means the first consolidated row.
type ConsolidatedFilter struct {
	Period     Period    `json:"period"`
	Products   Selection `json:"products"`
	Categories Selection `json:"categories"`
	Stores     Selection `json:"stores"`
	Product    string    `json:"product"`
}
