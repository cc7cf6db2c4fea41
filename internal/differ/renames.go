package differ

import "github.com/zxc8027/cnp-xml-fields-generator/internal/names"

// RenameTable maps legacy entity spellings onto their canonical names.
// Lookups are case-insensitive.
type RenameTable struct {
	canonical map[string]string
}

// NewRenameTable builds a table from legacy -> canonical pairs.
func NewRenameTable(pairs map[string]string) RenameTable {
	t := RenameTable{canonical: make(map[string]string, len(pairs))}
	for legacy, canonical := range pairs {
		t.canonical[names.Key(legacy)] = canonical
	}
	return t
}

// DefaultRenames returns the product-family rebrand table.
func DefaultRenames() map[string]string {
	return map[string]string{
		"litleInternalRecurringRequestType": "cnpInternalRecurringRequestType",
		"litleRequest":                      "cnpRequest",
		"litleResponse":                     "cnpResponse",
		"litleOnlineRequest":                "cnpOnlineRequest",
		"litleOnlineResponse":               "cnpOnlineResponse",
	}
}

// Canonical returns the canonical spelling of name, or name itself.
func (t RenameTable) Canonical(name string) string {
	if c, ok := t.canonical[names.Key(name)]; ok {
		return c
	}
	return name
}

// Len returns the number of legacy spellings.
func (t RenameTable) Len() int {
	return len(t.canonical)
}
