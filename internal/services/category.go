// internal/services/category.go
package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CategoryCatalog maps free-text categories typed into the wizard onto the
// directory's canonical category names.
type CategoryCatalog struct {
	canonical map[string]string
}

var defaultCategories = map[string][]string{
	"Bakery":                {"bakery", "panaderia", "pasteleria", "pastry", "reposteria"},
	"Restaurant":            {"restaurant", "restaurante", "fonda", "comida", "cocina economica", "taqueria", "tacos"},
	"Cafe":                  {"cafe", "cafeteria", "coffee", "coffee shop"},
	"Grocery":               {"grocery", "abarrotes", "tienda", "miscelanea", "minisuper"},
	"Pharmacy":              {"pharmacy", "farmacia", "drugstore"},
	"Hardware":              {"hardware", "ferreteria", "tlapaleria"},
	"Beauty":                {"beauty", "estetica", "salon de belleza", "barberia", "barber", "peluqueria"},
	"Auto Repair":           {"auto repair", "taller mecanico", "mecanico", "mechanic", "vulcanizadora"},
	"Health":                {"health", "consultorio", "clinica", "clinic", "dentista", "dentist"},
	"Laundry":               {"laundry", "lavanderia", "tintoreria"},
	"Tortilla Shop":         {"tortilleria", "tortillas"},
	"Stationery":            {"stationery", "papeleria"},
	"Professional Services": {"professional services", "servicios profesionales", "contador", "abogado"},
}

// NewCategoryCatalog builds a catalog from canonical name to aliases. A nil map
// yields the built-in catalog.
func NewCategoryCatalog(categories map[string][]string) *CategoryCatalog {
	if categories == nil {
		categories = defaultCategories
	}
	c := &CategoryCatalog{canonical: make(map[string]string)}
	for name, aliases := range categories {
		c.canonical[foldCategory(name)] = name
		for _, alias := range aliases {
			c.canonical[foldCategory(alias)] = name
		}
	}
	return c
}

// Canonicalize returns the canonical name for raw. Unknown categories are kept
// with collapsed whitespace so staff can still review them.
func (c *CategoryCatalog) Canonicalize(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return ""
	}
	if name, ok := c.canonical[foldCategory(cleaned)]; ok {
		return name
	}
	return cleaned
}

func foldCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
