package ledger

import (
	"fmt"
	"strings"
)

// Category is a top-level spending or income category with its ordered
// subcategories.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Taxonomy is the category tree offered to the user and to the receipt
// model. Categories on transactions stay free text; the taxonomy only
// canonicalizes spelling.
type Taxonomy struct {
	categories    []Category
	byName        map[string]int
	subcategories map[string]map[string]string // normalized cat -> normalized sub -> canonical sub
}

// DefaultTaxonomy is the household taxonomy shipped with the app.
var DefaultTaxonomy = NewTaxonomy([]Category{
	{Name: "Vivienda y Facturas", Subcategories: []string{"Renta", "UTE", "OSE", "Servicio móvil", "WIFI", "Gas", "Otras facturas"}},
	{Name: "Alimentación", Subcategories: []string{"Cárnicos", "Verduras", "Fruta", "Arroz", "Azúcar", "Café", "Harina", "Huevos", "Leche", "Otros comestibles"}},
	{Name: "Higiene", Subcategories: []string{"Champú", "Jabón", "Otros limpieza"}},
	{Name: "Ingresos", Subcategories: []string{"Sueldo", "Venta", "Intereses", "Otros ingresos"}},
	{Name: "Otros", Subcategories: []string{"General", "Transporte", "Ocio"}},
})

// NewTaxonomy builds lookup tables for categories.
func NewTaxonomy(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories:    categories,
		byName:        make(map[string]int),
		subcategories: make(map[string]map[string]string),
	}
	for i, c := range categories {
		norm := normalizeCategory(c.Name)
		t.byName[norm] = i
		subs := make(map[string]string, len(c.Subcategories))
		for _, s := range c.Subcategories {
			subs[normalizeCategory(s)] = s
		}
		t.subcategories[norm] = subs
	}
	return t
}

// Categories returns the taxonomy in display order.
func (t *Taxonomy) Categories() []Category {
	return append([]Category{}, t.categories...)
}

// Canonical maps category and subcategory to their canonical spelling,
// ignoring case and surrounding spaces. Unknown values come back trimmed
// but otherwise unchanged.
func (t *Taxonomy) Canonical(category, subcategory string) (string, string) {
	category = strings.TrimSpace(category)
	subcategory = strings.TrimSpace(subcategory)

	normCat := normalizeCategory(category)
	i, ok := t.byName[normCat]
	if !ok {
		return category, subcategory
	}
	category = t.categories[i].Name
	if canonical, ok := t.subcategories[normCat][normalizeCategory(subcategory)]; ok {
		subcategory = canonical
	}
	return category, subcategory
}

// Validate checks that category and subcategory belong to the taxonomy.
func (t *Taxonomy) Validate(category, subcategory string) error {
	normCat := normalizeCategory(category)
	if _, ok := t.byName[normCat]; !ok {
		return fmt.Errorf("invalid category: %q", category)
	}
	if _, ok := t.subcategories[normCat][normalizeCategory(subcategory)]; !ok {
		return fmt.Errorf("invalid subcategory %q for category %q", subcategory, category)
	}
	return nil
}

// DefaultSubcategory returns the first subcategory of category, or "" when
// the category is unknown.
func (t *Taxonomy) DefaultSubcategory(category string) string {
	i, ok := t.byName[normalizeCategory(category)]
	if !ok || len(t.categories[i].Subcategories) == 0 {
		return ""
	}
	return t.categories[i].Subcategories[0]
}

// Prompt lists the taxonomy for model consumption.
func (t *Taxonomy) Prompt() string {
	var b strings.Builder
	b.WriteString("Usá SOLO estas categorías y subcategorías:\n\n")
	for _, c := range t.categories {
		b.WriteString(c.Name + ":\n")
		for _, s := range c.Subcategories {
			b.WriteString("  - " + s + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeCategory converts to uppercase and trims whitespace for
// case-insensitive comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
