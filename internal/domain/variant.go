package domain

import "fmt"

// Stone is a piece of an initial layout.
type Stone struct {
	Pos
	Cell Cell
}

// Variant fixes the grid size and starting layout.
type Variant struct {
	Name   string
	Size   int
	Layout []Stone
}

var centerLayout = []Stone{
	{Pos{3, 3}, White},
	{Pos{3, 4}, Black},
	{Pos{4, 3}, Black},
	{Pos{4, 4}, White},
}

var (
	// CellVariant places pieces on the 8x8 cell centers.
	CellVariant = Variant{Name: "cell", Size: 8, Layout: centerLayout}
	// IntersectionVariant places pieces on the 9x9 crossings of the same
	// grid, starting on the four points around the middle cell.
	IntersectionVariant = Variant{Name: "intersection", Size: 9, Layout: centerLayout}
)

// Variants lists the supported variants.
var Variants = []Variant{CellVariant, IntersectionVariant}

// VariantByName resolves a variant name.
func VariantByName(name string) (Variant, error) {
	for _, v := range Variants {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown variant %q", name)
}
