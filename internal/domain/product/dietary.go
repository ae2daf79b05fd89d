package product

import "fmt"

// Dietary flag names as they appear in query strings and the stored document.
const (
	DietaryOrganic    = "organic"
	DietaryGlutenFree = "glutenFree"
	DietaryVegan      = "vegan"
	DietaryDairyFree  = "dairyFree"
	DietaryNutFree    = "nutFree"
	DietaryKosher     = "kosher"
	DietaryHalal      = "halal"
)

var dietaryNames = []string{
	DietaryOrganic, DietaryGlutenFree, DietaryVegan, DietaryDairyFree,
	DietaryNutFree, DietaryKosher, DietaryHalal,
}

// Dietary holds the dietary and production flags of a product.
type Dietary struct {
	Organic    bool
	GlutenFree bool
	Vegan      bool
	DairyFree  bool
	NutFree    bool
	Kosher     bool
	Halal      bool
}

// Flags returns the names of the set flags in canonical order.
func (d Dietary) Flags() []string {
	set := [...]bool{d.Organic, d.GlutenFree, d.Vegan, d.DairyFree, d.NutFree, d.Kosher, d.Halal}
	var out []string
	for i, on := range set {
		if on {
			out = append(out, dietaryNames[i])
		}
	}
	return out
}

// DietaryFromFlags builds Dietary from flag names. Unknown names are an error.
func DietaryFromFlags(flags []string) (Dietary, error) {
	var d Dietary
	for _, f := range flags {
		switch f {
		case DietaryOrganic:
			d.Organic = true
		case DietaryGlutenFree:
			d.GlutenFree = true
		case DietaryVegan:
			d.Vegan = true
		case DietaryDairyFree:
			d.DairyFree = true
		case DietaryNutFree:
			d.NutFree = true
		case DietaryKosher:
			d.Kosher = true
		case DietaryHalal:
			d.Halal = true
		default:
			return Dietary{}, fmt.Errorf("unknown dietary flag %q", f)
		}
	}
	return d, nil
}

// IsDietaryFlag reports whether name is a known dietary flag.
func IsDietaryFlag(name string) bool {
	for _, n := range dietaryNames {
		if n == name {
			return true
		}
	}
	return false
}
