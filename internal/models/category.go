package models

import "fmt"

// Category is the fixed set of incident categories offered by the report form
type Category string

const (
	CategorySuspicious Category = "Suspicious Activity"
	CategoryTheft      Category = "Theft"
	CategoryVandalism  Category = "Vandalism"
	CategoryAssault    Category = "Assault"
	CategoryHazard     Category = "Hazard"
	CategoryOther      Category = "Other"
)

// Categories lists the categories in form order
var Categories = []Category{
	CategorySuspicious,
	CategoryTheft,
	CategoryVandalism,
	CategoryAssault,
	CategoryHazard,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Next returns the category following c in form order, wrapping around
func (c Category) Next() Category {
	for i, known := range Categories {
		if c == known {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return Categories[0]
}

// ParseCategory maps a case-sensitive label to a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown incident category %q", s)
	}
	return c, nil
}
