// Package trails holds the pure trail-domain logic: the category table,
// Overpass query construction, result classification, and plain-text
// rendering. Nothing in this package performs I/O.
package trails

import "github.com/yogeswararao/trail-explorer/internal/domain"

// Category is one of the fixed trail-activity classifications used both for
// query filtering and result classification.
type Category string

const (
	CategoryHiking  Category = "hiking"
	CategoryBiking  Category = "biking"
	CategoryWalking Category = "walking"
)

// Title returns the display form of the category ("hiking" -> "Hiking").
func (c Category) Title() string {
	switch c {
	case CategoryHiking:
		return "Hiking"
	case CategoryBiking:
		return "Biking"
	case CategoryWalking:
		return "Walking"
	}
	return string(c)
}

// tagMapping maps a category onto the OSM tags that select it: route-relation
// values, way highway values, the access-mode tag that marks the way as open
// for the activity, and access values that exclude a way outright.
type tagMapping struct {
	Route         []string
	Highway       []string
	AccessMode    string // "foot" or "bicycle"
	AccessExclude []string
}

// categoryOrder fixes the iteration order of the category table. Generated
// queries and rendered counts follow this order so identical input always
// produces identical output.
var categoryOrder = []Category{CategoryHiking, CategoryBiking, CategoryWalking}

var categoryTable = map[Category]tagMapping{
	CategoryHiking: {
		Route:         []string{"hiking", "foot"},
		Highway:       []string{"footway", "path", "track", "bridleway", "steps"},
		AccessMode:    "foot",
		AccessExclude: []string{"private", "no"},
	},
	CategoryBiking: {
		Route:         []string{"bicycle", "mtb"},
		Highway:       []string{"cycleway", "path", "track"},
		AccessMode:    "bicycle",
		AccessExclude: []string{"private", "no"},
	},
	CategoryWalking: {
		Route:         []string{"walking", "foot"},
		Highway:       []string{"footway", "pedestrian", "path", "steps"},
		AccessMode:    "foot",
		AccessExclude: []string{"private", "no"},
	},
}

// Categories returns the full category set in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ValidateCategories is the single gatekeeper between user-facing free text
// and the query builder's precondition. A nil request means "all categories";
// unknown keys are silently dropped; an empty result after filtering fails
// with ErrNoValidCategories.
func ValidateCategories(requested []string) ([]Category, error) {
	if requested == nil {
		return Categories(), nil
	}
	valid := make([]Category, 0, len(requested))
	for _, r := range requested {
		c := Category(r)
		if _, known := categoryTable[c]; known {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoValidCategories
	}
	return valid, nil
}
