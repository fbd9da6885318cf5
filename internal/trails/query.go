package trails

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

// QueryDocument is an Overpass QL payload. Immutable once built.
type QueryDocument string

func (q QueryDocument) String() string { return string(q) }

// maxQuerySize is the [maxsize:..] hint sent with every query (1 GiB).
const maxQuerySize = 1073741824

// DefaultQueryTimeoutSec is the server-side processing bound requested in the
// query header when the builder is constructed with a non-positive timeout.
const DefaultQueryTimeoutSec = 30

// AreaStrategy selects how a named area is resolved inside a generated query.
// The builder emits exactly one strategy per query; the multi-strategy
// fallback lives in the area-search tool, not here.
type AreaStrategy string

const (
	StrategyPark           AreaStrategy = "park"
	StrategyAdministrative AreaStrategy = "administrative"
	StrategyAny            AreaStrategy = "any"
)

// AreaStrategies returns the fallback order used by the area-search tool:
// most specific first.
func AreaStrategies() []AreaStrategy {
	return []AreaStrategy{StrategyPark, StrategyAdministrative, StrategyAny}
}

// clause returns the area-resolution line for the strategy. The name must
// already be escaped.
func (s AreaStrategy) clause(escapedName string) string {
	switch s {
	case StrategyPark:
		return fmt.Sprintf(`  area["name"="%s"]["leisure"="park"]->.searchArea;`, escapedName)
	case StrategyAdministrative:
		return fmt.Sprintf(`  area["name"="%s"]["boundary"="administrative"]->.searchArea;`, escapedName)
	default:
		return fmt.Sprintf(`  area["name"="%s"]->.searchArea;`, escapedName)
	}
}

// Builder constructs Overpass queries. It is stateless apart from the
// server-side timeout stamped into every query header.
type Builder struct {
	queryTimeoutSec int
}

// NewBuilder returns a Builder using the given server-side query timeout.
// Non-positive values fall back to DefaultQueryTimeoutSec.
func NewBuilder(queryTimeoutSec int) *Builder {
	if queryTimeoutSec <= 0 {
		queryTimeoutSec = DefaultQueryTimeoutSec
	}
	return &Builder{queryTimeoutSec: queryTimeoutSec}
}

// EscapeAreaName trims the name and escapes embedded double quotes. This is
// the one place the single untrusted query input is sanitized.
func EscapeAreaName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), `"`, `\"`)
}

// header returns the query preamble with output format, timeout, and size hint.
func (b *Builder) header() string {
	return fmt.Sprintf("[out:json][timeout:%d][maxsize:%d];", b.queryTimeoutSec, maxQuerySize)
}

// accessFilters renders the access-exclusion filters for a category, e.g.
// ["access"!="private"]["access"!="no"].
func accessFilters(exclude []string) string {
	var sb strings.Builder
	for _, access := range exclude {
		fmt.Fprintf(&sb, `["access"!="%s"]`, access)
	}
	return sb.String()
}

// mustMapping returns the tag mapping for a category. The builder assumes
// pre-validated input (see ValidateCategories); an unknown key is a caller
// bug, not a recoverable error.
func mustMapping(c Category) tagMapping {
	m, ok := categoryTable[c]
	if !ok {
		panic(fmt.Sprintf("trails: unknown category %q passed to query builder", c))
	}
	return m
}

// coord formats a coordinate without exponent notation or trailing zeros.
func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BBoxQuery builds a query for trails within a bounding box. Validation runs
// in a fixed order and fails with InvalidFilterError carrying a reason code;
// a partial document is never returned.
func (b *Builder) BBoxQuery(south, west, north, east float64, categories []Category) (QueryDocument, error) {
	if south < -90 || south > 90 || north < -90 || north > 90 {
		return "", &domain.InvalidFilterError{
			Reason:  domain.ReasonLatitudeRange,
			Message: "latitude must be between -90 and 90 degrees",
		}
	}
	if west < -180 || west > 180 || east < -180 || east > 180 {
		return "", &domain.InvalidFilterError{
			Reason:  domain.ReasonLongitudeRange,
			Message: "longitude must be between -180 and 180 degrees",
		}
	}
	if south >= north {
		return "", &domain.InvalidFilterError{
			Reason:  domain.ReasonLatitudeOrder,
			Message: "south latitude must be less than north latitude",
		}
	}
	if west >= east {
		return "", &domain.InvalidFilterError{
			Reason:  domain.ReasonLongitudeOrder,
			Message: "west longitude must be less than east longitude",
		}
	}

	bbox := fmt.Sprintf("(%s,%s,%s,%s)", coord(south), coord(west), coord(north), coord(east))
	parts := []string{b.header(), "("}
	for _, c := range orderCategories(categories) {
		m := mustMapping(c)
		filters := accessFilters(m.AccessExclude)
		for _, route := range m.Route {
			parts = append(parts, fmt.Sprintf(`  relation["route"="%s"]%s;`, route, bbox))
		}
		for _, highway := range m.Highway {
			parts = append(parts, fmt.Sprintf(`  way["highway"="%s"]%s%s;`, highway, filters, bbox))
		}
	}
	parts = append(parts, ");", "out geom;")
	return QueryDocument(strings.Join(parts, "\n")), nil
}

// AreaQuery builds a query for trails within a named area, resolved by a
// single strategy. Fails with InvalidFilterError when the name is empty
// after trimming.
func (b *Builder) AreaQuery(areaName string, categories []Category, strategy AreaStrategy) (QueryDocument, error) {
	escaped := EscapeAreaName(areaName)
	if escaped == "" {
		return "", &domain.InvalidFilterError{
			Reason:  domain.ReasonEmptyAreaName,
			Message: "area name cannot be empty",
		}
	}

	parts := []string{b.header(), "(", strategy.clause(escaped), ");", "("}
	for _, c := range orderCategories(categories) {
		m := mustMapping(c)
		filters := accessFilters(m.AccessExclude)
		for _, route := range m.Route {
			parts = append(parts, fmt.Sprintf(`  relation(area.searchArea)["route"="%s"];`, route))
		}
		for _, highway := range m.Highway {
			parts = append(parts, fmt.Sprintf(`  way(area.searchArea)["highway"="%s"]%s;`, highway, filters))
		}
	}
	parts = append(parts, ");", "out geom;")
	return QueryDocument(strings.Join(parts, "\n")), nil
}

// orderCategories filters the declaration-order table down to the requested
// set, keeping clause emission order independent of the caller's slice order.
func orderCategories(requested []Category) []Category {
	want := make(map[Category]bool, len(requested))
	for _, c := range requested {
		want[c] = true
		mustMapping(c)
	}
	out := make([]Category, 0, len(want))
	for _, c := range categoryOrder {
		if want[c] {
			out = append(out, c)
		}
	}
	return out
}
