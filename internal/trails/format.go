package trails

import (
	"fmt"
	"sort"
	"strings"
)

// NoResultsSentinel is the fixed no-results string for trail summaries. It is
// relayed verbatim into conversation turns, so it carries no markup.
const NoResultsSentinel = "No trails found in the specified area."

// NoStatisticsSentinel is the fixed no-results string for the statistics view.
const NoStatisticsSentinel = "No trail data found for the specified area."

// DefaultMaxTrailsDisplay caps the per-trail detail list in summaries.
const DefaultMaxTrailsDisplay = 50

// FormatSummary renders a result set as a plain-text summary: a header with
// the raw element count, per-category counts in declaration order (zero
// counts omitted), and a capped list of per-trail detail lines with a
// truncation notice when the cap is exceeded. Unclassified elements count
// toward the raw total but not toward any category.
func FormatSummary(rs ResultSet, displayCap int) string {
	if len(rs.Elements) == 0 {
		return NoResultsSentinel
	}
	if displayCap <= 0 {
		displayCap = DefaultMaxTrailsDisplay
	}

	counts := make(map[Category]int, len(categoryOrder))
	var details []string
	for _, el := range rs.Elements {
		cat, ok := Classify(el.Tags)
		if !ok {
			continue
		}
		counts[cat]++
		details = append(details, detailLine(el.Tags, cat))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d trail elements:\n", len(rs.Elements))
	for _, cat := range categoryOrder {
		if counts[cat] > 0 {
			fmt.Fprintf(&sb, "- %s: %d\n", cat.Title(), counts[cat])
		}
	}
	sb.WriteString("\n")

	if len(details) > 0 {
		shown := details
		if len(shown) > displayCap {
			shown = shown[:displayCap]
		}
		sb.WriteString("Trail Details:\n")
		sb.WriteString(strings.Join(shown, "\n"))
		if len(details) > displayCap {
			fmt.Fprintf(&sb, "\n... and %d more trails", len(details)-displayCap)
		}
	}

	return sb.String()
}

// detailLine renders one trail: the name (or a fixed fallback), the category,
// and the optional distance/surface/difficulty/description fields in that
// order, only when present.
func detailLine(tags map[string]string, cat Category) string {
	name := tags["name"]
	if name == "" {
		name = "Unnamed trail"
	}
	parts := []string{fmt.Sprintf("%s (%s", name, cat.Title())}
	if v, ok := tags["distance"]; ok {
		parts = append(parts, "Distance: "+v)
	}
	if v, ok := tags["surface"]; ok {
		parts = append(parts, "Surface: "+v)
	}
	if v, ok := tags["difficulty"]; ok {
		parts = append(parts, "Difficulty: "+v)
	}
	if v, ok := tags["description"]; ok {
		parts = append(parts, "Description: "+v)
	}
	return strings.Join(parts, " | ") + ")"
}

// FormatStatistics renders aggregate statistics: the raw total, a category
// breakdown (declaration order, unclassified elements in an "unknown"
// bucket), the ten most common surfaces (descending count, ties kept in
// first-seen order), and the difficulty distribution excluding the "unknown"
// bucket.
func FormatStatistics(rs ResultSet) string {
	if len(rs.Elements) == 0 {
		return NoStatisticsSentinel
	}

	counts := make(map[Category]int, len(categoryOrder))
	unknown := 0
	surfaces := newHistogram()
	difficulties := newHistogram()

	for _, el := range rs.Elements {
		if cat, ok := Classify(el.Tags); ok {
			counts[cat]++
		} else {
			unknown++
		}
		surfaces.add(tagOrUnknown(el.Tags, "surface"))
		difficulties.add(tagOrUnknown(el.Tags, "difficulty"))
	}

	var sb strings.Builder
	sb.WriteString("Trail Statistics:\n\n")
	fmt.Fprintf(&sb, "Total elements: %d\n\n", len(rs.Elements))

	sb.WriteString("By Type:\n")
	for _, cat := range categoryOrder {
		if counts[cat] > 0 {
			fmt.Fprintf(&sb, "- %s: %d\n", cat.Title(), counts[cat])
		}
	}
	if unknown > 0 {
		fmt.Fprintf(&sb, "- Unknown: %d\n", unknown)
	}

	sb.WriteString("\nBy Surface:\n")
	for _, e := range surfaces.topN(10) {
		fmt.Fprintf(&sb, "- %s: %d\n", e.key, e.count)
	}

	sb.WriteString("\nBy Difficulty:\n")
	for _, e := range difficulties.topN(0) {
		if e.key == "unknown" {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %d\n", e.key, e.count)
	}

	return sb.String()
}

// TypesInfo renders the category table: route values, highway values, and
// the access-mode tag for every supported category.
func TypesInfo() string {
	var sb strings.Builder
	sb.WriteString("Supported Trail Types:\n\n")
	for _, cat := range categoryOrder {
		m := categoryTable[cat]
		fmt.Fprintf(&sb, "%s:\n", cat.Title())
		fmt.Fprintf(&sb, "- Route types: %s\n", strings.Join(m.Route, ", "))
		fmt.Fprintf(&sb, "- Highway types: %s\n", strings.Join(m.Highway, ", "))
		switch m.AccessMode {
		case "foot":
			sb.WriteString("- Foot access: yes\n")
		case "bicycle":
			sb.WriteString("- Bicycle access: yes\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func tagOrUnknown(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// histogram counts string keys while remembering first-seen order so that
// equal counts sort deterministically.
type histogram struct {
	order  []string
	counts map[string]int
}

func newHistogram() *histogram {
	return &histogram{counts: make(map[string]int)}
}

func (h *histogram) add(key string) {
	if _, seen := h.counts[key]; !seen {
		h.order = append(h.order, key)
	}
	h.counts[key]++
}

type histogramEntry struct {
	key   string
	count int
}

// topN returns entries sorted by descending count, ties broken by first-seen
// order. n <= 0 returns all entries.
func (h *histogram) topN(n int) []histogramEntry {
	out := make([]histogramEntry, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, histogramEntry{key: k, count: h.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
