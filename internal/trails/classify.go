package trails

import "encoding/json"

// Element is one raw record returned by the Overpass backend.
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry json.RawMessage   `json:"geometry,omitempty"`
}

// ResultSet is the ordered element list of one backend response.
type ResultSet struct {
	Elements []Element `json:"elements"`
}

// Classify labels an element's tags with a trail category. The decision
// order is load-bearing: explicit route tags win, then highway tags combined
// with access-mode tags, with ambiguous path/track defaulting to biking only
// when bicycle access is explicitly "yes" and to hiking otherwise. Returns
// ok=false when no rule matches.
func Classify(tags map[string]string) (Category, bool) {
	route := tags["route"]
	highway := tags["highway"]

	switch route {
	case "hiking", "foot":
		return CategoryHiking, true
	case "bicycle", "mtb":
		return CategoryBiking, true
	case "walking":
		return CategoryWalking, true
	}

	if highway == "cycleway" || tags["bicycle"] == "yes" {
		return CategoryBiking, true
	}
	if highway == "footway" || highway == "pedestrian" || tags["foot"] == "yes" {
		return CategoryHiking, true
	}
	if highway == "path" || highway == "track" {
		if tags["bicycle"] == "yes" {
			return CategoryBiking, true
		}
		return CategoryHiking, true
	}

	return "", false
}
