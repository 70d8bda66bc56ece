package arc

import "encoding/json"

const pairLen = 2

// ExtractLongitudes walks a decoded JSON tree and collects the first member of
// every two-element numeric array, at any depth. Everything else is descended into.
func ExtractLongitudes(tree any) []float64 {
	var lons []float64
	walk(tree, &lons)

	return lons
}

// GeometryLongitudes collects sample longitudes from a decoded GeoJSON geometry.
// GeometryCollection members are visited through "geometries".
func GeometryLongitudes(geometry any) []float64 {
	obj, ok := geometry.(map[string]any)
	if !ok {
		return nil
	}

	var lons []float64
	if coords, found := obj["coordinates"]; found {
		walk(coords, &lons)
	}
	if members, found := obj["geometries"].([]any); found {
		for _, member := range members {
			lons = append(lons, GeometryLongitudes(member)...)
		}
	}

	return lons
}

func walk(node any, lons *[]float64) {
	switch value := node.(type) {
	case []any:
		if lon, ok := coordinatePair(value); ok {
			*lons = append(*lons, lon)
			return
		}
		for _, item := range value {
			walk(item, lons)
		}
	case [][]float64:
		for _, item := range value {
			walk(item, lons)
		}
	case []float64:
		if len(value) == pairLen {
			*lons = append(*lons, value[0])
		}
	case map[string]any:
		for _, item := range value {
			walk(item, lons)
		}
	}
}

func coordinatePair(value []any) (float64, bool) {
	if len(value) != pairLen {
		return 0, false
	}

	lon, ok := number(value[0])
	if !ok {
		return 0, false
	}
	if _, ok = number(value[1]); !ok {
		return 0, false
	}

	return lon, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
