package shapefile

import (
	"log"
	"strconv"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// shapeToGeometry converts a parsed shape record to an orb geometry.
// Z/M variants are flattened to 2D; unsupported shape types are skipped
// with a warning so one odd record never sinks the whole upload.
func shapeToGeometry(shape shp.Shape) (orb.Geometry, bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}, true
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, true
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, true
	case *shp.MultiPoint:
		return multiPoint(s.Points), true
	case *shp.PolyLine:
		return lineGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.PolyLineZ:
		return lineGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.PolyLineM:
		return lineGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.Polygon:
		return polygonGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.PolygonZ:
		return polygonGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.PolygonM:
		return polygonGeometry(splitParts(s.Points, s.Parts)), true
	case *shp.Null:
		return nil, false
	default:
		log.Printf("Skipping unsupported shape type %T", shape)
		return nil, false
	}
}

func multiPoint(points []shp.Point) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.X, p.Y})
	}
	return mp
}

// splitParts slices the flat point array by the part offset table.
func splitParts(points []shp.Point, parts []int32) []orb.LineString {
	if len(parts) == 0 {
		parts = []int32{0}
	}

	out := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(points)) {
			continue
		}

		line := make(orb.LineString, 0, end-start)
		for _, p := range points[start:end] {
			line = append(line, orb.Point{p.X, p.Y})
		}
		out = append(out, line)
	}
	return out
}

func lineGeometry(parts []orb.LineString) orb.Geometry {
	if len(parts) == 1 {
		return parts[0]
	}
	return orb.MultiLineString(parts)
}

// polygonGeometry treats each part as its own single-ring polygon. Hole
// detection by winding order is not worth it here: the renderer only ever
// draws outer rings.
func polygonGeometry(parts []orb.LineString) orb.Geometry {
	if len(parts) == 1 {
		return orb.Polygon{orb.Ring(parts[0])}
	}

	mp := make(orb.MultiPolygon, 0, len(parts))
	for _, part := range parts {
		mp = append(mp, orb.Polygon{orb.Ring(part)})
	}
	return mp
}

// attributeValue parses numeric DBF fields so properties round-trip as
// numbers the way the JS parser produced them.
func attributeValue(field shp.Field, value string) any {
	switch field.Fieldtype {
	case 'N', 'F':
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
		return value
	default:
		return value
	}
}
