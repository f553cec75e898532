package mapview

// NormalizeFeature maps a loosely-typed upload record onto a strict Feature.
// Defaulting table:
//
//	objectId, customerId, geoLevel      -> absent
//	postalArea, fullPostal, ntCity,
//	county, state, address.*            -> ""
//	recType                             -> "S"
//	hdb                                 -> "N"
//	display.*, routing.*, nearest.*     -> absent
//
// Falsy values (empty string, zero) fall back to the default, matching the
// upload contract the web client was built against. The second return is
// false for an empty record, which the caller drops before insert.
func NormalizeFeature(raw map[string]any) (Feature, bool) {
	if len(raw) == 0 {
		return Feature{}, false
	}

	f := Feature{
		ObjectID:   numField(raw, "objectId"),
		CustomerID: numField(raw, "customerId"),
		PostalArea: strField(raw, "postalArea"),
		FullPostal: strField(raw, "fullPostal"),
		RecType:    strFieldDefault(raw, "recType", "S"),
		GeoLevel:   numField(raw, "geoLevel"),
		NtCity:     strField(raw, "ntCity"),
		County:     strField(raw, "county"),
		State:      strField(raw, "state"),
		Display:    normalizeCoordinate(subMap(raw, "display")),
		Routing:    normalizeCoordinate(subMap(raw, "routing")),
		Hdb:        strFieldDefault(raw, "hdb", "N"),
	}

	addr := subMap(raw, "address")
	f.Address = Address{
		HouseNumber:  strField(addr, "houseNumber"),
		BuildingName: strField(addr, "buildingName"),
		StreetName:   strField(addr, "streetName"),
		TmoStreet:    strField(addr, "tmoStreet"),
	}

	nearest := subMap(raw, "nearest")
	coords := subMap(nearest, "coordinates")
	f.Nearest = Nearest{
		Fid:      numField(nearest, "fid"),
		Distance: numField(nearest, "distance"),
		Coordinates: NearestCoordinates{
			X: numField(coords, "x"),
			Y: numField(coords, "y"),
		},
	}

	return f, true
}

func normalizeCoordinate(m map[string]any) Coordinate {
	return Coordinate{
		LineID:    numField(m, "lineId"),
		Latitude:  numField(m, "latitude"),
		Longitude: numField(m, "longitude"),
	}
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func strField(m map[string]any, key string) string {
	return strFieldDefault(m, key, "")
}

func strFieldDefault(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}

// numField returns nil for absent, non-numeric or zero values.
func numField(m map[string]any, key string) *float64 {
	if m == nil {
		return nil
	}
	n, ok := m[key].(float64)
	if !ok || n == 0 {
		return nil
	}
	return &n
}
