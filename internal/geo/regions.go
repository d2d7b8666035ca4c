// Package geo maps coordinates to named places via bounding boxes.
package geo

import "sahayak/internal/gps"

// Region is a static latitude/longitude rectangle with its place names.
type Region struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
	City, State    string
}

// DefaultRegions is scanned in order; the first containing box wins.
func DefaultRegions() []Region {
	return []Region{
		{10.9, 11.2, 76.8, 77.1, "कोयंबटूर", "तमिलनाडु"},
		{12.9, 13.2, 80.1, 80.4, "चेन्नई", "तमिलनाडु"},
	}
}

type Resolver struct {
	regions []Region
}

func NewResolver() *Resolver {
	return &Resolver{regions: DefaultRegions()}
}

func NewResolverWith(regions []Region) *Resolver {
	return &Resolver{regions: regions}
}

// Resolve returns the place containing the fix, or ok=false when the
// fix is invalid or falls in no region.
func (r *Resolver) Resolve(fix gps.Fix) (city, state string, ok bool) {
	if !fix.Valid {
		return "", "", false
	}

	for _, reg := range r.regions {
		if fix.Lat >= reg.LatMin && fix.Lat <= reg.LatMax &&
			fix.Lon >= reg.LonMin && fix.Lon <= reg.LonMax {
			return reg.City, reg.State, true
		}
	}

	return "", "", false
}
