package dashboard

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/evcraddock/field-visits/internal/visit"
)

// FeatureCollection builds a GeoJSON point layer from the visits that
// carry a GPS position. Visits without geo are left out.
func FeatureCollection(visits []*visit.Visit) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, v := range visits {
		if v == nil || v.Geo == nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{v.Geo.Lng, v.Geo.Lat})
		f.ID = v.ID
		f.Properties["id"] = v.ID
		f.Properties["userId"] = v.UserID
		f.Properties["customerId"] = v.CustomerID
		f.Properties["customerName"] = v.CustomerName
		f.Properties["dateISO"] = v.DateISO
		f.Properties["temperature"] = string(v.Temperature)
		if v.PhotoURL != "" {
			f.Properties["photoUrl"] = v.PhotoURL
		}
		if v.LocationLink != "" {
			f.Properties["maps"] = v.LocationLink
		}
		fc.Append(f)
	}
	return fc
}
