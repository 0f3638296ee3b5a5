/*
Copyright © 2026 the trajgrid authors.
This file is part of trajgrid.

trajgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

trajgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with trajgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package trajgrid

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// Feature is a GeoJSON feature: a geometry with attached properties.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *geojson.Geometry      `json:"geometry"`
}

// NewFeature creates a feature from a geometry and its properties.
func NewFeature(g geom.Geom, properties map[string]interface{}) (*Feature, error) {
	gj, err := encodeGeometry(g)
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while encoding feature geometry: %v", err)
	}
	return &Feature{Type: "Feature", Properties: properties, Geometry: gj}, nil
}

// Geom decodes the feature's geometry.
func (f *Feature) Geom() (geom.Geom, error) {
	if f.Geometry == nil {
		return nil, fmt.Errorf("trajgrid: feature has no geometry")
	}
	return decodeGeometry(f.Geometry)
}

// encodeGeometry converts a geometry to its GeoJSON form. It extends
// the geojson package codec, which stops at Polygon, with MultiPolygon
// support.
func encodeGeometry(g geom.Geom) (*geojson.Geometry, error) {
	mp, ok := g.(geom.MultiPolygon)
	if !ok {
		return geojson.ToGeoJSON(g)
	}
	coords := make([][][][]float64, len(mp))
	for i, p := range mp {
		coords[i] = make([][][]float64, len(p))
		for j, ring := range p {
			coords[i][j] = make([][]float64, len(ring))
			for k, pt := range ring {
				coords[i][j][k] = []float64{pt.X, pt.Y}
			}
		}
	}
	return &geojson.Geometry{Type: "MultiPolygon", Coordinates: coords}, nil
}

// decodeGeometry is the inverse of encodeGeometry. The geojson package
// decoder only understands the nested []interface{} coordinates that
// encoding/json produces, so the typed forms that come from geometries
// encoded in memory are handled here.
func decodeGeometry(gj *geojson.Geometry) (geom.Geom, error) {
	switch gj.Type {
	case "MultiPolygon":
		return decodeMultiPolygon(gj.Coordinates)
	case "Polygon":
		if coords, ok := gj.Coordinates.([][][]float64); ok {
			p := make(geom.Polygon, len(coords))
			for i, rc := range coords {
				ring := make([]geom.Point, len(rc))
				for j, xy := range rc {
					if len(xy) < 2 {
						return nil, fmt.Errorf("trajgrid: invalid Polygon coordinate")
					}
					ring[j] = geom.Point{X: xy[0], Y: xy[1]}
				}
				p[i] = ring
			}
			return p, nil
		}
	}
	return geojson.FromGeoJSON(gj)
}

// decodeMultiPolygon reads MultiPolygon coordinates either in their
// typed in-memory form or as the nested []interface{} that
// encoding/json produces.
func decodeMultiPolygon(coordinates interface{}) (geom.MultiPolygon, error) {
	if coords, ok := coordinates.([][][][]float64); ok {
		mp := make(geom.MultiPolygon, len(coords))
		for i, pc := range coords {
			p := make(geom.Polygon, len(pc))
			for j, rc := range pc {
				ring := make([]geom.Point, len(rc))
				for k, xy := range rc {
					if len(xy) < 2 {
						return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinate")
					}
					ring[k] = geom.Point{X: xy[0], Y: xy[1]}
				}
				p[j] = ring
			}
			mp[i] = p
		}
		return mp, nil
	}
	polys, ok := coordinates.([]interface{})
	if !ok {
		return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinates of type %T", coordinates)
	}
	mp := make(geom.MultiPolygon, len(polys))
	for i, pv := range polys {
		rings, ok := pv.([]interface{})
		if !ok {
			return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinates")
		}
		p := make(geom.Polygon, len(rings))
		for j, rv := range rings {
			pts, ok := rv.([]interface{})
			if !ok {
				return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinates")
			}
			ring := make([]geom.Point, len(pts))
			for k, xyv := range pts {
				xy, ok := xyv.([]interface{})
				if !ok || len(xy) < 2 {
					return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinate")
				}
				x, okX := xy[0].(float64)
				y, okY := xy[1].(float64)
				if !okX || !okY {
					return nil, fmt.Errorf("trajgrid: invalid MultiPolygon coordinate")
				}
				ring[k] = geom.Point{X: x, Y: y}
			}
			p[j] = ring
		}
		mp[i] = p
	}
	return mp, nil
}

// propInt returns an integer property. JSON numbers unmarshal as
// float64, so both representations are accepted.
func (f *Feature) propInt(key string) (int, bool) {
	switch v := f.Properties[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func (f *Feature) propFloat(key string) (float64, bool) {
	switch v := f.Properties[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (f *Feature) propString(key string) (string, bool) {
	v, ok := f.Properties[key].(string)
	return v, ok
}

// propNames returns the names of the feature's properties in sorted
// order, for use in error messages.
func (f *Feature) propNames() []string {
	names := make([]string, 0, len(f.Properties))
	for n := range f.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FeatureCollection is a GeoJSON collection of features.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a feature collection holding the given
// features.
func NewFeatureCollection(features []*Feature) *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// ReadFeatureCollectionFile reads a GeoJSON feature collection from the
// given file. The path can include environment variables.
func ReadFeatureCollectionFile(filename string) (*FeatureCollection, error) {
	b, err := ioutil.ReadFile(os.ExpandEnv(filename))
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while reading feature collection: %v", err)
	}
	fc := new(FeatureCollection)
	if err := json.Unmarshal(b, fc); err != nil {
		return nil, fmt.Errorf("trajgrid: while decoding %s: %v", filename, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("trajgrid: %s: expected FeatureCollection but got %q", filename, fc.Type)
	}
	return fc, nil
}

// WriteFile writes the feature collection to the given file as GeoJSON.
func (fc *FeatureCollection) WriteFile(filename string) error {
	b, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("trajgrid: while encoding feature collection: %v", err)
	}
	if err := ioutil.WriteFile(os.ExpandEnv(filename), b, 0644); err != nil {
		return fmt.Errorf("trajgrid: while writing feature collection: %v", err)
	}
	return nil
}
