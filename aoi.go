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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// ReadAOI reads an area of interest from a GeoJSON file containing a
// polygon or multi-polygon in geographic (longitude/latitude)
// coordinates. The path can include environment variables.
func ReadAOI(filename string) (geom.Polygonal, error) {
	f, err := os.Open(os.ExpandEnv(filename))
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while opening AOI file: %v", err)
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while reading AOI file: %v", err)
	}
	return ParseAOI(b)
}

// ParseAOI parses an area-of-interest polygon from GeoJSON data. The
// data may hold a bare geometry, a Feature, or a FeatureCollection;
// the polygons of a FeatureCollection are merged by union. Interior
// rings (holes) are preserved.
func ParseAOI(b []byte) (geom.Polygonal, error) {
	var probe struct {
		Type     string            `json:"type"`
		Features []*Feature        `json:"features"`
		Geometry *geojson.Geometry `json:"geometry"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("trajgrid: while decoding AOI GeoJSON: %v", err)
	}
	switch probe.Type {
	case "FeatureCollection":
		var union geom.Polygonal
		for _, f := range probe.Features {
			if f.Geometry == nil {
				continue
			}
			g, err := f.Geom()
			if err != nil {
				return nil, fmt.Errorf("trajgrid: while decoding AOI feature geometry: %v", err)
			}
			p, err := asPolygonal(g)
			if err != nil {
				return nil, err
			}
			if union == nil {
				union = p
			} else {
				union = union.Union(p)
			}
		}
		if union == nil {
			return nil, fmt.Errorf("trajgrid: AOI FeatureCollection contains no polygon features")
		}
		return union, nil
	case "Feature":
		if probe.Geometry == nil {
			return nil, fmt.Errorf("trajgrid: AOI feature has no geometry")
		}
		g, err := decodeGeometry(probe.Geometry)
		if err != nil {
			return nil, fmt.Errorf("trajgrid: while decoding AOI feature geometry: %v", err)
		}
		return asPolygonal(g)
	default:
		var gj geojson.Geometry
		if err := json.Unmarshal(b, &gj); err != nil {
			return nil, fmt.Errorf("trajgrid: while decoding AOI geometry: %v", err)
		}
		g, err := decodeGeometry(&gj)
		if err != nil {
			return nil, fmt.Errorf("trajgrid: while decoding AOI geometry: %v", err)
		}
		return asPolygonal(g)
	}
}

func asPolygonal(g geom.Geom) (geom.Polygonal, error) {
	switch p := g.(type) {
	case geom.Polygon:
		return p, nil
	case geom.MultiPolygon:
		return p, nil
	default:
		return nil, fmt.Errorf("trajgrid: unsupported AOI geometry type %T; polygon or multi-polygon required", g)
	}
}
