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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// MetricFeatures returns the grid as a GeoJSON feature collection in
// the grid's planar coordinate system. Each feature carries cell_id,
// row, col, area_m2 and utm_crs properties.
func (g *Grid) MetricFeatures() (*FeatureCollection, error) {
	features := make([]*Feature, len(g.Cells))
	for i, c := range g.Cells {
		f, err := NewFeature(c.Polygonal, map[string]interface{}{
			"cell_id": c.ID,
			"row":     c.Row,
			"col":     c.Col,
			"area_m2": c.Area,
			"utm_crs": g.CRS,
		})
		if err != nil {
			return nil, err
		}
		features[i] = f
	}
	return NewFeatureCollection(features), nil
}

// GeographicFeatures returns the grid as a GeoJSON feature collection
// with cell geometries reprojected into geographic coordinates. The
// features carry the same attribution as MetricFeatures minus the
// coordinate system tag.
func (g *Grid) GeographicFeatures() (*FeatureCollection, error) {
	cells, err := g.GeographicCells()
	if err != nil {
		return nil, err
	}
	features := make([]*Feature, len(cells))
	for i, c := range cells {
		f, err := NewFeature(c.Polygonal, map[string]interface{}{
			"cell_id": c.ID,
			"row":     c.Row,
			"col":     c.Col,
			"area_m2": c.Area,
		})
		if err != nil {
			return nil, err
		}
		features[i] = f
	}
	return NewFeatureCollection(features), nil
}

// ReadGrid reconstructs a grid from a feature collection previously
// written by MetricFeatures or GeographicFeatures. idField names the
// property holding the cell identifier; if it is absent from a feature
// an error naming the available fields is returned. The coordinate
// system is taken from the first parsable utm_crs tag; a collection
// without one is assumed to be in geographic coordinates.
func ReadGrid(fc *FeatureCollection, idField string) (*Grid, error) {
	g := &Grid{EPSG: 4326, CRS: "EPSG:4326"}
	crsSeen := false
	seen := make(map[int]struct{}, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := f.propInt(idField)
		if !ok {
			return nil, fmt.Errorf("trajgrid: cell identifier field %q not found in grid attributes; available fields: %v",
				idField, f.propNames())
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("trajgrid: duplicate cell identifier %d in grid file", id)
		}
		seen[id] = struct{}{}
		gg, err := f.Geom()
		if err != nil {
			return nil, fmt.Errorf("trajgrid: while decoding geometry of cell %d: %v", id, err)
		}
		p, err := asPolygonal(gg)
		if err != nil {
			return nil, err
		}
		row, _ := f.propInt("row")
		col, _ := f.propInt("col")
		area, ok := f.propFloat("area_m2")
		if !ok {
			area = p.Area()
		}
		if !crsSeen {
			if tag, ok := f.propString("utm_crs"); ok {
				if epsg, ok := ParseEPSG(tag); ok {
					g.EPSG = epsg
					g.CRS = fmt.Sprintf("EPSG:%d", epsg)
					crsSeen = true
				}
			}
		}
		g.Cells = append(g.Cells, &Cell{Polygonal: p, ID: id, Row: row, Col: col, Area: area})
	}
	sort.Slice(g.Cells, func(i, j int) bool { return g.Cells[i].ID < g.Cells[j].ID })
	g.buildIndex()
	return g, nil
}

// WriteShapefile writes the grid cells to a shapefile with CELL_ID,
// ROW, COL and AREA_M2 attribute fields, plus a companion .prj file
// holding the projection definition.
func (g *Grid) WriteShapefile(fileName string) error {
	// remove extension and replace it with .shp
	fileBase := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	fileName = fileBase + ".shp"
	fields := []goshp.Field{
		goshp.NumberField("CELL_ID", 10),
		goshp.NumberField("ROW", 10),
		goshp.NumberField("COL", 10),
		goshp.FloatField("AREA_M2", 14, 8),
	}
	shape, err := shp.NewEncoderFromFields(fileName, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("trajgrid: error creating output shapefile: %v", err)
	}
	for _, c := range g.Cells {
		if err := shape.EncodeFields(c.Polygonal, c.ID, c.Row, c.Col, c.Area); err != nil {
			return fmt.Errorf("trajgrid: error writing output shapefile: %v", err)
		}
	}
	shape.Close()

	proj4, err := Proj4FromEPSG(g.EPSG)
	if err != nil {
		return err
	}
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("trajgrid: error creating output prj file: %v", err)
	}
	fmt.Fprint(f, proj4)
	return f.Close()
}
