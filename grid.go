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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/gonum/floats"
)

// Config is a holder for the configuration information for creating a
// grid over an area of interest.
type Config struct {
	// CellSize is the edge length of a square grid cell in the linear
	// units of the projected coordinate system (meters for UTM).
	CellSize float64
}

// Cell is a single grid cell, clipped to the area-of-interest boundary.
type Cell struct {
	geom.Polygonal

	// ID is the sequential cell identifier, assigned in row-major scan
	// order starting at 0.
	ID int

	// Row and Col are the grid coordinates of the cell's uncut square
	// footprint relative to the grid origin.
	Row, Col int

	// Area is the planar area of the clipped geometry [m²].
	Area float64
}

// Grid is the set of cells covering an area of interest, in a planar
// coordinate system.
type Grid struct {
	// Cells are the grid cells that intersect the area of interest,
	// ordered by ascending ID.
	Cells []*Cell

	// EPSG identifies the planar coordinate system of the cell
	// geometries, and CRS is its textual tag (e.g. "EPSG:32654").
	EPSG int
	CRS  string

	// Rows and Cols give the extent of the uncut grid covering the
	// area-of-interest bounding box, and X0, Y0 the lower-left corner of
	// cell (0, 0), aligned to a multiple of CellSize.
	Rows, Cols int
	X0, Y0     float64
	CellSize   float64

	index *rtree.Rtree
}

// NewGrid creates the set of grid cells that intersect aoi, which must
// be in geographic (longitude/latitude) coordinates. A UTM coordinate
// system is selected from the AOI centroid, the AOI is projected into
// it, and the projected bounding box is covered with square cells of
// edge length c.CellSize; each cell is clipped to the AOI boundary and
// cells that do not intersect the AOI are dropped. Progress messages
// are sent to msgLog if it is not nil. A degenerate zero-area AOI
// yields a grid with no cells.
func (c *Config) NewGrid(aoi geom.Polygonal, msgLog chan string) (*Grid, error) {
	if c.CellSize <= 0 {
		return nil, fmt.Errorf("trajgrid: cell size must be positive but is %g", c.CellSize)
	}
	if aoi == nil || len(aoi.Polygons()) == 0 {
		return nil, fmt.Errorf("trajgrid: area of interest is empty")
	}
	cent := aoi.Centroid()
	if math.IsNaN(cent.X) || math.IsNaN(cent.Y) || math.IsInf(cent.X, 0) || math.IsInf(cent.Y, 0) {
		// Zero-area AOIs have no centroid; fall back to the bounding
		// box center for zone selection.
		b := aoi.Bounds()
		cent = geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
	}
	epsg := UTMEPSG(cent.X, cent.Y)
	if msgLog != nil {
		msgLog <- fmt.Sprintf("Selected UTM zone %d (EPSG:%d) from AOI centroid (%.4f, %.4f)",
			UTMZone(cent.X), epsg, cent.X, cent.Y)
	}
	forward, _, err := transforms(epsg)
	if err != nil {
		return nil, err
	}
	projected, err := aoi.Transform(forward)
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while projecting AOI: %v", err)
	}
	aoiM, ok := projected.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("trajgrid: projected AOI has unexpected type %T", projected)
	}
	if msgLog != nil {
		msgLog <- "AOI projection complete"
	}
	return c.build(aoiM, epsg, msgLog)
}

// build creates the grid cells over aoiM, which is already in the
// planar coordinate system identified by epsg. The grid origin is
// floor-aligned to the nearest multiple of CellSize at or below the
// bounding box minimum so that cell boundaries do not depend on where
// the AOI sits within its zone.
func (c *Config) build(aoiM geom.Polygonal, epsg int, msgLog chan string) (*Grid, error) {
	if c.CellSize <= 0 {
		return nil, fmt.Errorf("trajgrid: cell size must be positive but is %g", c.CellSize)
	}
	b := aoiM.Bounds()
	g := &Grid{
		EPSG:     epsg,
		CRS:      fmt.Sprintf("EPSG:%d", epsg),
		CellSize: c.CellSize,
	}
	g.X0 = math.Floor(b.Min.X/c.CellSize) * c.CellSize
	g.Y0 = math.Floor(b.Min.Y/c.CellSize) * c.CellSize
	g.Cols = int(math.Ceil((b.Max.X - g.X0) / c.CellSize))
	g.Rows = int(math.Ceil((b.Max.Y - g.Y0) / c.CellSize))
	if msgLog != nil {
		msgLog <- fmt.Sprintf("Grid bounds: %d columns x %d rows (%d candidate cells)",
			g.Cols, g.Rows, g.Cols*g.Rows)
	}

	// Index the AOI polygons for fast rejection of disjoint cells.
	aoiIndex := rtree.NewTree(25, 50)
	for _, p := range aoiM.Polygons() {
		aoiIndex.Insert(p)
	}

	checkpoint := g.Rows / 20
	if checkpoint < 1 {
		checkpoint = 1
	}
	var areas []float64
	for row := 0; row < g.Rows; row++ {
		if msgLog != nil && row%checkpoint == 0 {
			msgLog <- fmt.Sprintf("Processing row %d/%d (%.1f%%)",
				row+1, g.Rows, float64(row)/float64(g.Rows)*100)
		}
		y0 := g.Y0 + float64(row)*c.CellSize
		for col := 0; col < g.Cols; col++ {
			x0 := g.X0 + float64(col)*c.CellSize
			cellBounds := &geom.Bounds{
				Min: geom.Point{X: x0, Y: y0},
				Max: geom.Point{X: x0 + c.CellSize, Y: y0 + c.CellSize},
			}
			if len(aoiIndex.SearchIntersect(cellBounds)) == 0 {
				continue
			}
			clip, ok := boundsPolygon(cellBounds).Intersection(aoiM).(geom.Polygon)
			if !ok || len(clip) == 0 {
				continue
			}
			area := clip.Area()
			if area <= 0 { // guard against degenerate touching cases
				continue
			}
			g.Cells = append(g.Cells, &Cell{
				Polygonal: clip,
				ID:        len(g.Cells),
				Row:       row,
				Col:       col,
				Area:      area,
			})
			areas = append(areas, area)
		}
	}
	g.buildIndex()
	if msgLog != nil {
		msgLog <- fmt.Sprintf("Clipping complete: %d cells inside the AOI covering %.1f m²",
			len(g.Cells), floats.Sum(areas))
	}
	return g, nil
}

// boundsPolygon returns the rectangle covering b.
func boundsPolygon(b *geom.Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	}}
}

func (g *Grid) buildIndex() {
	g.index = rtree.NewTree(25, 50)
	for _, c := range g.Cells {
		g.index.Insert(c)
	}
}

// Locate returns the cell containing p, which must be in the grid's
// planar coordinate system. Points on a cell edge count as contained,
// and a point on a boundary shared between cells is assigned to the
// candidate with the lowest ID, so repeated runs give the same
// assignment. The second return value is false if no cell contains p.
func (g *Grid) Locate(p geom.Point) (*Cell, bool) {
	if g.index == nil {
		g.buildIndex()
	}
	var best *Cell
	for _, s := range g.index.SearchIntersect(p.Bounds()) {
		c := s.(*Cell)
		if p.Within(c.Polygonal) == geom.Outside {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}
	return best, best != nil
}

// GeographicCells returns the grid cells with their clipped geometry
// reprojected back into geographic (longitude/latitude) coordinates.
// IDs, grid coordinates, and planar areas are carried over unchanged.
func (g *Grid) GeographicCells() ([]*Cell, error) {
	_, inverse, err := transforms(g.EPSG)
	if err != nil {
		return nil, err
	}
	out := make([]*Cell, len(g.Cells))
	for i, c := range g.Cells {
		gg, err := c.Polygonal.Transform(inverse)
		if err != nil {
			return nil, fmt.Errorf("trajgrid: while reprojecting cell %d: %v", c.ID, err)
		}
		p, ok := gg.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("trajgrid: reprojected cell %d has unexpected type %T", c.ID, gg)
		}
		out[i] = &Cell{Polygonal: p, ID: c.ID, Row: c.Row, Col: c.Col, Area: c.Area}
	}
	return out, nil
}
