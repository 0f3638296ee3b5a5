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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Flatten writes the cells of a grid feature collection as CSV rows
// with columns cell_id, row, col, area_m2, centroid_x_m, centroid_y_m,
// lon and lat. The coordinate system is taken from the first parsable
// utm_crs tag; if none is found the lon and lat columns are left blank
// and a warning is sent to msgLog. Missing row/col properties also
// yield blank columns, and a missing area is computed from the
// geometry. The number of rows written is returned.
func Flatten(fc *FeatureCollection, idField string, w io.Writer, msgLog chan string) (int, error) {
	if len(fc.Features) == 0 {
		return 0, fmt.Errorf("trajgrid: no features in grid feature collection")
	}
	epsg := 0
	for _, f := range fc.Features {
		if tag, ok := f.propString("utm_crs"); ok {
			if code, ok := ParseEPSG(tag); ok {
				epsg = code
				break
			}
		}
	}
	var inverse proj.Transformer
	switch {
	case epsg == 0:
		if msgLog != nil {
			msgLog <- "no usable utm_crs tag found; lon/lat columns will be blank"
		}
	case epsg != 4326:
		var err error
		_, inverse, err = transforms(epsg)
		if err != nil {
			return 0, err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"cell_id", "row", "col", "area_m2", "centroid_x_m", "centroid_y_m", "lon", "lat"}); err != nil {
		return 0, fmt.Errorf("trajgrid: while writing grid CSV: %v", err)
	}
	n := 0
	for i, f := range fc.Features {
		g, err := f.Geom()
		if err != nil {
			return n, fmt.Errorf("trajgrid: while decoding geometry of feature %d: %v", i, err)
		}
		p, err := asPolygonal(g)
		if err != nil {
			return n, err
		}
		id, ok := f.propInt(idField)
		if !ok {
			id = i
		}
		rowS, colS := "", ""
		if v, ok := f.propInt("row"); ok {
			rowS = strconv.Itoa(v)
		}
		if v, ok := f.propInt("col"); ok {
			colS = strconv.Itoa(v)
		}
		area, ok := f.propFloat("area_m2")
		if !ok {
			area = p.Area()
		}
		cent := p.Centroid()
		lonS, latS := "", ""
		switch {
		case epsg == 4326:
			lonS = formatFloat(cent.X)
			latS = formatFloat(cent.Y)
		case inverse != nil:
			if gp, err := cent.Transform(inverse); err == nil {
				pt := gp.(geom.Point)
				lonS = formatFloat(pt.X)
				latS = formatFloat(pt.Y)
			}
		}
		err = cw.Write([]string{
			strconv.Itoa(id), rowS, colS, formatFloat(area),
			formatFloat(cent.X), formatFloat(cent.Y), lonS, latS,
		})
		if err != nil {
			return n, fmt.Errorf("trajgrid: while writing grid CSV: %v", err)
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
