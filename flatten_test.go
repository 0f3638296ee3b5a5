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
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"testing"
)

func TestFlatten(t *testing.T) {
	cfg := Config{CellSize: 1}
	g, err := cfg.build(rect(0, 0, 2, 1), 4326, nil)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := g.MetricFeatures()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := Flatten(fc, "cell_id", &buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("n = %d; want 2", n)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	header := []string{"cell_id", "row", "col", "area_m2", "centroid_x_m", "centroid_y_m", "lon", "lat"}
	if len(rows) != 3 {
		t.Fatalf("%d CSV rows; want 3", len(rows))
	}
	for i, name := range header {
		if rows[0][i] != name {
			t.Errorf("header column %d = %q; want %q", i, rows[0][i], name)
		}
	}
	// EPSG:4326 grid: geographic centroid equals the planar one.
	for i, want := range []struct {
		id   int
		x, y float64
	}{
		{0, 0.5, 0.5},
		{1, 1.5, 0.5},
	} {
		row := rows[i+1]
		if row[0] != strconv.Itoa(want.id) {
			t.Errorf("row %d cell_id = %q; want %d", i, row[0], want.id)
		}
		for col, wantV := range map[int]float64{4: want.x, 5: want.y, 6: want.x, 7: want.y} {
			got, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				t.Fatalf("row %d column %d: %v", i, col, err)
			}
			if math.Abs(got-wantV) > 1e-9 {
				t.Errorf("row %d column %d = %g; want %g", i, col, got, wantV)
			}
		}
	}
}

func TestFlattenUTM(t *testing.T) {
	aoi := rect(139.70, 35.65, 139.705, 35.655)
	cfg := Config{CellSize: 100}
	g, err := cfg.NewGrid(aoi, nil)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := g.MetricFeatures()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := Flatten(fc, "cell_id", &buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(g.Cells) {
		t.Fatalf("n = %d; want %d", n, len(g.Cells))
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range rows[1:] {
		lon, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			t.Fatalf("parsing lon %q: %v", row[6], err)
		}
		lat, err := strconv.ParseFloat(row[7], 64)
		if err != nil {
			t.Fatalf("parsing lat %q: %v", row[7], err)
		}
		if lon < 139.69 || lon > 139.72 || lat < 35.64 || lat > 35.67 {
			t.Errorf("cell %s centroid (%g, %g) outside the AOI neighborhood", row[0], lon, lat)
		}
	}
}

func TestFlattenNoCRS(t *testing.T) {
	f, err := NewFeature(rect(0, 0, 1, 1), map[string]interface{}{"cell_id": 0})
	if err != nil {
		t.Fatal(err)
	}
	fc := NewFeatureCollection([]*Feature{f})
	var buf bytes.Buffer
	msgLog := make(chan string, 1)
	if _, err := Flatten(fc, "cell_id", &buf, msgLog); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-msgLog:
		if msg == "" {
			t.Error("empty warning message")
		}
	default:
		t.Error("expected a warning about the missing coordinate system tag")
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	row := rows[1]
	if row[6] != "" || row[7] != "" {
		t.Errorf("lon/lat = %q, %q; want blank without a coordinate system", row[6], row[7])
	}
	// row and col are absent from the feature, so those columns are
	// blank too, and the area is computed from the geometry.
	if row[1] != "" || row[2] != "" {
		t.Errorf("row/col = %q, %q; want blank", row[1], row[2])
	}
	if area, err := strconv.ParseFloat(row[3], 64); err != nil || math.Abs(area-1) > 1e-9 {
		t.Errorf("area = %q; want 1", row[3])
	}
}
