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
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestFeatureCollectionRoundTrip(t *testing.T) {
	square := geom.Polygon{{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}}
	f, err := NewFeature(square, map[string]interface{}{
		"cell_id": 3,
		"utm_crs": "EPSG:32654",
	})
	if err != nil {
		t.Fatal(err)
	}
	fc := NewFeatureCollection([]*Feature{f})

	const tmpFile = "geojsonTest.geojson"
	if err := fc.WriteFile(tmpFile); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile)

	fc2, err := ReadFeatureCollectionFile(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc2.Features) != 1 {
		t.Fatalf("read %d features; want 1", len(fc2.Features))
	}
	f2 := fc2.Features[0]
	if id, ok := f2.propInt("cell_id"); !ok || id != 3 {
		t.Errorf("cell_id = %d, %v; want 3, true", id, ok)
	}
	if tag, ok := f2.propString("utm_crs"); !ok || tag != "EPSG:32654" {
		t.Errorf("utm_crs = %q, %v; want \"EPSG:32654\", true", tag, ok)
	}
	g, err := f2.Geom()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g, square) {
		t.Errorf("geometry round trip: got %+v; want %+v", g, square)
	}
}

func TestReadFeatureCollectionFileErrors(t *testing.T) {
	if _, err := ReadFeatureCollectionFile("nonexistentFile.geojson"); err == nil {
		t.Error("expected error for missing file")
	}

	const tmpFile = "geojsonBareTest.geojson"
	data := `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	if err := ioutil.WriteFile(tmpFile, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile)
	if _, err := ReadFeatureCollectionFile(tmpFile); err == nil {
		t.Error("expected error for bare geometry file")
	}
}
