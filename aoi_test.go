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
	"math"
	"strings"
	"testing"
)

func TestParseAOI(t *testing.T) {
	t.Run("bare polygon", func(t *testing.T) {
		data := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]}`
		p, err := ParseAOI([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if area := p.Area(); math.Abs(area-16) > 1e-9 {
			t.Errorf("area = %g; want 16", area)
		}
	})

	t.Run("polygon with hole", func(t *testing.T) {
		data := `{"type":"Polygon","coordinates":[
			[[0,0],[4,0],[4,4],[0,4],[0,0]],
			[[1,1],[1,3],[3,3],[3,1],[1,1]]]}`
		p, err := ParseAOI([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if area := p.Area(); math.Abs(area-12) > 1e-9 {
			t.Errorf("area = %g; want 12", area)
		}
	})

	t.Run("multipolygon", func(t *testing.T) {
		data := `{"type":"MultiPolygon","coordinates":[
			[[[0,0],[1,0],[1,1],[0,1],[0,0]]],
			[[[5,5],[7,5],[7,7],[5,7],[5,5]]]]}`
		p, err := ParseAOI([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if area := p.Area(); math.Abs(area-5) > 1e-9 {
			t.Errorf("area = %g; want 5", area)
		}
	})

	t.Run("feature", func(t *testing.T) {
		data := `{"type":"Feature","properties":{"name":"test"},
			"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}}`
		p, err := ParseAOI([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if area := p.Area(); math.Abs(area-4) > 1e-9 {
			t.Errorf("area = %g; want 4", area)
		}
	})

	t.Run("feature collection union", func(t *testing.T) {
		// Two disjoint unit squares should union to area 2.
		data := `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{},
			 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
			{"type":"Feature","properties":{},
			 "geometry":{"type":"Polygon","coordinates":[[[5,5],[6,5],[6,6],[5,6],[5,5]]]}}]}`
		p, err := ParseAOI([]byte(data))
		if err != nil {
			t.Fatal(err)
		}
		if area := p.Area(); math.Abs(area-2) > 1e-9 {
			t.Errorf("union area = %g; want 2", area)
		}
	})

	t.Run("non-polygonal geometry", func(t *testing.T) {
		data := `{"type":"LineString","coordinates":[[0,0],[1,1]]}`
		_, err := ParseAOI([]byte(data))
		if err == nil {
			t.Fatal("expected error for LineString AOI")
		}
		if !strings.Contains(err.Error(), "unsupported AOI geometry type") {
			t.Errorf("unexpected error message: %v", err)
		}
	})
}
