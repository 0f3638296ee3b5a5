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

package trajgridutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/trajgrid"
)

// TestPipeline runs the commands end to end: grid, folders, bucketize,
// scan and flatten over a small AOI near Tokyo.
func TestPipeline(t *testing.T) {
	dir, err := ioutil.TempDir("", "trajgridPipeline")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	aoiFile := filepath.Join(dir, "aoi.geojson")
	aoi := `{"type":"Polygon","coordinates":[[[139.70,35.65],[139.705,35.65],[139.705,35.655],[139.70,35.655],[139.70,35.65]]]}`
	if err := ioutil.WriteFile(aoiFile, []byte(aoi), 0644); err != nil {
		t.Fatal(err)
	}
	trajFile := filepath.Join(dir, "trajectories.csv")
	traj := `agent,latitude,longitude,timestamp
a1,35.651,139.701,2026-01-02T10:00:00Z
a2,35.654,139.704,2026-01-02T09:00:00Z
a1,35.9,139.9,2026-01-02T11:00:00Z
`
	if err := ioutil.WriteFile(trajFile, []byte(traj), 0644); err != nil {
		t.Fatal(err)
	}

	gridFile := filepath.Join(dir, "grid_metric.geojson")
	root := filepath.Join(dir, "grid_cells")
	Cfg.Set("AOI", aoiFile)
	Cfg.Set("CellSize", 100.0)
	Cfg.Set("GridMetric", gridFile)
	Cfg.Set("GridWGS84", filepath.Join(dir, "grid_wgs84.geojson"))
	Cfg.Set("GridShapefile", filepath.Join(dir, "grid.shp"))
	Cfg.Set("OutputRoot", root)
	Cfg.Set("Trajectories", trajFile)
	Cfg.Set("SummaryFile", filepath.Join(dir, "summary.csv"))
	Cfg.Set("FlattenFile", filepath.Join(dir, "grid_metric.csv"))

	for _, cmd := range []string{"grid", "folders", "bucketize", "scan", "flatten"} {
		Root.SetArgs([]string{cmd})
		if err := Root.Execute(); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
	}

	fc, err := trajgrid.ReadFeatureCollectionFile(gridFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) == 0 {
		t.Fatal("grid file holds no features")
	}
	if _, err := os.Stat(filepath.Join(dir, "grid_wgs84.geojson")); err != nil {
		t.Error(err)
	}
	for _, ext := range []string{".shp", ".prj"} {
		if _, err := os.Stat(filepath.Join(dir, "grid"+ext)); err != nil {
			t.Error(err)
		}
	}

	entries, err := ioutil.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(fc.Features) {
		t.Errorf("%d cell folders; want %d", len(entries), len(fc.Features))
	}

	found, _, err := trajgrid.ScanBuckets(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) == 0 {
		t.Error("no cells received visits")
	}
	for _, id := range found {
		path := filepath.Join(root, fmt.Sprintf("cell_%d", id), "visits_bucket0.csv")
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(b), "agent,latitude,longitude,timestamp,cell_id,bucket_id") {
			t.Errorf("%s: unexpected header", path)
		}
	}

	b, err := ioutil.ReadFile(filepath.Join(dir, "summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(b)), "\n"); len(lines) != len(found)+1 {
		t.Errorf("summary has %d lines; want %d", len(lines), len(found)+1)
	}

	b, err = ioutil.ReadFile(filepath.Join(dir, "grid_metric.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(b)), "\n"); len(lines) != len(fc.Features)+1 {
		t.Errorf("grid CSV has %d lines; want %d", len(lines), len(fc.Features)+1)
	}
}

func TestCellSizeConfig(t *testing.T) {
	Cfg.Set("CellSize", -5.0)
	if _, err := cellSizeConfig(Cfg); err == nil {
		t.Error("expected error for negative cell size")
	}
	Cfg.Set("CellSize", 250.0)
	v, err := cellSizeConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if v != 250 {
		t.Errorf("cell size = %g; want 250", v)
	}
}

func TestTrajectoryColumns(t *testing.T) {
	Cfg.Set("AgentField", "device")
	Cfg.Set("TimeField", "when")
	defer func() {
		Cfg.Set("AgentField", "agent")
		Cfg.Set("TimeField", "")
	}()
	cols := trajectoryColumns(Cfg)
	if cols.Agent != "device" || cols.Latitude != "latitude" || cols.Longitude != "longitude" || cols.Time != "when" {
		t.Errorf("unexpected columns: %+v", cols)
	}
}
