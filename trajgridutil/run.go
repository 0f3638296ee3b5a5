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
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/trajgrid"
	"github.com/spf13/cast"
)

// cellSizeConfig extracts and validates the grid cell size from the
// configuration.
func cellSizeConfig(cfg *viper.Viper) (float64, error) {
	cellSize, err := cast.ToFloat64E(cfg.Get("CellSize"))
	if err != nil {
		return 0, fmt.Errorf("trajgrid: reading 'CellSize': %v", err)
	}
	if cellSize <= 0 {
		return 0, fmt.Errorf("trajgrid: 'CellSize' must be positive but is %g", cellSize)
	}
	return cellSize, nil
}

// trajectoryColumns extracts the trajectory column names from the
// configuration, falling back to the defaults for unset fields.
func trajectoryColumns(cfg *viper.Viper) trajgrid.TrajectoryColumns {
	cols := trajgrid.DefaultTrajectoryColumns()
	if v := cfg.GetString("AgentField"); v != "" {
		cols.Agent = v
	}
	if v := cfg.GetString("LatitudeField"); v != "" {
		cols.Latitude = v
	}
	if v := cfg.GetString("LongitudeField"); v != "" {
		cols.Longitude = v
	}
	cols.Time = cfg.GetString("TimeField")
	return cols
}

// readGridFile reads the grid feature collection from gridPath.
func readGridFile(gridPath string) (*trajgrid.FeatureCollection, error) {
	return trajgrid.ReadFeatureCollectionFile(os.ExpandEnv(gridPath))
}

// Grid builds the grid over the area of interest in aoiPath and writes
// it to metricPath in the planar coordinate system, to wgs84Path in
// geographic coordinates, and to shpPath as a shapefile. Empty
// wgs84Path or shpPath skips the corresponding output.
func Grid(aoiPath string, cellSize float64, metricPath, wgs84Path, shpPath string) error {
	msgLog, wait := logChan()
	defer wait()

	aoi, err := trajgrid.ReadAOI(aoiPath)
	if err != nil {
		return err
	}
	cfg := trajgrid.Config{CellSize: cellSize}
	grid, err := cfg.NewGrid(aoi, msgLog)
	if err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("grid uses coordinate system %s", grid.CRS)

	fc, err := grid.MetricFeatures()
	if err != nil {
		return err
	}
	if err := fc.WriteFile(os.ExpandEnv(metricPath)); err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("wrote %d cells to %s", len(fc.Features), metricPath)

	if wgs84Path != "" {
		gfc, err := grid.GeographicFeatures()
		if err != nil {
			return err
		}
		if err := gfc.WriteFile(os.ExpandEnv(wgs84Path)); err != nil {
			return err
		}
		msgLog <- fmt.Sprintf("wrote geographic grid to %s", wgs84Path)
	}
	if shpPath != "" {
		if err := grid.WriteShapefile(os.ExpandEnv(shpPath)); err != nil {
			return err
		}
		msgLog <- fmt.Sprintf("wrote grid shapefile to %s", shpPath)
	}
	return nil
}

// Folders reads the grid from gridPath and creates one folder per cell
// under root, each holding the cell's single-feature GeoJSON.
func Folders(gridPath, root, idField string) error {
	msgLog, wait := logChan()
	defer wait()

	fc, err := readGridFile(gridPath)
	if err != nil {
		return err
	}
	created, _, err := trajgrid.Materialize(fc, root, idField, msgLog)
	if err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("materialized %d cell folders under %s", created, root)
	return nil
}

// Bucketize reads the grid from gridPath and the trajectory points from
// trajPath and appends the points to per-cell visit files under root.
func Bucketize(gridPath, trajPath, root, idField string, cols trajgrid.TrajectoryColumns, bucketID int) error {
	msgLog, wait := logChan()
	defer wait()

	fc, err := readGridFile(gridPath)
	if err != nil {
		return err
	}
	grid, err := trajgrid.ReadGrid(fc, idField)
	if err != nil {
		return err
	}
	f, err := os.Open(trajPath)
	if err != nil {
		return fmt.Errorf("trajgrid: while opening trajectory file: %v", err)
	}
	defer f.Close()
	nCells, nRows, err := trajgrid.Bucketize(grid, f, cols, os.ExpandEnv(root), bucketID, msgLog)
	if err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("appended %d visit rows across %d cells for bucket %d", nRows, nCells, bucketID)
	return nil
}

// Scan reports which cell folders under root contain the visit file for
// bucketID, optionally writing the found cell identifiers to
// summaryFile.
func Scan(root string, bucketID int, summaryFile string) error {
	msgLog, wait := logChan()
	defer wait()

	found, missing, err := trajgrid.ScanBuckets(root, bucketID)
	if err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("%d cell folders have visits for bucket %d; %d do not", len(found), bucketID, len(missing))
	for _, name := range missing {
		msgLog <- fmt.Sprintf("no visits for bucket %d in %s", bucketID, name)
	}
	if summaryFile != "" {
		if err := trajgrid.WriteScanSummary(summaryFile, found); err != nil {
			return err
		}
		msgLog <- fmt.Sprintf("wrote scan summary to %s", summaryFile)
	}
	return nil
}

// Flatten reads the grid from gridPath and writes it to outPath as a
// CSV file with one row per cell.
func Flatten(gridPath, outPath, idField string) error {
	msgLog, wait := logChan()
	defer wait()

	fc, err := readGridFile(gridPath)
	if err != nil {
		return err
	}
	f, err := os.Create(os.ExpandEnv(outPath))
	if err != nil {
		return fmt.Errorf("trajgrid: while creating grid CSV: %v", err)
	}
	n, err := trajgrid.Flatten(fc, idField, f, msgLog)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	msgLog <- fmt.Sprintf("wrote %d cells to %s", n, outPath)
	return nil
}
