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
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ctessum/geom"
)

// TrajectoryColumns names the columns of a trajectory point file. Time
// may be left empty, in which case the column is discovered from the
// common variants in timeColumnVariants.
type TrajectoryColumns struct {
	Agent     string
	Latitude  string
	Longitude string
	Time      string
}

// DefaultTrajectoryColumns returns the column names used when none are
// configured.
func DefaultTrajectoryColumns() TrajectoryColumns {
	return TrajectoryColumns{Agent: "agent", Latitude: "latitude", Longitude: "longitude"}
}

var timeColumnVariants = []string{"timestamp", "time", "datetime", "date_time", "ts"}

// cellDirName returns the directory name for a cell identifier.
func cellDirName(id int) string { return fmt.Sprintf("cell_%d", id) }

// bucketFileName returns the visit file name for a bucket identifier.
func bucketFileName(bucketID int) string { return fmt.Sprintf("visits_bucket%d.csv", bucketID) }

type visit struct {
	agent, lat, lon, timestamp string
}

// Bucketize assigns each trajectory point read from r (a CSV stream
// with a header row) to the grid cell whose clipped polygon contains
// it, and appends the points, grouped by cell and ordered by time, to
// root/cell_<id>/visits_bucket<bucketID>.csv. Points are given in
// geographic coordinates and are projected into the grid's planar
// system before location; points outside every cell are dropped, with
// the drop count reported on msgLog. A point on a boundary shared
// between cells goes to the lowest-ID cell (see Grid.Locate). A new
// visit file gets a header row; an existing one is appended to without
// repeating it. The output columns are agent, latitude, longitude,
// time, cell_id and bucket_id, with the first four named as in the
// input header. Missing required columns are an error naming the
// columns that are available.
func Bucketize(g *Grid, r io.Reader, cols TrajectoryColumns, root string, bucketID int, msgLog chan string) (nCells, nRows int, err error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("trajgrid: while reading trajectory header: %v", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	required := []string{cols.Agent, cols.Latitude, cols.Longitude}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return 0, 0, fmt.Errorf("trajgrid: expected column %q in trajectory file; found columns: %v", name, header)
		}
	}
	timeCol := cols.Time
	if timeCol == "" {
		for _, cand := range timeColumnVariants {
			if _, ok := idx[cand]; ok {
				timeCol = cand
				break
			}
		}
		if timeCol == "" {
			return 0, 0, fmt.Errorf("trajgrid: no time-like column found in trajectory file; expected one of %v; found columns: %v",
				timeColumnVariants, header)
		}
	} else if _, ok := idx[timeCol]; !ok {
		return 0, 0, fmt.Errorf("trajgrid: expected column %q in trajectory file; found columns: %v", timeCol, header)
	}
	agentI, latI, lonI, timeI := idx[cols.Agent], idx[cols.Latitude], idx[cols.Longitude], idx[timeCol]

	forward, _, err := transforms(g.EPSG)
	if err != nil {
		return 0, 0, err
	}

	byCell := make(map[int][]visit)
	line := 1
	dropped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, fmt.Errorf("trajgrid: while reading trajectory file: %v", err)
		}
		line++
		lat, err := strconv.ParseFloat(rec[latI], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("trajgrid: trajectory line %d: parsing latitude: %v", line, err)
		}
		lon, err := strconv.ParseFloat(rec[lonI], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("trajgrid: trajectory line %d: parsing longitude: %v", line, err)
		}
		pg, err := geom.Point{X: lon, Y: lat}.Transform(forward)
		if err != nil {
			return 0, 0, fmt.Errorf("trajgrid: trajectory line %d: projecting point: %v", line, err)
		}
		cell, ok := g.Locate(pg.(geom.Point))
		if !ok {
			dropped++
			continue
		}
		byCell[cell.ID] = append(byCell[cell.ID], visit{
			agent: rec[agentI], lat: rec[latI], lon: rec[lonI], timestamp: rec[timeI],
		})
	}
	if msgLog != nil && dropped > 0 {
		msgLog <- fmt.Sprintf("%d points fell outside every grid cell and were dropped", dropped)
	}

	ids := make([]int, 0, len(byCell))
	for id := range byCell {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	outHeader := []string{cols.Agent, cols.Latitude, cols.Longitude, timeCol, "cell_id", "bucket_id"}
	for _, id := range ids {
		visits := byCell[id]
		sort.SliceStable(visits, func(i, j int) bool { return visits[i].timestamp < visits[j].timestamp })
		dir := filepath.Join(root, cellDirName(id))
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nCells, nRows, fmt.Errorf("trajgrid: while creating cell directory: %v", err)
		}
		path := filepath.Join(dir, bucketFileName(bucketID))
		if err := appendVisits(path, outHeader, visits, id, bucketID); err != nil {
			return nCells, nRows, err
		}
		nCells++
		nRows += len(visits)
	}
	return nCells, nRows, nil
}

// appendVisits appends rows to the visit file at path, writing the
// header only when the file does not exist yet.
func appendVisits(path string, header []string, visits []visit, cellID, bucketID int) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("trajgrid: while opening visit file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("trajgrid: while writing visit file: %v", err)
		}
	}
	cellS, bucketS := strconv.Itoa(cellID), strconv.Itoa(bucketID)
	for _, v := range visits {
		if err := w.Write([]string{v.agent, v.lat, v.lon, v.timestamp, cellS, bucketS}); err != nil {
			return fmt.Errorf("trajgrid: while writing visit file: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}
