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
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ScanBuckets reports which cell_<id> directories under root contain
// the visit file for bucketID and which do not. Found cell identifiers
// are returned in ascending order; missing directories are returned by
// name. Entries under root that are not cell directories are ignored.
func ScanBuckets(root string, bucketID int) (found []int, missing []string, err error) {
	root = os.ExpandEnv(root)
	entries, err := ioutil.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("trajgrid: while scanning %s: %v", root, err)
	}
	name := bucketFileName(bucketID)
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "cell_") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "cell_"))
		if err != nil {
			continue
		}
		_, err = os.Stat(filepath.Join(root, e.Name(), name))
		switch {
		case err == nil:
			found = append(found, id)
		case os.IsNotExist(err):
			missing = append(missing, e.Name())
		default:
			return nil, nil, fmt.Errorf("trajgrid: while scanning %s: %v", e.Name(), err)
		}
	}
	sort.Ints(found)
	sort.Strings(missing)
	return found, missing, nil
}

// WriteScanSummary writes the found cell identifiers as a
// single-column CSV file.
func WriteScanSummary(filename string, found []int) error {
	f, err := os.Create(os.ExpandEnv(filename))
	if err != nil {
		return fmt.Errorf("trajgrid: while creating scan summary: %v", err)
	}
	w := csv.NewWriter(f)
	w.Write([]string{"cell_id"})
	for _, id := range found {
		w.Write([]string{strconv.Itoa(id)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("trajgrid: while writing scan summary: %v", err)
	}
	return f.Close()
}
