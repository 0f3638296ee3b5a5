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
)

// Materialize creates one directory per grid cell feature under root
// and writes each cell's single-feature collection to
// root/cell_<id>/cell_<id>.geojson. Directory creation is idempotent
// so reruns are safe. Features missing the idField property fall back
// to their index in the collection; the number of such features is
// returned along with the number of folders written.
func Materialize(fc *FeatureCollection, root, idField string, msgLog chan string) (created, missingID int, err error) {
	root = os.ExpandEnv(root)
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return 0, 0, fmt.Errorf("trajgrid: while creating output root: %v", err)
	}
	for i, f := range fc.Features {
		id, ok := f.propInt(idField)
		if !ok {
			id = i
			missingID++
		}
		name := cellDirName(id)
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return created, missingID, fmt.Errorf("trajgrid: while creating cell directory: %v", err)
		}
		single := NewFeatureCollection([]*Feature{f})
		if err := single.WriteFile(filepath.Join(dir, name+".geojson")); err != nil {
			return created, missingID, err
		}
		created++
		if msgLog != nil && created%1000 == 0 {
			msgLog <- fmt.Sprintf("%d cell folders created", created)
		}
	}
	if msgLog != nil && missingID > 0 {
		msgLog <- fmt.Sprintf("%d features had no %q field; feature index used instead", missingID, idField)
	}
	return created, missingID, nil
}
