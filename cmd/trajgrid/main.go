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

// Command trajgrid is a command-line interface for building grids over
// areas of interest and partitioning agent trajectories into per-cell
// buckets.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/trajgrid/trajgridutil"
)

func main() {
	if err := trajgridutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
