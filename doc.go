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

/*
Package trajgrid builds spatial grids over areas of interest and
partitions agent trajectory records into per-cell buckets.

A grid is created by projecting the area of interest (AOI) into a
locally appropriate UTM coordinate system, covering its bounding box
with square cells, and clipping each cell to the AOI boundary. Cells
receive sequential identifiers in row-major scan order. Trajectory
points can then be assigned to the cell whose clipped polygon contains
them and written out as per-cell CSV files grouped into buckets.
*/
package trajgrid

// Version gives the version number of this version of trajgrid.
const Version = "0.1.0"
