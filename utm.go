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

import "math"

// UTMZone returns the number (1–60) of the 6-degree-wide UTM zone
// covering longitude lon. Longitudes at or beyond the antimeridian are
// clamped into the outermost zones.
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 { // lon == 180 would otherwise yield zone 61
		zone = 60
	}
	return zone
}

// UTMEPSG returns the EPSG identifier of the WGS84 UTM coordinate system
// whose zone covers the given geographic coordinate: 32600+zone in the
// northern hemisphere and 32700+zone in the southern.
func UTMEPSG(lon, lat float64) int {
	zone := UTMZone(lon)
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}
