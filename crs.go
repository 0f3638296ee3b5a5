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
	"regexp"
	"strconv"

	"github.com/ctessum/geom/proj"
)

// wgs84Proj4 is the spatial reference definition for geographic
// (longitude/latitude) WGS84 coordinates.
const wgs84Proj4 = "+proj=longlat +datum=WGS84 +no_defs"

var epsgTag = regexp.MustCompile(`(?i)epsg\s*:\s*(\d+)`)

// ParseEPSG extracts the numeric EPSG identifier from a coordinate
// system tag such as "EPSG:32654" or "epsg : 4326". The second return
// value is false if the tag contains no such identifier, in which case
// callers should assume an unprojected geographic system.
func ParseEPSG(tag string) (int, bool) {
	m := epsgTag.FindStringSubmatch(tag)
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

// Proj4FromEPSG returns the Proj4 definition for the coordinate systems
// this package emits: geographic WGS84 (EPSG:4326) and the WGS84 UTM
// zones (EPSG:326xx north, EPSG:327xx south).
func Proj4FromEPSG(epsg int) (string, error) {
	switch {
	case epsg == 4326:
		return wgs84Proj4, nil
	case epsg >= 32601 && epsg <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", epsg-32600), nil
	case epsg >= 32701 && epsg <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", epsg-32700), nil
	}
	return "", fmt.Errorf("trajgrid: unsupported coordinate system EPSG:%d", epsg)
}

// SRFromEPSG returns the spatial reference for an EPSG identifier
// supported by Proj4FromEPSG.
func SRFromEPSG(epsg int) (*proj.SR, error) {
	p4, err := Proj4FromEPSG(epsg)
	if err != nil {
		return nil, err
	}
	sr, err := proj.Parse(p4)
	if err != nil {
		return nil, fmt.Errorf("trajgrid: while parsing projection for EPSG:%d: %v", epsg, err)
	}
	return sr, nil
}

// transforms returns the transformers between geographic WGS84
// coordinates and the planar system identified by epsg. For EPSG:4326
// both transformers are the identity.
func transforms(epsg int) (forward, inverse proj.Transformer, err error) {
	geoSR, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, nil, fmt.Errorf("trajgrid: while parsing WGS84 projection: %v", err)
	}
	planarSR, err := SRFromEPSG(epsg)
	if err != nil {
		return nil, nil, err
	}
	forward, err = geoSR.NewTransform(planarSR)
	if err != nil {
		return nil, nil, fmt.Errorf("trajgrid: while creating forward transform: %v", err)
	}
	inverse, err = planarSR.NewTransform(geoSR)
	if err != nil {
		return nil, nil, fmt.Errorf("trajgrid: while creating inverse transform: %v", err)
	}
	return forward, inverse, nil
}
