// Package dspf reads and writes GRASS display files: iso-surface geometry
// extracted from 3D rasters by marching cubes, stored as a fixed header
// followed by run-length compressed cube records.
//
// A data section is a sequence of two record kinds distinguished by the
// high bit of their first byte:
//
//	run marker:  1 byte, 0x80|n, n consecutive empty cubes (1..126)
//	cube record: 1 byte threshold count (0..127), 2 bytes big-endian
//	             payload size, payload
//
// The payload is the polygon count of every threshold, then the threshold
// table index of every threshold, then the packed polygons.
package dspf

// Format limits.
const (
	MaxThresholds     = 127 // thresholds per cube and entries in the header table
	MaxThresholdIndex = 126 // highest threshold table index a cube may reference
	MaxPolygons       = 10  // polygons per threshold within one cube
	MaxRun            = 126 // empty cubes covered by one run marker
)

const (
	runFlag        = 0x80
	cubeHeaderSize = 3
	maxPayload     = 0xFFFF
	pointSize      = 3
)
