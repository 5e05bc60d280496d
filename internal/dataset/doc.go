// Package dataset supplies timestep slices of gridded fields.
//
// A [Source] opens one field at a time and returns a [Series]. Each open is
// independent: two jobs rendering different variables should each call
// Open rather than share a Series.
//
// The on-disk format is the .fgrid archive, a zstd-compressed stream of
// named float32 cubes (time × rows × cols):
//
//	magic    [8]byte  "FGRID\x00\x00\x01"
//	count    uint32
//	count × {
//	    nameLen uint16
//	    name    [nameLen]byte
//	    steps, rows, cols uint32
//	    values  [steps*rows*cols]float32
//	}
//
// All integers and floats are little-endian.
package dataset
