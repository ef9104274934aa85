package render

import (
	"sync"

	"gocv.io/x/gocv"
)

// magmaAnchors are RGB control points of the magma perceptual colormap
// sampled at sixteenth intervals.  The full 256 entry lookup table is built
// by linear interpolation between anchors.
var magmaAnchors = [][3]uint8{
	{0, 0, 4},       // #000004
	{13, 8, 41},     // #0D0829
	{34, 12, 74},    // #220C4A
	{62, 15, 110},   // #3E0F6E
	{89, 22, 126},   // #59167E
	{115, 31, 129},  // #731F81
	{141, 41, 129},  // #8D2981
	{167, 50, 126},  // #A7327E
	{193, 59, 117},  // #C13B75
	{218, 71, 105},  // #DA4769
	{236, 88, 91},   // #EC585B
	{247, 110, 82},  // #F76E52
	{252, 135, 86},  // #FC8756
	{254, 160, 100}, // #FEA064
	{254, 186, 119}, // #FEBA77
	{253, 213, 151}, // #FDD597
	{252, 253, 191}, // #FCFDBF
}

var (
	magmaOnce sync.Once
	magmaLUT  gocv.Mat
)

// magmaColorMap returns the 256x1 BGR lookup table Mat for the magma
// colormap.  The Mat lives for the lifetime of the process.
func magmaColorMap() gocv.Mat {

	magmaOnce.Do(func() {
		magmaLUT = gocv.NewMatWithSize(256, 1, gocv.MatTypeCV8UC3)

		ptr, err := magmaLUT.DataPtrUint8()

		if err != nil {
			// a fresh continuous Mat always exposes its buffer
			panic(err)
		}

		segments := len(magmaAnchors) - 1

		for i := 0; i < 256; i++ {
			// position of this entry along the anchor segments
			t := float64(i) / 255.0 * float64(segments)
			seg := int(t)

			if seg >= segments {
				seg = segments - 1
			}

			frac := t - float64(seg)

			lo := magmaAnchors[seg]
			hi := magmaAnchors[seg+1]

			r := uint8(float64(lo[0]) + frac*(float64(hi[0])-float64(lo[0])))
			g := uint8(float64(lo[1]) + frac*(float64(hi[1])-float64(lo[1])))
			b := uint8(float64(lo[2]) + frac*(float64(hi[2])-float64(lo[2])))

			// OpenCV Mats are BGR ordered
			ptr[i*3] = b
			ptr[i*3+1] = g
			ptr[i*3+2] = r
		}
	})

	return magmaLUT
}
