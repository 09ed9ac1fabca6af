package mood

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// inputSize is the classifier's expected input: 48x48 grayscale
const inputSize = 48

// floatPool recycles the normalized input buffers so repeated predictions
// do not churn allocations.
var floatPool = sync.Pool{
	New: func() interface{} {
		buf := make([]float32, inputSize*inputSize)
		return &buf
	},
}

// preprocess converts a frame to the classifier input: bilinear resize to
// 48x48, grayscale, normalized to [0,1]. The returned buffer comes from
// floatPool; callers must hand it back with releaseInput when done.
func preprocess(img image.Image) *[]float32 {
	resized := image.NewRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	bufPtr := floatPool.Get().(*[]float32)
	buf := *bufPtr

	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			offset := resized.PixOffset(x, y)
			r := float32(resized.Pix[offset])
			g := float32(resized.Pix[offset+1])
			b := float32(resized.Pix[offset+2])
			// ITU-R BT.601 luma weights.
			buf[y*inputSize+x] = (0.299*r + 0.587*g + 0.114*b) / 255
		}
	}
	return bufPtr
}

// releaseInput returns a preprocessing buffer to the pool
func releaseInput(buf *[]float32) {
	if buf != nil {
		floatPool.Put(buf)
	}
}
