// Go implementation of the StackBlur algorithm described here:
// http://incubator.quasimondo.com/processing/fast_blur_deluxe.php
// reworked for a single luminance plane.

package ghtface

type blurstack struct {
	v    uint32
	next *blurstack
}

var mulTable = []uint32{
	512, 512, 456, 512, 328, 456, 335, 512, 405, 328, 271, 456, 388, 335, 292, 512,
	454, 405, 364, 328, 298, 271, 496, 456, 420, 388, 360, 335, 312, 292, 273, 512,
	482, 454, 428, 405, 383, 364, 345, 328, 312, 298, 284, 271, 259, 496, 475, 456,
	437, 420, 404, 388, 374, 360, 347, 335, 323, 312, 302, 292, 282, 273, 265, 512,
	497, 482, 468, 454, 441, 428, 417, 405, 394, 383, 373, 364, 354, 345, 337, 328,
	320, 312, 305, 298, 291, 284, 278, 271, 265, 259, 507, 496, 485, 475, 465, 456,
	446, 437, 428, 420, 412, 404, 396, 388, 381, 374, 367, 360, 354, 347, 341, 335,
	329, 323, 318, 312, 307, 302, 297, 292, 287, 282, 278, 273, 269, 265, 261, 512,
	505, 497, 489, 482, 475, 468, 461, 454, 447, 441, 435, 428, 422, 417, 411, 405,
	399, 394, 389, 383, 378, 373, 368, 364, 359, 354, 350, 345, 341, 337, 332, 328,
	324, 320, 316, 312, 309, 305, 301, 298, 294, 291, 287, 284, 281, 278, 274, 271,
	268, 265, 262, 259, 257, 507, 501, 496, 491, 485, 480, 475, 470, 465, 460, 456,
	451, 446, 442, 437, 433, 428, 424, 420, 416, 412, 408, 404, 400, 396, 392, 388,
	385, 381, 377, 374, 370, 367, 363, 360, 357, 354, 350, 347, 344, 341, 338, 335,
	332, 329, 326, 323, 320, 318, 315, 312, 310, 307, 304, 302, 299, 297, 294, 292,
	289, 287, 285, 282, 280, 278, 275, 273, 271, 269, 267, 265, 263, 261, 259,
}

var shgTable = []uint32{
	9, 11, 12, 13, 13, 14, 14, 15, 15, 15, 15, 16, 16, 16, 16, 17,
	17, 17, 17, 17, 17, 17, 18, 18, 18, 18, 18, 18, 18, 18, 18, 19,
	19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 20, 20, 20,
	20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
}

func (bs *blurstack) clone() *blurstack {
	return &blurstack{bs.v, bs.next}
}

// Stackblur smooths the luminance grid in place with the given odd kernel
// size and returns it; the blur radius is (kernel-1)/2. Kernel sizes below 3
// leave the grid untouched.
func Stackblur(g *Gray, kernel int) *Gray {
	radius := uint32((kernel - 1) / 2)
	if radius == 0 || g.Width == 0 || g.Height == 0 {
		return g
	}
	if radius >= uint32(len(mulTable)) {
		radius = uint32(len(mulTable) - 1)
	}

	var stackEnd, stackIn, stackOut *blurstack
	var (
		x, y, i, p, yp, yi, yw,
		vSum, vOutSum, vInSum, pv uint32
	)

	width, height := uint32(g.Width), uint32(g.Height)
	div := radius + radius + 1
	widthMinus1 := width - 1
	heightMinus1 := height - 1
	radiusPlus1 := radius + 1
	sumFactor := radiusPlus1 * (radiusPlus1 + 1) / 2

	bs := blurstack{}
	stackStart := bs.clone()
	stack := stackStart

	for i = 1; i < div; i++ {
		stack.next = bs.clone()
		stack = stack.next
		if i == radiusPlus1 {
			stackEnd = stack
		}
	}
	stack.next = stackStart

	mulSum := mulTable[radius]
	shgSum := shgTable[radius]

	for y = 0; y < height; y++ {
		vInSum, vSum = 0, 0

		pv = uint32(g.Pix[yi])
		vOutSum = radiusPlus1 * pv
		vSum += sumFactor * pv

		stack = stackStart
		for i = 0; i < radiusPlus1; i++ {
			stack.v = pv
			stack = stack.next
		}

		for i = 1; i < radiusPlus1; i++ {
			var diff uint32
			if widthMinus1 < i {
				diff = widthMinus1
			} else {
				diff = i
			}
			pv = uint32(g.Pix[yi+diff])
			stack.v = pv

			vSum += stack.v * (radiusPlus1 - i)
			vInSum += pv
			stack = stack.next
		}
		stackIn = stackStart
		stackOut = stackEnd

		for x = 0; x < width; x++ {
			g.Pix[yi] = uint8((vSum * mulSum) >> shgSum)

			vSum -= vOutSum
			vOutSum -= stackIn.v

			p = x + radiusPlus1
			if p > widthMinus1 {
				p = widthMinus1
			}
			stackIn.v = uint32(g.Pix[yw+p])
			vInSum += stackIn.v
			vSum += vInSum

			stackIn = stackIn.next

			pv = stackOut.v
			vOutSum += pv
			vInSum -= pv

			stackOut = stackOut.next

			yi++
		}
		yw += width
	}

	for x = 0; x < width; x++ {
		vInSum, vSum = 0, 0

		yi = x
		pv = uint32(g.Pix[yi])
		vOutSum = radiusPlus1 * pv
		vSum += sumFactor * pv

		stack = stackStart
		for i = 0; i < radiusPlus1; i++ {
			stack.v = pv
			stack = stack.next
		}

		yp = width
		for i = 1; i <= radius; i++ {
			yi = yp + x
			pv = uint32(g.Pix[yi])
			stack.v = pv

			vSum += stack.v * (radiusPlus1 - i)
			vInSum += pv

			stack = stack.next
			if i < heightMinus1 {
				yp += width
			}
		}

		yi = x
		stackIn = stackStart
		stackOut = stackEnd

		for y = 0; y < height; y++ {
			g.Pix[yi] = uint8((vSum * mulSum) >> shgSum)

			vSum -= vOutSum
			vOutSum -= stackIn.v

			p = y + radiusPlus1
			if p > heightMinus1 {
				p = heightMinus1
			}
			stackIn.v = uint32(g.Pix[x+p*width])
			vInSum += stackIn.v
			vSum += vInSum

			stackIn = stackIn.next

			pv = stackOut.v
			vOutSum += pv
			vInSum -= pv

			stackOut = stackOut.next

			yi += width
		}
	}
	return g
}
