package sid

// fcPoint is a measured (cutoff register, frequency in Hz) pair.
type fcPoint struct {
	x, y int
}

// Measured cutoff curves. The first and last points are repeated so the
// spline has end tangents; the 6581 curve also repeats the points around
// its discontinuity at 0x400.
var f0Points6581 = []fcPoint{
	{0, 220}, {0, 220},
	{128, 230}, {256, 250}, {384, 300}, {512, 420}, {640, 780}, {768, 1600},
	{832, 2300}, {896, 3200}, {960, 4300}, {992, 5000}, {1008, 5400}, {1016, 5700},
	{1023, 6000}, {1023, 6000},
	{1024, 4600}, {1024, 4600},
	{1032, 4800}, {1056, 5300}, {1088, 6000}, {1120, 6600}, {1152, 7200}, {1280, 9500},
	{1408, 12000}, {1536, 14500}, {1664, 16000}, {1792, 17100}, {1920, 17700},
	{2047, 18000}, {2047, 18000},
}

var f0Points8580 = []fcPoint{
	{0, 0}, {0, 0},
	{128, 800}, {256, 1600}, {384, 2500}, {512, 3300}, {640, 4100}, {768, 4800},
	{896, 5600}, {1024, 6500}, {1152, 7500}, {1280, 8400}, {1408, 9200}, {1536, 9800},
	{1664, 10500}, {1792, 11000}, {1920, 11700},
	{2047, 12500}, {2047, 12500},
}

// cubic returns the coefficients of the cubic through (x1,y1) and
// (x2,y2) with slopes k1 and k2 at the ends.
func cubic(x1, y1, x2, y2, k1, k2 float64) (a, b, c, d float64) {
	dx := x2 - x1
	dy := y2 - y1

	a = ((k1 + k2) - 2*dy/dx) / (dx * dx)
	b = ((k2-k1)/dx - 3*(x1+x2)*a) / 2
	c = k1 - (3*x1*a+2*b)*x1
	d = y1 - ((x1*a+b)*x1+c)*x1
	return
}

// interpolate plots a piecewise cubic through points into dst, one
// value per integer x. Tangents come from the neighbouring points; a
// repeated x marks an end point where the tangent is taken from the
// segment itself. Negative values are clamped to zero.
func interpolate(points []fcPoint, dst []int) {
	for i := 0; i+3 < len(points); i++ {
		p0, p1, p2, p3 := points[i], points[i+1], points[i+2], points[i+3]
		if p1.x == p2.x {
			continue
		}

		x0, y0 := float64(p0.x), float64(p0.y)
		x1, y1 := float64(p1.x), float64(p1.y)
		x2, y2 := float64(p2.x), float64(p2.y)
		x3, y3 := float64(p3.x), float64(p3.y)

		var k1, k2 float64
		switch {
		case p0.x == p1.x && p2.x == p3.x:
			k1 = (y2 - y1) / (x2 - x1)
			k2 = k1
		case p0.x == p1.x:
			k2 = (y3 - y1) / (x3 - x1)
			k1 = (3*(y2-y1)/(x2-x1) - k2) / 2
		case p2.x == p3.x:
			k1 = (y2 - y0) / (x2 - x0)
			k2 = (3*(y2-y1)/(x2-x1) - k1) / 2
		default:
			k1 = (y2 - y0) / (x2 - x0)
			k2 = (y3 - y1) / (x3 - x1)
		}

		a, b, c, d := cubic(x1, y1, x2, y2, k1, k2)
		for x := p1.x; x <= p2.x && x < len(dst); x++ {
			fx := float64(x)
			y := ((a*fx+b)*fx+c)*fx + d
			if y < 0 {
				y = 0
			}
			dst[x] = int(y + 0.5)
		}
	}
}
