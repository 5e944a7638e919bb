package sid

import "math"

// buildDAC fills dac with the output of an R-2R ladder of the given
// width. ratio is the 2R/R resistor ratio and term tells whether the
// ladder has its 2R termination resistor; the 6581 lacks it and uses a
// ratio of about 2.20, which is what makes its DACs non-linear.
//
// Each bit voltage is found by source transformation of the ladder with
// only that bit set; the output for a code is the superposition of its
// set bits, scaled back to the full code range.
func buildDAC(dac []uint16, bits int, ratio float64, term bool) {
	vbit := make([]float64, bits)

	for setBit := 0; setBit < bits; setBit++ {
		vn := 1.0
		r := 1.0
		r2 := ratio * r

		rn := math.Inf(1)
		if term {
			rn = r2
		}

		bit := 0
		for ; bit < setBit; bit++ {
			if math.IsInf(rn, 1) {
				rn = r + r2
			} else {
				rn = r + r2*rn/(r2+rn)
			}
		}

		if math.IsInf(rn, 1) {
			rn = r2
		} else {
			rn = r2 * rn / (r2 + rn)
			vn = vn * rn / r2
		}

		for bit++; bit < bits; bit++ {
			rn += r
			i := vn / rn
			rn = r2 * rn / (r2 + rn)
			vn = rn * i
		}

		vbit[setBit] = vn
	}

	scale := float64(int(1)<<bits - 1)
	for code := range dac {
		vo := 0.0
		for j := 0; j < bits; j++ {
			if code>>j&1 != 0 {
				vo += vbit[j]
			}
		}
		dac[code] = uint16(scale*vo + 0.5)
	}
}
