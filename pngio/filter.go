package pngio

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// paeth implements the Paeth predictor: a is the left
// byte, b the byte above and c the byte above-left.
func paeth(a, b, c uint8) uint8 {
	pc := int(c)
	pa := int(b) - pc
	pb := int(a) - pc
	pc = abs(pa + pb)
	pa = abs(pa)
	pb = abs(pb)
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// unfilter reverses the filter ft applied to cdat in place, given the
// already reconstructed previous row pdat.
func unfilter(ft byte, cdat, pdat []byte, bpp int) error {
	switch ft {
	case ftNone:
		// No-op.
	case ftSub:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case ftUp:
		for i, p := range pdat {
			cdat[i] += p
		}
	case ftAverage:
		// The first column has no column to the left of it.
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case ftPaeth:
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += paeth(0, pdat[i], 0)
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += paeth(cdat[i-bpp], pdat[i], pdat[i-bpp])
		}
	default:
		return FormatError("bad filter type")
	}
	return nil
}

// filter fills cand[ft][1:] with every filtered variant of cdat and
// returns the filter type whose output has the smallest sum of absolute
// signed byte values. Each candidate carries its filter type at index 0.
func filter(cand *[nFilter][]byte, cdat, pdat []byte, bpp int) int {
	n := len(cdat)
	for ft := range cand {
		cand[ft] = grow(cand[ft], n+1)
		cand[ft][0] = byte(ft)
	}

	copy(cand[ftNone][1:], cdat)

	sub := cand[ftSub][1:]
	up := cand[ftUp][1:]
	avg := cand[ftAverage][1:]
	pth := cand[ftPaeth][1:]
	for i := range n {
		var left, upLeft uint8
		if i >= bpp {
			left, upLeft = cdat[i-bpp], pdat[i-bpp]
		}
		sub[i] = cdat[i] - left
		up[i] = cdat[i] - pdat[i]
		avg[i] = cdat[i] - uint8((int(left)+int(pdat[i]))/2)
		pth[i] = cdat[i] - paeth(left, pdat[i], upLeft)
	}

	best, bestSum := ftNone, -1
	for ft := range cand {
		sum := 0
		for _, b := range cand[ft][1:] {
			sum += abs(int(int8(b)))
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = ft, sum
		}
	}
	return best
}
