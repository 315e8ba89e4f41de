package pngio

import "encoding/binary"

// Transform is a set of decode-time sample conversions.
type Transform uint

const (
	// Strip16 keeps the high byte of 16-bit samples.
	Strip16 Transform = 1 << iota
	// Packing widens sub-byte grayscale samples to one byte each. Palette
	// indices keep their declared depth.
	Packing
	// Deinterlace scatters Adam7 passes into full rows.
	Deinterlace
	// Expand scales low-depth grayscale to 8 bits and turns a grayscale or
	// truecolor tRNS key into an alpha channel.
	Expand
	// GrayToRGB replicates grayscale into three colour channels.
	GrayToRGB
)

func (d *Reader) SetStrip16()           { d.transforms |= Strip16 }
func (d *Reader) SetPacking()           { d.transforms |= Packing }
func (d *Reader) SetInterlaceHandling() { d.transforms |= Deinterlace }
func (d *Reader) SetExpand()            { d.transforms |= Expand }
func (d *Reader) SetGrayToRGB()         { d.transforms |= GrayToRGB }

// Info describes the rows ReadImage produces once transforms are applied.
type Info struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int
	// Interlace is the declared method; rows always come out in order.
	Interlace int
	Channels  int
	RowBytes  int
}

// UpdateInfo returns the image description after the configured
// transforms.
func (d *Reader) UpdateInfo() Info {
	p := d.plan()
	return Info{
		Width:     d.hdr.Width,
		Height:    d.hdr.Height,
		BitDepth:  p.outDepth,
		ColorType: p.outColorType,
		Interlace: d.hdr.Interlace,
		Channels:  p.outChannels,
		RowBytes:  (d.hdr.Width*p.outChannels*p.outDepth + 7) / 8,
	}
}

// samplePlan is the per-pixel conversion derived from the header, the
// tRNS chunk and the transforms.
type samplePlan struct {
	inChannels int
	inDepth    int

	strip     bool
	scaleGray bool
	keyAlpha  bool
	key       [3]uint16
	replicate bool

	outColorType int
	outChannels  int
	outDepth     int
}

func (d *Reader) plan() samplePlan {
	ct, depth := d.hdr.ColorType, d.hdr.BitDepth
	p := samplePlan{
		inChannels: channels(ct),
		inDepth:    depth,
	}

	if d.transforms&Strip16 != 0 && depth == 16 {
		p.strip = true
		depth = 8
	}
	if d.transforms&Expand != 0 {
		if ct == ColorGray && depth < 8 {
			p.scaleGray = true
			depth = 8
		}
		if d.hasTRNS && (ct == ColorGray || ct == ColorRGB) {
			p.keyAlpha = true
			mask := uint16(1<<d.hdr.BitDepth - 1)
			for i := range channels(ct) {
				p.key[i] = binary.BigEndian.Uint16(d.trns[2*i:]) & mask
			}
			if ct == ColorGray {
				ct = ColorGrayAlpha
			} else {
				ct = ColorRGBA
			}
		}
	}
	if d.transforms&Packing != 0 && depth < 8 && ct != ColorPalette {
		depth = 8
	}
	if d.transforms&GrayToRGB != 0 {
		switch ct {
		case ColorGray:
			ct, p.replicate = ColorRGB, true
		case ColorGrayAlpha:
			ct, p.replicate = ColorRGBA, true
		}
	}

	p.outColorType = ct
	p.outChannels = channels(ct)
	p.outDepth = depth
	return p
}

func (p *samplePlan) identity() bool {
	return !p.strip && !p.scaleGray && !p.keyAlpha && !p.replicate &&
		p.inDepth == p.outDepth && p.inChannels == p.outChannels
}

// sample extracts sample i of a row packed at depth bits per sample.
func sample(row []byte, i, depth int) uint16 {
	switch depth {
	case 8:
		return uint16(row[i])
	case 16:
		return binary.BigEndian.Uint16(row[2*i:])
	}
	bit := i * depth
	shift := 8 - depth - bit%8
	return uint16(row[bit/8]>>shift) & (1<<depth - 1)
}

// emit converts a reduced-image row of width pixels and scatters it into
// dst starting at pixel xOff, every xStep pixels.
func (p *samplePlan) emit(dst, src []byte, width, xOff, xStep int) {
	outBytes := p.outChannels * p.outDepth / 8
	if p.identity() && xStep == 1 {
		copy(dst[xOff*outBytes:], src[:width*outBytes])
		return
	}

	var (
		in  [4]uint16
		out [4]uint16
	)
	maxOut := uint16(1<<p.outDepth - 1)
	for i := range width {
		for c := range p.inChannels {
			in[c] = sample(src, i*p.inChannels+c, p.inDepth)
		}

		transparent := false
		if p.keyAlpha {
			transparent = true
			for c := range p.inChannels {
				transparent = transparent && in[c] == p.key[c]
			}
		}

		for c := range p.inChannels {
			v := in[c]
			switch {
			case p.strip:
				v >>= 8
			case p.scaleGray:
				v = v * 0xFF / (1<<p.inDepth - 1)
			}
			in[c] = v
		}

		n := 0
		switch {
		case p.replicate:
			out[0], out[1], out[2] = in[0], in[0], in[0]
			n = 3
			if p.inChannels == 2 {
				out[3] = in[1]
				n = 4
			}
		default:
			n = copy(out[:], in[:p.inChannels])
		}
		if p.keyAlpha {
			out[n] = maxOut
			if transparent {
				out[n] = 0
			}
			n++
		}

		o := dst[(xOff+i*xStep)*outBytes:]
		if p.outDepth == 16 {
			for c := range n {
				binary.BigEndian.PutUint16(o[2*c:], out[c])
			}
			continue
		}
		for c := range n {
			o[c] = uint8(out[c])
		}
	}
}
