package images

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// FillStrategy selects how warmup content is generated for a buffer.
type FillStrategy int

// FillStrategy constants.
const (
	// FillRandom fills with seeded pseudo-random values. 8-bit channels are
	// uniform over [0, 255], float channels uniform over [-128, 128).
	FillRandom FillStrategy = iota
	// FillPattern fills with a fixed, seed-independent sine/checker pattern.
	FillPattern
	// FillConstant fills every channel with the mid-range value.
	FillConstant
)

// String returns the strategy name.
func (s FillStrategy) String() string {
	switch s {
	case FillRandom:
		return "random"
	case FillPattern:
		return "pattern"
	case FillConstant:
		return "constant"
	default:
		return fmt.Sprintf("FillStrategy(%d)", int(s))
	}
}

// seedStream is mixed into the second PCG word so seed 0 still produces a
// well-distributed stream.
const seedStream = 0x9e3779b97f4a7c15

// Fill populates buf in place. Calls with the same buffer shape, strategy and
// seed produce byte-identical content.
//
// Arguments:
// - buf: The buffer to populate.
// - strategy: How values are generated.
// - seed: The generator seed; ignored by FillPattern and FillConstant.
//
// Returns:
// - error: If the buffer format or strategy is unknown, or the data length does
// not match the buffer shape.
func Fill(buf *Buffer, strategy FillStrategy, seed uint64) error {
	if buf == nil {
		return fmt.Errorf("fill: nil buffer")
	}
	if !buf.Format.Valid() {
		return fmt.Errorf("fill: invalid pixel format %s", buf.Format)
	}
	if want := buf.Width * buf.Height * buf.Format.PixelSize(); len(buf.Data) != want {
		return fmt.Errorf("fill: buffer holds %d bytes, %s %s needs %d",
			len(buf.Data), buf.Size(), buf.Format, want)
	}

	switch strategy {
	case FillRandom:
		fillRandom(buf, rand.New(rand.NewPCG(seed, seed^seedStream)))
	case FillPattern:
		fillPattern(buf)
	case FillConstant:
		fillConstant(buf)
	default:
		return fmt.Errorf("fill: unknown strategy %s", strategy)
	}
	return nil
}

func fillRandom(buf *Buffer, rng *rand.Rand) {
	switch buf.Format.Depth() {
	case Depth8U:
		data := buf.Data
		i := 0
		for ; i+8 <= len(data); i += 8 {
			binary.LittleEndian.PutUint64(data[i:], rng.Uint64())
		}
		if i < len(data) {
			var tail [8]byte
			binary.LittleEndian.PutUint64(tail[:], rng.Uint64())
			copy(data[i:], tail[:])
		}
	case Depth32F:
		for i := 0; i < len(buf.Data); i += 4 {
			v := rng.Float32()*256 - 128
			binary.NativeEndian.PutUint32(buf.Data[i:], math.Float32bits(v))
		}
	}
}

// fillPattern writes a smooth diagonal sine wave modulated by an 8x8 checker,
// giving filters both gradients and hard edges to work on.
func fillPattern(buf *Buffer) {
	channels := buf.Format.Channels()
	elem := buf.Format.ElemSize()
	off := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			checker := float32(((x >> 3) + (y >> 3)) & 1)
			for c := 0; c < channels; c++ {
				phase := float32(x)*0.11 + float32(y)*0.07 + float32(c)*math32.Pi/4
				v := 0.5 + 0.4*math32.Sin(phase) + 0.1*(checker-0.5)*2
				writeUnit(buf.Data[off:off+elem], buf.Format.Depth(), v)
				off += elem
			}
		}
	}
}

func fillConstant(buf *Buffer) {
	elem := buf.Format.ElemSize()
	for off := 0; off < len(buf.Data); off += elem {
		writeUnit(buf.Data[off:off+elem], buf.Format.Depth(), 0.5)
	}
}

// writeUnit stores v, a value in [0, 1], scaled to the depth's range.
func writeUnit(dst []byte, depth Depth, v float32) {
	v = math32.Max(0, math32.Min(1, v))
	switch depth {
	case Depth8U:
		dst[0] = uint8(math32.Round(v * 255))
	case Depth32F:
		binary.NativeEndian.PutUint32(dst, math.Float32bits(v*256-128))
	}
}
