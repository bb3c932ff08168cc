package kernels

import (
	"image"
	"testing"
)

func benchmarkBox(b *testing.B, w, h, radius int) {
	src := genRGBA(w, h)
	dst := image.NewRGBA(src.Rect)
	f, err := NewBoxFilter(radius, EdgeReflect101)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Apply(dst, src)
	}
}

func BenchmarkBox_720p_r1(b *testing.B)  { benchmarkBox(b, 1280, 720, 1) }
func BenchmarkBox_1080p_r3(b *testing.B) { benchmarkBox(b, 1920, 1080, 3) }
func BenchmarkBox_1080p_r7(b *testing.B) { benchmarkBox(b, 1920, 1080, 7) }
