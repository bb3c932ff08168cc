package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSize_MegaPixels performs table-driven tests on the MegaPixels method.
func TestSize_MegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		size     Size
		expected float64
	}{
		{name: "Full HD 1080p", size: Size1080p, expected: 2.07},
		{name: "4K UHD", size: Size4K, expected: 8.29},
		{name: "SXGA", size: SizeSXGA, expected: 1.31},
		{name: "Zero Width", size: Size{Width: 0, Height: 1080}, expected: 0.0},
		{name: "Negative Height", size: Size{Width: 1920, Height: -1}, expected: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.size.MegaPixels(), 1e-9)
		})
	}
}

func TestParseSize(t *testing.T) {
	testCases := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{input: "1280x720", want: Size720p},
		{input: " 1920X1080 ", want: Size1080p},
		{input: "sxga", want: SizeSXGA},
		{input: "1080p", want: Size1080p},
		{input: "64x64", want: Size{Width: 64, Height: 64}},
		{input: "1280", wantErr: true},
		{input: "axb", wantErr: true},
		{input: "0x10", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTypicalSizes(t *testing.T) {
	sizes := TypicalSizes()
	assert.Equal(t, []Size{Size720p, SizeSXGA, Size1080p}, sizes)
	assert.Equal(t, "1280x720", sizes[0].String())
}
