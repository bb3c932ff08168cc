package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelFormatLayout(t *testing.T) {
	testCases := []struct {
		format    PixelFormat
		name      string
		channels  int
		pixelSize int
		depth     Depth
	}{
		{Format8UC1, "8UC1", 1, 1, Depth8U},
		{Format8UC4, "8UC4", 4, 4, Depth8U},
		{Format32FC1, "32FC1", 1, 4, Depth32F},
		{Format32FC4, "32FC4", 4, 16, Depth32F},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.format.String())
			assert.Equal(t, tc.channels, tc.format.Channels())
			assert.Equal(t, tc.pixelSize, tc.format.PixelSize())
			assert.Equal(t, tc.depth, tc.format.Depth())

			parsed, err := ParsePixelFormat("CV_" + tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.format, parsed)
		})
	}

	_, err := ParsePixelFormat("16UC3")
	assert.Error(t, err)
	assert.False(t, PixelFormat(0).Valid())
}

func TestBufferViews(t *testing.T) {
	buf, err := NewBuffer(Size{Width: 5, Height: 3}, Format8UC4)
	require.NoError(t, err)
	assert.Len(t, buf.Data, 60)
	assert.Equal(t, 20, buf.Stride())

	rgba, err := buf.RGBA()
	require.NoError(t, err)
	rgba.Pix[0] = 9
	assert.Equal(t, byte(9), buf.Data[0], "view must share memory")

	gray, err := NewBuffer(Size{Width: 5, Height: 3}, Format8UC1)
	require.NoError(t, err)
	_, err = gray.RGBA()
	assert.Error(t, err, "only 8UC4 has an RGBA view")

	_, err = NewBuffer(Size{}, Format8UC1)
	assert.Error(t, err)
	_, err = NewBuffer(Size{Width: 1, Height: 1}, PixelFormat(99))
	assert.Error(t, err)
}
