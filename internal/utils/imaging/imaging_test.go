package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare_DownscalesLargeImage(t *testing.T) {
	res, err := Prepare(encodePNG(t, 3000, 1500))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, MaxDimension, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestPrepare_KeepsSmallImageSize(t *testing.T) {
	res, err := Prepare(encodePNG(t, 200, 300))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestPrepare_RejectsNonImage(t *testing.T) {
	_, err := Prepare([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching the
// pixel data.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestPrepare_RejectsHugeDeclaredDimensions(t *testing.T) {
	data := withDeclaredSize(t, encodePNG(t, 10, 10), 60000, 60000)
	require.Less(t, len(data), MaxInputSize)

	_, err := Prepare(data)
	assert.ErrorIs(t, err, ErrTooManyPixels)
}
