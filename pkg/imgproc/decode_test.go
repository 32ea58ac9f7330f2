package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, w, h int, c color.NRGBA, f imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, c), f))
	return buf.Bytes()
}

func TestDecodePNGKeepsDimensions(t *testing.T) {
	data := encodeTestImage(t, 320, 160, color.NRGBA{10, 20, 30, 255}, imaging.PNG)

	g, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 320, g.Width)
	require.Equal(t, 160, g.Height)
	require.Equal(t, 3, g.Channels)
	require.Equal(t, []uint8{10, 20, 30}, g.Pix[:3])
}

func TestDecodeJPEGKeepsDimensions(t *testing.T) {
	data := encodeTestImage(t, 200, 90, color.NRGBA{255, 255, 255, 255}, imaging.JPEG)

	g, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 200, g.Width)
	require.Equal(t, 90, g.Height)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	png := encodeTestImage(t, 64, 64, color.NRGBA{0, 0, 0, 255}, imaging.PNG)

	cases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"truncated": png[:len(png)/3],
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			g, err := Decode(data)
			require.Nil(t, g)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			require.True(t, errors.Is(err, ErrUndecodable))
		})
	}
}

func TestDecodePDFFirstPage(t *testing.T) {
	g, err := Decode(minimalPDF(288, 144))
	require.NoError(t, err)
	require.Equal(t, 3, g.Channels)
	require.Greater(t, g.Width, g.Height)
}

func TestIsSupportedMIME(t *testing.T) {
	require.True(t, IsSupportedMIME(SniffMIME(encodeTestImage(t, 8, 8, color.NRGBA{A: 255}, imaging.PNG))))
	require.False(t, IsSupportedMIME(SniffMIME([]byte("GIF89a"))))
}

// minimalPDF writes a single blank page of the given size in points with a
// correct cross-reference table.
func minimalPDF(w, h int) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents 4 0 R /Resources << >> >>", w, h),
		"<< /Length 0 >>\nstream\n\nendstream",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}
