package imageutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTIFF returns a little- or big-endian TIFF block with an orientation
// tag in IFD0 and DateTimeOriginal in the Exif IFD.
func buildTIFF(order binary.ByteOrder, orientation uint16, dateTime string) []byte {
	buf := make([]byte, 76)
	if order == binary.LittleEndian {
		copy(buf, "II")
	} else {
		copy(buf, "MM")
	}
	order.PutUint16(buf[2:], 42)
	order.PutUint32(buf[4:], 8)

	// IFD0: orientation + Exif IFD pointer.
	order.PutUint16(buf[8:], 2)
	order.PutUint16(buf[10:], tagOrientation)
	order.PutUint16(buf[12:], typeShort)
	order.PutUint32(buf[14:], 1)
	order.PutUint16(buf[18:], orientation)
	order.PutUint16(buf[22:], tagExifIFD)
	order.PutUint16(buf[24:], typeLong)
	order.PutUint32(buf[26:], 1)
	order.PutUint32(buf[30:], 38)
	order.PutUint32(buf[34:], 0)

	// Exif IFD: DateTimeOriginal stored out of line.
	order.PutUint16(buf[38:], 1)
	order.PutUint16(buf[40:], tagDateTimeOriginal)
	order.PutUint16(buf[42:], typeASCII)
	order.PutUint32(buf[44:], 20)
	order.PutUint32(buf[48:], 56)
	order.PutUint32(buf[52:], 0)
	copy(buf[56:], dateTime)
	return buf
}

func buildJPEG(tiff []byte) []byte {
	out := []byte{0xFF, 0xD8}
	if tiff != nil {
		seg := append([]byte("Exif\x00\x00"), tiff...)
		out = append(out, 0xFF, 0xE1)
		out = binary.BigEndian.AppendUint16(out, uint16(len(seg)+2))
		out = append(out, seg...)
	} else {
		// JFIF APP0 only.
		app0 := []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
		out = append(out, 0xFF, 0xE0)
		out = binary.BigEndian.AppendUint16(out, uint16(len(app0)+2))
		out = append(out, app0...)
	}
	return append(out, 0xFF, 0xD9)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadOrientation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"jpeg little endian", buildJPEG(buildTIFF(binary.LittleEndian, 6, "2019:07:04 10:20:30")), 6},
		{"jpeg big endian", buildJPEG(buildTIFF(binary.BigEndian, 8, "2019:07:04 10:20:30")), 8},
		{"tiff file", buildTIFF(binary.BigEndian, 3, "2019:07:04 10:20:30"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "img", tt.data)
			got, err := ReadOrientation(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadOrientationErrors(t *testing.T) {
	_, err := ReadOrientation(writeFile(t, "plain.jpg", buildJPEG(nil)))
	assert.ErrorIs(t, err, ErrNoExif)

	_, err = ReadOrientation(writeFile(t, "image.png", []byte("\x89PNG\r\n\x1a\n")))
	assert.ErrorIs(t, err, ErrNotJPEG)

	_, err = ReadOrientation(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteOrientation(t *testing.T) {
	path := writeFile(t, "a.jpg", buildJPEG(buildTIFF(binary.BigEndian, 6, "2019:07:04 10:20:30")))

	require.NoError(t, WriteOrientation(path, 1))
	got, err := ReadOrientation(path)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	assert.Error(t, WriteOrientation(path, 9))
}

func TestDateTimeOriginal(t *testing.T) {
	path := writeFile(t, "a.jpg", buildJPEG(buildTIFF(binary.LittleEndian, 1, "2019:07:04 10:20:30")))

	got, ok, err := DateTimeOriginal(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2019, 7, 4, 10, 20, 30, 0, time.Local)))

	_, ok, err = DateTimeOriginal(writeFile(t, "b.jpg", buildJPEG(nil)))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = DateTimeOriginal(writeFile(t, "c.jpg", buildJPEG(buildTIFF(binary.LittleEndian, 1, "0000:00:00 00:00:00"))))
	require.NoError(t, err)
	assert.False(t, ok)
}
