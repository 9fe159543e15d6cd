package imageutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrNoExif is returned when a file carries no EXIF block.
var ErrNoExif = errors.New("no exif data")

const (
	tagOrientation      = 0x0112
	tagExifIFD          = 0x8769
	tagDateTimeOriginal = 0x9003

	typeShort = 3
	typeASCII = 2
	typeLong  = 4

	// exifScanLimit bounds how much of a file is read looking for EXIF.
	exifScanLimit = 1 << 20
)

// exifInfo is what we extract from an EXIF block. Offsets are absolute file
// offsets so the orientation can be patched in place.
type exifInfo struct {
	order             binary.ByteOrder
	orientation       int
	orientationOffset int64 // -1 when the tag is absent
	dateTimeOriginal  string
}

// ReadOrientation returns the EXIF orientation (1-8) of a JPEG or TIFF file.
// It returns 1 when the file has EXIF data but no orientation tag.
func ReadOrientation(path string) (int, error) {
	info, err := readExif(path)
	if err != nil {
		return 0, err
	}
	if info.orientationOffset < 0 {
		return 1, nil
	}
	return info.orientation, nil
}

// WriteOrientation overwrites the EXIF orientation tag of path in place.
func WriteOrientation(path string, orientation int) error {
	if orientation < 1 || orientation > 8 {
		return fmt.Errorf("invalid orientation %d", orientation)
	}
	info, err := readExif(path)
	if err != nil {
		return err
	}
	if info.orientationOffset < 0 {
		return fmt.Errorf("%s: no orientation tag", path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 2)
	info.order.PutUint16(buf, uint16(orientation))
	if _, err := f.WriteAt(buf, info.orientationOffset); err != nil {
		return fmt.Errorf("write orientation: %w", err)
	}
	return nil
}

// DateTimeOriginal returns the EXIF capture time of path, interpreted in
// local time. ok is false when the tag is absent or unparsable.
func DateTimeOriginal(path string) (t time.Time, ok bool, err error) {
	info, err := readExif(path)
	if errors.Is(err, ErrNoExif) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if info.dateTimeOriginal == "" {
		return time.Time{}, false, nil
	}
	t, perr := time.ParseInLocation("2006:01:02 15:04:05", info.dateTimeOriginal, time.Local)
	if perr != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func readExif(path string) (*exifInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, exifScanLimit))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tiffStart, err := locateTIFF(data)
	if err != nil {
		return nil, err
	}
	return parseTIFF(data, tiffStart)
}

// locateTIFF returns the offset of the TIFF header: 0 for TIFF files, or the
// start of the payload of the Exif APP1 segment for JPEG files.
func locateTIFF(data []byte) (int, error) {
	if len(data) >= 4 && (bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))) {
		return 0, nil
	}
	if !isJPEGHeader(data) {
		return 0, ErrNotJPEG
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, ErrNoExif
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		// Start of scan or end of image: no more metadata segments.
		if marker == 0xDA || marker == 0xD9 {
			return 0, ErrNoExif
		}
		size := int(binary.BigEndian.Uint16(data[pos+2:]))
		if size < 2 || pos+2+size > len(data) {
			return 0, ErrNoExif
		}
		payload := data[pos+4 : pos+2+size]
		if marker == 0xE1 && bytes.HasPrefix(payload, []byte("Exif\x00\x00")) {
			return pos + 4 + 6, nil
		}
		pos += 2 + size
	}
	return 0, ErrNoExif
}

func parseTIFF(data []byte, start int) (*exifInfo, error) {
	if start+8 > len(data) {
		return nil, ErrNoExif
	}

	info := &exifInfo{orientationOffset: -1}
	switch string(data[start : start+2]) {
	case "II":
		info.order = binary.LittleEndian
	case "MM":
		info.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order", ErrNoExif)
	}

	ifd0 := int(info.order.Uint32(data[start+4:]))
	exifIFD := -1
	err := walkIFD(data, start, ifd0, info.order, func(tag, typ uint16, count uint32, valueAt int) {
		switch {
		case tag == tagOrientation && typ == typeShort:
			info.orientation = int(info.order.Uint16(data[valueAt:]))
			info.orientationOffset = int64(valueAt)
		case tag == tagExifIFD && typ == typeLong:
			exifIFD = int(info.order.Uint32(data[valueAt:]))
		}
	})
	if err != nil {
		return nil, err
	}

	if exifIFD > 0 {
		_ = walkIFD(data, start, exifIFD, info.order, func(tag, typ uint16, count uint32, valueAt int) {
			if tag != tagDateTimeOriginal || typ != typeASCII || count < 19 {
				return
			}
			at := valueAt
			if count > 4 {
				at = start + int(info.order.Uint32(data[valueAt:]))
			}
			if at+19 <= len(data) {
				info.dateTimeOriginal = string(data[at : at+19])
			}
		})
	}
	return info, nil
}

// walkIFD calls fn for every entry of the IFD at offset (relative to start).
// valueAt is the absolute offset of the entry's 4-byte value field.
func walkIFD(data []byte, start, offset int, order binary.ByteOrder, fn func(tag, typ uint16, count uint32, valueAt int)) error {
	pos := start + offset
	if offset <= 0 || pos+2 > len(data) {
		return fmt.Errorf("%w: ifd offset out of range", ErrNoExif)
	}
	n := int(order.Uint16(data[pos:]))
	pos += 2
	if pos+n*12 > len(data) {
		return fmt.Errorf("%w: truncated ifd", ErrNoExif)
	}
	for i := 0; i < n; i++ {
		e := pos + i*12
		fn(order.Uint16(data[e:]), order.Uint16(data[e+2:]), order.Uint32(data[e+4:]), e+8)
	}
	return nil
}

func isJPEGHeader(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
