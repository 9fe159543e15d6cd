package imageutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrNotJPEG is returned when EXIF is read from another format.
	ErrNotJPEG = errors.New("not a jpeg file")
	// ErrNoTool is returned when no external tool can perform the operation.
	ErrNoTool = errors.New("no image tool available")
)

// Options configures a Processor.
type Options struct {
	// JPEGTranPath overrides the jpegtran lookup in $PATH.
	JPEGTranPath string
	// Runner executes the tools; ExecRunner when nil.
	Runner Runner
}

// Processor applies transformations to image files in place.
type Processor struct {
	run      Runner
	jpegtran string
}

// New creates a Processor.
func New(opts Options) *Processor {
	run := opts.Runner
	if run == nil {
		run = ExecRunner{}
	}
	return &Processor{run: run, jpegtran: opts.JPEGTranPath}
}

// Transform applies t to the image at path. JPEG files are transformed
// losslessly when their dimensions allow it; everything else is re-encoded
// with sips, using quality (0..1) for JPEG output.
func (p *Processor) Transform(ctx context.Context, path string, t Transform, quality float64) (bool, error) {
	if !t.Valid() {
		return false, fmt.Errorf("invalid transform %d", int(t))
	}
	if quality < 0 || quality > 1 {
		return false, fmt.Errorf("jpeg compression %v out of range [0,1]", quality)
	}
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	jpeg, err := isJPEG(path)
	if err != nil {
		return false, err
	}
	if jpeg {
		err := p.jpegtranInPlace(ctx, path, t.jpegtranArgs())
		if err == nil {
			return true, nil
		}
		slog.Debug("lossless transform unavailable, re-encoding", "path", path, "transform", t, "error", err)
	}

	if err := p.sipsInPlace(ctx, path, t, quality, jpeg); err != nil {
		return false, err
	}
	return true, nil
}

// AutoRotate makes a JPEG upright according to its EXIF orientation,
// losslessly, then resets the orientation tag to 1. It returns false when
// the image is already upright or is not a JPEG.
func (p *Processor) AutoRotate(ctx context.Context, path string) (bool, error) {
	jpeg, err := isJPEG(path)
	if err != nil {
		return false, err
	}
	if !jpeg {
		return false, nil
	}

	orientation, err := ReadOrientation(path)
	if errors.Is(err, ErrNoExif) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	args, ok := orientationArgs[orientation]
	if !ok {
		return false, nil
	}

	if err := p.jpegtranInPlace(ctx, path, args, func(tmp string) error {
		return WriteOrientation(tmp, 1)
	}); err != nil {
		return false, err
	}
	return true, nil
}

// jpegtranInPlace runs jpegtran into a temp file next to path, applies
// fixups to the result, then replaces path.
func (p *Processor) jpegtranInPlace(ctx context.Context, path string, op []string, fixups ...func(tmp string) error) error {
	bin, err := p.jpegtranBinary()
	if err != nil {
		return err
	}

	return replaceVia(path, func(tmp string) error {
		args := append([]string{"-copy", "all", "-perfect"}, op...)
		args = append(args, "-outfile", tmp, path)
		if err := p.run.Run(ctx, bin, args...); err != nil {
			return err
		}
		for _, fix := range fixups {
			if err := fix(tmp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Processor) sipsInPlace(ctx context.Context, path string, t Transform, quality float64, jpeg bool) error {
	bin, err := p.run.LookPath("sips")
	if err != nil {
		return fmt.Errorf("%w: sips: %w", ErrNoTool, err)
	}

	return replaceVia(path, func(tmp string) error {
		args := t.sipsArgs()
		if jpeg {
			args = append(args, "--setProperty", "formatOptions", strconv.Itoa(int(quality*100+0.5)))
		}
		args = append(args, path, "--out", tmp)
		return p.run.Run(ctx, bin, args...)
	})
}

func (p *Processor) jpegtranBinary() (string, error) {
	if p.jpegtran != "" {
		return p.jpegtran, nil
	}
	bin, err := p.run.LookPath("jpegtran")
	if err != nil {
		return "", fmt.Errorf("%w: jpegtran: %w", ErrNoTool, err)
	}
	return bin, nil
}

// replaceVia lets produce write a temp file in path's directory and renames
// it over path on success, keeping the original permissions.
func replaceVia(path string, produce func(tmp string) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".foto-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	f.Close()

	if err := produce(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func isJPEG(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 3)
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return isJPEGHeader(head), nil
}
