// Package preprocess prepares raw photos for the panel ahead of time so the
// slideshow only has to decode a panel-sized JPEG.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/matjam/inkyslide/internal/compose"
	"github.com/matjam/inkyslide/internal/photos"
)

type Options struct {
	RawDir  string
	OutDir  string
	Width   int
	Height  int
	Quality int
}

type Result struct {
	Source string
	Output string
	Exif   bool // the source EXIF block was carried over
}

// OutputName maps a source file name to its converted name.
func OutputName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpeg"
}

// Run converts every eligible file in RawDir, in name order. A file that
// fails is logged and skipped; the failures are returned together.
func Run(opts Options, logger *log.Logger) ([]Result, error) {
	sources, err := photos.List(opts.RawDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.OutDir, err)
	}

	var (
		results []Result
		errs    []error
	)
	for _, src := range sources {
		dst := filepath.Join(opts.OutDir, OutputName(src))
		res, err := Convert(src, dst, opts)
		if err != nil {
			logger.Error("Could not convert photo", "file", src, "err", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("Converted photo", "file", filepath.Base(dst), "exif", res.Exif)
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// Convert cover-fits src to Width x Height and writes it to dst as JPEG.
func Convert(src, dst string, opts Options) (Result, error) {
	res := Result{Source: src, Output: dst}

	data, err := os.ReadFile(src)
	if err != nil {
		return res, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", compose.ErrDecode, src, err)
	}

	fitted := compose.CoverFit(compose.Opaque(img), opts.Width, opts.Height)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return res, fmt.Errorf("encoding %s: %w", dst, err)
	}
	out := buf.Bytes()

	if seg := exifSegment(data); seg != nil {
		out = insertAfterSOI(out, seg)
		res.Exif = true
	}

	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return res, err
	}
	return res, nil
}
