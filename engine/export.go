// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lzkill/ir-tester/audio"
	"github.com/lzkill/ir-tester/dsp/normalize"
	"github.com/lzkill/ir-tester/formats/aiff"
	"github.com/lzkill/ir-tester/formats/wav"
	"github.com/lzkill/ir-tester/store"
)

// exportBitDepth is the PCM depth of written files.
const exportBitDepth = 24

// ExportReport is the per-file outcome of a batch export. Err is nil on
// success; a failed file never aborts the rest of the batch.
type ExportReport struct {
	Asset *store.Asset
	Path  string
	Err   error
}

// ExportBatch writes the given impulse responses to destDir with the
// normalization spec applied, one file at a time on a worker goroutine.
// Gain is computed from the source file's original levels, so the
// session's leveled copies do not skew rms targets. Reports arrive on
// the returned channel in asset order; the channel closes when the
// batch ends. It is buffered to the batch size, so a caller that stops
// reading never wedges the worker. Unknown ids are reported as
// failures, not skipped.
//
// Output keeps the source base name (numeric suffix on collision) and
// container family, except FLAC sources, which are written as WAV.
func (e *Engine) ExportBatch(ids []uint64, destDir string, spec normalize.Spec) (<-chan ExportReport, error) {
	info, err := os.Stat(destDir)
	if err != nil {
		return nil, fmt.Errorf("export destination: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export destination %q is not a directory", destDir)
	}

	reports := make(chan ExportReport, len(ids))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(reports)

		start := time.Now()
		failed := 0

		for _, id := range ids {
			r := e.exportOne(id, destDir, spec)
			if r.Err != nil {
				failed++
				e.log.Error("export failed", "id", id, "err", r.Err)
			} else {
				e.log.Info("exported", "file", r.Path)
			}
			reports <- r
		}

		e.log.Info("export batch done",
			"total", len(ids), "failed", failed, "elapsed", time.Since(start))
	}()

	return reports, nil
}

func (e *Engine) exportOne(id uint64, destDir string, spec normalize.Spec) ExportReport {
	asset, ok := e.irs.Get(id)
	if !ok {
		return ExportReport{Err: fmt.Errorf("asset %d: %w", id, store.ErrAssetNotFound)}
	}

	buf, err := e.irs.Decode(asset.Path)
	if err != nil {
		return ExportReport{Asset: asset, Err: err}
	}

	gain, err := normalize.ComputeGain(buf, spec)
	if err != nil {
		return ExportReport{Asset: asset, Err: fmt.Errorf("normalizing %s: %w", asset.Name, err)}
	}

	path := exportPath(destDir, asset.Name)
	if err := writeExport(path, normalize.Apply(buf, gain)); err != nil {
		return ExportReport{Asset: asset, Err: fmt.Errorf("writing %s: %w", path, err)}
	}

	return ExportReport{Asset: asset, Path: path}
}

// exportPath maps the source name into destDir, rewriting the extension
// for containers without a writer and suffixing on collision.
func exportPath(destDir, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	switch ext {
	case ".aiff", ".aif":
		// keep
	default:
		ext = ".wav"
	}

	path := filepath.Join(destDir, base+ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
}

func writeExport(path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".aiff", ".aif":
		err = aiff.WriteBuffer(f, buf, exportBitDepth)
	default:
		err = wav.WriteBuffer(f, buf, exportBitDepth)
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	return f.Close()
}
