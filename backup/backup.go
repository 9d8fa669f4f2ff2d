// Package backup creates snapshots of a record store file, optionally
// compressed, locally or in S3-compatible storage.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kjk/jsonstore/log"
)

// extForCompression maps a compression kind to the extension appended
// to the snapshot name. Empty kind means no compression.
func extForCompression(compression string) (string, error) {
	switch compression {
	case "":
		return "", nil
	case "gzip":
		return ".gz", nil
	case "zstd":
		return ".zst", nil
	case "br":
		return ".br", nil
	}
	return "", fmt.Errorf("unknown compression '%s'", compression)
}

func compressData(d []byte, compression string) ([]byte, error) {
	switch compression {
	case "":
		return d, nil
	case "gzip":
		return GzipCompressData(d)
	case "zstd":
		return ZstdCompressData(d)
	case "br":
		return BrCompressData(d)
	}
	return nil, fmt.Errorf("unknown compression '%s'", compression)
}

// SnapshotName returns the name of a snapshot of srcPath taken at t,
// e.g. "notes-2024-01-02_15-04-05.json.zst"
func SnapshotName(srcPath string, t time.Time, compression string) (string, error) {
	cext, err := extForCompression(compression)
	if err != nil {
		return "", err
	}
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	ts := t.UTC().Format("2006-01-02_15-04-05")
	return name + "-" + ts + ext + cext, nil
}

// Local writes a snapshot of srcPath into dstDir and returns the
// snapshot path. compression is one of "", "gzip", "zstd", "br".
func Local(srcPath, dstDir, compression string) (string, error) {
	d, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("backup: failed to read '%s': %w", srcPath, err)
	}
	d, err = compressData(d, compression)
	if err != nil {
		return "", err
	}
	name, err := SnapshotName(srcPath, time.Now(), compression)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(dstDir, 0755); err != nil {
		return "", err
	}
	dstPath := filepath.Join(dstDir, name)
	if err = os.WriteFile(dstPath, d, 0644); err != nil {
		return "", err
	}
	log.Verbosef("backup: wrote snapshot '%s' (%d bytes)\n", dstPath, len(d))
	return dstPath, nil
}

// ReadSnapshot reads a snapshot, decompressing based on its extension
func ReadSnapshot(path string) ([]byte, error) {
	return ReadFileMaybeCompressed(path)
}

// Restore writes the content of a snapshot back to dstPath
func Restore(snapshotPath, dstPath string) error {
	d, err := ReadSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	if err = os.WriteFile(dstPath, d, 0644); err != nil {
		return err
	}
	log.Verbosef("backup: restored '%s' from '%s'\n", dstPath, snapshotPath)
	return nil
}
