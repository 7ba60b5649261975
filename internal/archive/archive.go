// Package archive compresses finished session logs.
package archive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Extension is appended to compressed files.
const Extension = ".zst"

// Compress writes srcPath to srcPath.zst and removes the original.
// Returns the archive path. On failure the original is kept and no
// partial archive is left behind.
func Compress(srcPath string) (string, error) {
	destPath := srcPath + Extension

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}

	err = writeFile(destPath, func(w io.Writer) error {
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		if _, err := io.Copy(encoder, src); err != nil {
			encoder.Close()
			return fmt.Errorf("compress: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("finalize compression: %w", err)
		}
		return nil
	})
	closeErr := src.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", fmt.Errorf("close source: %w", closeErr)
	}

	if err := os.Remove(srcPath); err != nil {
		return "", fmt.Errorf("remove source: %w", err)
	}
	return destPath, nil
}

// Decompress expands archivePath next to itself, dropping the .zst
// extension. Returns the decompressed path.
func Decompress(archivePath string) (string, error) {
	if !strings.HasSuffix(archivePath, Extension) {
		return "", fmt.Errorf("not a %s archive: %s", Extension, archivePath)
	}
	destPath := strings.TrimSuffix(archivePath, Extension)

	src, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return "", fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	err = writeFile(destPath, func(w io.Writer) error {
		if _, err := io.Copy(w, decoder); err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return destPath, nil
}

// writeFile creates path, fills it with fill and syncs it. The file is
// closed before writeFile returns and removed if any step fails.
func writeFile(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := fill(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}
