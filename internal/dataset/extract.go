package dataset

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"grimm.is/georules/internal/logging"
)

// maxExtractedSize bounds a decompressed CSV.
const maxExtractedSize = 2 * 1024 * 1024 * 1024

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// Extractor turns a downloaded archive into a plain CSV file.
type Extractor struct {
	fs     afero.Fs
	member string
	logger *logging.Logger
}

// NewExtractor creates an Extractor. member names the CSV inside a zip
// archive; empty selects the first *.csv member.
func NewExtractor(fs afero.Fs, member string, logger *logging.Logger) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Extractor{
		fs:     fs,
		member: member,
		logger: logging.OrDefault(logger).WithComponent("extract"),
	}
}

// Extract decompresses archivePath into destDir and returns the CSV path.
// Zip and gzip are detected by content; anything else is returned as is.
func (e *Extractor) Extract(archivePath, destDir string) (string, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &MissingInputError{Path: archivePath, Err: err}
		}
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read archive header: %w", err)
	}
	head = head[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind archive: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return e.extractZip(f, archivePath, destDir)
	case bytes.HasPrefix(head, gzipMagic):
		return e.extractGzip(f, archivePath, destDir)
	}

	e.logger.Debug("Archive is plain text", "path", archivePath)
	return archivePath, nil
}

func (e *Extractor) extractZip(f afero.File, archivePath, destDir string) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("corrupt zip archive %s: %w", archivePath, err)
	}

	zf := e.findMember(zr.File)
	if zf == nil {
		if e.member != "" {
			return "", fmt.Errorf("%w: %s in %s", ErrMemberNotFound, e.member, archivePath)
		}
		return "", fmt.Errorf("%w: no *.csv in %s", ErrMemberNotFound, archivePath)
	}

	rc, err := zf.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s in %s: %w", zf.Name, archivePath, err)
	}
	defer rc.Close()

	dest := filepath.Join(destDir, path.Base(zf.Name))
	if err := e.writeLimited(rc, dest); err != nil {
		return "", err
	}

	e.logger.Info("Extracted dataset", "member", zf.Name, "path", dest)
	return dest, nil
}

// findMember matches the configured member by base name so archives that
// nest the CSV under a dated directory still resolve.
func (e *Extractor) findMember(files []*zip.File) *zip.File {
	for _, zf := range files {
		if zf.FileInfo().IsDir() {
			continue
		}
		base := path.Base(zf.Name)
		if e.member != "" {
			if base == e.member || zf.Name == e.member {
				return zf
			}
			continue
		}
		if strings.EqualFold(path.Ext(base), ".csv") {
			return zf
		}
	}
	return nil
}

func (e *Extractor) extractGzip(f afero.File, archivePath, destDir string) (string, error) {
	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("corrupt gzip archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(archivePath), ".gz")
	}
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "dataset.csv"
	}

	dest := filepath.Join(destDir, name)
	if dest == archivePath {
		dest += ".csv"
	}
	if err := e.writeLimited(gz, dest); err != nil {
		return "", err
	}

	e.logger.Info("Decompressed dataset", "path", dest)
	return dest, nil
}

func (e *Extractor) writeLimited(r io.Reader, dest string) error {
	if err := e.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	tmp := dest + ".tmp"
	out, err := e.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	n, copyErr := io.Copy(out, io.LimitReader(r, maxExtractedSize+1))
	closeErr := out.Close()
	switch {
	case copyErr != nil:
		e.fs.Remove(tmp)
		return fmt.Errorf("failed to decompress into %s: %w", dest, copyErr)
	case closeErr != nil:
		e.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", dest, closeErr)
	case n > maxExtractedSize:
		e.fs.Remove(tmp)
		return fmt.Errorf("decompressed dataset exceeds %d bytes", int64(maxExtractedSize))
	}

	if err := e.fs.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}
	return nil
}
