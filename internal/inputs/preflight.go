package inputs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
)

// sniffLen covers the longest magic number filetype inspects.
const sniffLen = 261

// FileInfo is what preflight learned about a selected file.
type FileInfo struct {
	Size  int64
	Kind  string
	Pages int
}

// Preflight checks a file against the accept list of t and sniffs its
// content. PDFs are opened to count pages.
func Preflight(t SourceType, path string) (FileInfo, error) {
	if !t.AcceptsFile() {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrFileNotAllowedForType, t.Label())
	}
	if !allowsExtension(t, path) {
		ext := filepath.Ext(path)
		if ext == "" {
			return FileInfo{}, fmt.Errorf("%w: file has no extension", ErrUnsupportedExtension)
		}
		return FileInfo{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedExtension, ext, Hint(t))
	}

	stat, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if stat.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", filepath.Base(path))
	}

	head, err := readHead(path)
	if err != nil {
		return FileInfo{}, err
	}
	kind, _ := filetype.Match(head)
	info := FileInfo{Size: stat.Size(), Kind: kind.Extension}

	switch t {
	case SourcePDF:
		if !filetype.Is(head, "pdf") {
			return FileInfo{}, fmt.Errorf("%w: %s is not a PDF", ErrContentMismatch, filepath.Base(path))
		}
		pages, err := countPages(path)
		if err != nil {
			return FileInfo{}, err
		}
		info.Pages = pages
	default:
		if filetype.IsImage(head) || filetype.IsArchive(head) || filetype.IsVideo(head) || filetype.IsAudio(head) {
			return FileInfo{}, fmt.Errorf("%w: %s looks like %s data", ErrContentMismatch, filepath.Base(path), kind.MIME.Value)
		}
	}
	return info, nil
}

func readHead(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return head[:n], nil
}

func countPages(path string) (int, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	return reader.NumPage(), nil
}
