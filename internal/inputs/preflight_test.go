package inputs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestPreflightAcceptsText(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("meeting notes"))
	info, err := Preflight(SourceText, path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("meeting notes")), info.Size)
}

func TestPreflightRejectsWrongExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("meeting notes"))
	_, err := Preflight(SourcePDF, path)
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = Preflight(SourceCode, writeFile(t, "tool.exe", []byte("MZ")))
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = Preflight(SourceCode, writeFile(t, "Makefile", []byte("all:")))
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestPreflightRejectsFakePDF(t *testing.T) {
	path := writeFile(t, "report.pdf", []byte("definitely not a pdf"))
	_, err := Preflight(SourcePDF, path)
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestPreflightRejectsBinaryText(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	path := writeFile(t, "image.txt", png)
	_, err := Preflight(SourceText, path)
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestPreflightRejectsFileForLink(t *testing.T) {
	_, err := Preflight(SourceLink, "whatever.txt")
	assert.ErrorIs(t, err, ErrFileNotAllowedForType)
}

func TestAttachFileKeepsGroupOnFailure(t *testing.T) {
	m := NewManager()
	g := m.Add()
	_, err := m.AttachFile(g.ID, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	got, ok := m.Get(g.ID)
	require.True(t, ok)
	assert.Empty(t, got.FilePath)
	assert.False(t, got.Valid())
}

// minimalPDF builds a one-page document with a correct xref table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPreflightCountsPDFPages(t *testing.T) {
	path := writeFile(t, "report.pdf", minimalPDF())
	info, err := Preflight(SourcePDF, path)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
	assert.Equal(t, "pdf", info.Kind)

	m := NewManager()
	g := m.Add()
	require.NoError(t, m.SetType(g.ID, SourcePDF))
	attached, err := m.AttachFile(g.ID, path)
	require.NoError(t, err)
	assert.Equal(t, 1, attached.Pages)

	stored, ok := m.Get(g.ID)
	require.True(t, ok)
	assert.Equal(t, path, stored.FilePath)
	assert.Equal(t, 1, stored.Pages)
	assert.True(t, stored.Valid())
}
