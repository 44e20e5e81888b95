package filelist

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/docflow/internal/backend"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestToggle(t *testing.T) {
	l := New()
	assert.False(t, l.Visible())
	assert.True(t, l.Toggle())
	assert.False(t, l.Toggle())
	l.Open()
	assert.True(t, l.Visible())
	l.Close()
	assert.False(t, l.Visible())
}

func TestEmptyPlaceholder(t *testing.T) {
	l := New()
	l.Apply(backend.UploadMeta{Count: 0}, nil)
	view := plain(l.View(40))
	assert.Contains(t, view, "No files uploaded yet")
}

func TestApplyListsFiles(t *testing.T) {
	l := New()
	at := backend.Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	l.Apply(backend.UploadMeta{Count: 2, Files: []backend.FileMeta{
		{Name: "a.pdf", UploadedAt: at},
		{Name: "b.txt"},
	}}, nil)

	require.Len(t, l.Files(), 2)
	view := plain(l.View(40))
	assert.Contains(t, view, "Uploaded files (2)")
	assert.Contains(t, view, "a.pdf")
	assert.Contains(t, view, "b.txt")
	assert.NotContains(t, view, "No files uploaded yet")
	assert.Equal(t, 1, strings.Count(view, "2024"))
}

func TestFetchErrorDegradesToEmpty(t *testing.T) {
	l := New()
	l.Apply(backend.UploadMeta{Count: 1, Files: []backend.FileMeta{{Name: "a.pdf"}}}, nil)
	l.Apply(backend.UploadMeta{}, errors.New("connection refused"))

	assert.Empty(t, l.Files())
	assert.Error(t, l.Err())
	assert.Contains(t, plain(l.View(40)), "No files uploaded yet")
}

func TestNamesAreSanitized(t *testing.T) {
	l := New()
	l.Apply(backend.UploadMeta{Count: 1, Files: []backend.FileMeta{{Name: "evil\x1b[2Jname.pdf"}}}, nil)
	view := l.View(40)
	assert.NotContains(t, view, "\x1b[2J")
	assert.Contains(t, plain(view), "evilname.pdf")
}
