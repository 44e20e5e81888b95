package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	t.Cleanup(Discard)
	path := filepath.Join(t.TempDir(), "docflow.log")

	closer, err := Init("debug", "json", path)
	require.NoError(t, err)

	Debugf("upload %s", "started")
	WithFields(logrus.Fields{"job": "chat-1"}).Info("job finished")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	require.True(t, strings.Contains(content, `"msg":"upload started"`), content)
	require.True(t, strings.Contains(content, `"job":"chat-1"`), content)
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(Discard)
	closer, err := Init("chatty", "text", filepath.Join(t.TempDir(), "x.log"))
	require.NoError(t, err)
	defer closer.Close()
	require.Equal(t, logrus.InfoLevel, L().GetLevel())
}
