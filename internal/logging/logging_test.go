package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "aarlogs",
			want:    filepath.Join("aarlogs", "aar.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./aarlogs",
			want:    filepath.Join(".", "aarlogs", "aar.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "aar"),
			want:    filepath.Join("/var", "log", "aar", "aar.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, "aar", start))
		})
	}
}

func TestOpenLogFile_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	start := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	f, err := OpenLogFile(dir, "aar", start)
	require.NoError(t, err)
	_, err = f.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(LogFilePath(dir, "aar", start))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
