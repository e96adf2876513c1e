package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger() {
	viperConf = viper.New()
	baseOut = nil
	initDone = false
}

func writeConfig(t *testing.T, text string) {
	path := filepath.Join(t.TempDir(), "log.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	t.Setenv(confEnvPrefix+"_"+confFilePathKey, path)
}

func cleanLogger(t *testing.T, config string, module string) *Logger {
	resetLogger()
	writeConfig(t, config)
	return NewLogger(module)
}

func TestDefaultLevel(t *testing.T) {
	resetLogger()
	assert.Equal(t, "info", Default().Level())
}

func TestBaseLevel(t *testing.T) {
	logger := cleanLogger(t, `level = "error"`, "deployer")
	assert.Equal(t, "error", logger.Level())
	assert.Equal(t, "deployer", logger.Module())
}

func TestModuleLevelOverride(t *testing.T) {
	logger := cleanLogger(t, `
level = "error"

[publisher]
level = "warn"
`, "publisher")

	assert.Equal(t, "error", Default().Level())
	assert.Equal(t, "warn", logger.Level())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	logger := cleanLogger(t, `level = "loud"`, "deployer")
	assert.Equal(t, "info", logger.Level())
}

func TestIsDebugEnabled(t *testing.T) {
	assert.False(t, cleanLogger(t, `level = "warn"`, "m").IsDebugEnabled())
	assert.True(t, cleanLogger(t, `level = "debug"`, "m").IsDebugEnabled())
}

func TestSetOutputCapturesLines(t *testing.T) {
	resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	NewLogger("deployer").Info().Str("tx", "abc").Msg("Deployed successfully")
	assert.Contains(t, buf.String(), "Deployed successfully")
	assert.Contains(t, buf.String(), `"module":"deployer"`)
}

func TestGetOutput(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "out.log")

	tests := []struct {
		name    string
		arg     string
		wantOut *os.File
		wantErr bool
	}{
		{"Empty", "", nil, true},
		{"Stdout", "stdout", os.Stdout, false},
		{"Stderr", "stderr", os.Stderr, false},
		{"CustomFile", custom, nil, false},
		{"MissingDir", "no/where/dir/nofile.log", nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := getOutput(test.arg)
			if test.wantOut != nil {
				assert.Equal(t, test.wantOut, got)
			}
			assert.Equal(t, test.wantErr, err != nil)
		})
	}
}

func TestFileOutByModule(t *testing.T) {
	dir := t.TempDir()
	baseName := filepath.ToSlash(filepath.Join(dir, "base.log"))
	subName := filepath.ToSlash(filepath.Join(dir, "db.log"))

	cleanLogger(t, fmt.Sprintf(`
out = "%s"
level = "info"

[db]
out = "%s"
`, baseName, subName), "db").Info().Msg("db write")
	NewLogger("other").Info().Msg("other write")

	baseContent, err := os.ReadFile(baseName)
	require.NoError(t, err)
	assert.Contains(t, string(baseContent), "other write")

	subContent, err := os.ReadFile(subName)
	require.NoError(t, err)
	assert.Contains(t, string(subContent), "db write")
}
