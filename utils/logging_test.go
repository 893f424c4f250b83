package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/groqchat/utils"
)

func TestLoggerInterface(t *testing.T) {
	var _ utils.Logger = &utils.MockLogger{}
	var _ utils.Logger = utils.NewNopLogger()
	var _ utils.Logger = utils.NewLogger(utils.LogLevelInfo)
}

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewWriterLogger(&buf, utils.LogLevelWarn)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("shown warning", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "key=value")

	buf.Reset()
	logger.SetLevel(utils.LogLevelOff)
	logger.Error("silenced")
	assert.Empty(t, buf.String())
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groqchat.log")
	logger, closer := utils.NewFileLogger(path, utils.LogLevelInfo, utils.LogFileOptions{})
	logger.Info("written to file", "n", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestLogLevelUnmarshalText(t *testing.T) {
	testCases := []struct {
		input   string
		want    utils.LogLevel
		wantErr bool
	}{
		{input: "debug", want: utils.LogLevelDebug},
		{input: "INFO", want: utils.LogLevelInfo},
		{input: "warning", want: utils.LogLevelWarn},
		{input: "error", want: utils.LogLevelError},
		{input: "off", want: utils.LogLevelOff},
		{input: "loud", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var level utils.LogLevel
			err := level.UnmarshalText([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, level)
			assert.Equal(t, tc.want.String(), level.String())
		})
	}
}
