package vfs_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/vfs/pkg/vfs"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := vfs.NewLogger(&buf, zerolog.InfoLevel)

	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}
	if !strings.HasSuffix(strings.TrimSpace(output), "lib=vfs") {
		t.Errorf("Expected log output to end with 'lib=vfs', got: %s", output)
	}
}

func TestLogLevelFromString(t *testing.T) {
	testCases := []struct {
		levelStr string
		expected zerolog.Level
		wantErr  bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"invalid", zerolog.NoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.levelStr, func(t *testing.T) {
			level, err := vfs.LogLevelFromString(tc.levelStr)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for invalid level %q", tc.levelStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if level != tc.expected {
				t.Errorf("Expected level %v, got %v", tc.expected, level)
			}
		})
	}
}

func TestNewTestLogger(t *testing.T) {
	testCases := []struct {
		verbose  int
		expected zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{4, zerolog.TraceLevel},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("verbose_%d", tc.verbose), func(t *testing.T) {
			var buf bytes.Buffer
			logger := vfs.NewTestLogger(&buf, tc.verbose)
			if logger.GetLevel() != tc.expected {
				t.Errorf("Expected level %v for verbose %d, got %v", tc.expected, tc.verbose, logger.GetLevel())
			}
		})
	}
}

func TestSwapIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := vfs.Logger()
	vfs.SetLogger(vfs.NewLogger(&buf, zerolog.DebugLevel))
	t.Cleanup(func() { vfs.SetLogger(prev) })

	r := vfs.NewRegistry(nil)
	r.SetMemfs()

	output := buf.String()
	if !strings.Contains(output, "backend replaced") || !strings.Contains(output, "to=memfs") {
		t.Errorf("Expected swap to be logged, got: %s", output)
	}
}
