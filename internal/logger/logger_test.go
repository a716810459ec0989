package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "json", Writer: buf})
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	return out
}

func TestNew_JSONUsesZerologEncoding(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, slog.LevelInfo).Info("review created", "book_id", "book-1", "rating", 4)

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "review created", entry["message"])
	assert.Equal(t, "book-1", entry["book_id"])
	assert.EqualValues(t, 4, entry["rating"])
	assert.Contains(t, entry, "time")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"staging uses pretty", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf}).Info("test")

			output := buf.String()
			if tt.wantJSON {
				assert.Contains(t, output, `"message":"test"`)
			} else {
				assert.Contains(t, output, "INF")
				assert.Contains(t, output, colorBold+"test")
			}
		})
	}
}

func TestNew_ExplicitFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: slog.LevelInfo, Format: "json", Environment: "development", Writer: &buf}).Info("test")

	assert.Contains(t, buf.String(), `"message":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DeBuG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestZerologHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"level":"error"`)
}

func TestZerologHandler_GroupsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewZerologHandler(&buf, slog.LevelInfo, false))

	logger.WithGroup("llm").Info("call failed",
		"err", errors.New("status 502"),
		slog.Group("breaker", slog.String("state", "open")),
		"elapsed", 1500*time.Millisecond,
	)

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "status 502", entry["llm.err"])
	assert.Equal(t, "open", entry["llm.breaker.state"])
	assert.Contains(t, entry, "llm.elapsed")
}

func TestZerologHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewZerologHandler(&buf, slog.LevelInfo, true).WithAttrs([]slog.Attr{
		slog.String("service", "bookreview"),
	})

	slog.New(handler).Info("started")

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "bookreview", entry["service"])
	assert.Contains(t, entry["source"], "logger_test.go:")
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("test message",
		"string", "value",
		"int", 42,
		"bool", true,
		"float", 3.14,
	)

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "string=value")
	assert.Contains(t, output, "int=42")
	assert.Contains(t, output, "bool=true")
	assert.Contains(t, output, "float=3.14")
	assert.Contains(t, output, "INF")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.Equal(t, handler, handler.WithGroup(""))

	grouped := handler.WithAttrs([]slog.Attr{slog.String("service", "api")}).WithGroup("request")
	slog.New(grouped).Info("handled", "status", 201)

	output := buf.String()
	assert.Contains(t, output, "service=api")
	assert.Contains(t, output, "request.status=201")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo, AddSource: true})).Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestPrettyHandler_NoAttributes(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("simple message")

	output := buf.String()
	_, after, found := strings.Cut(output, "simple message")
	require.True(t, found)
	assert.NotContains(t, after, "=")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			str, color := formatLevel(tt.level)
			assert.Equal(t, tt.wantStr, str)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestFormatValue(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "test", formatValue(slog.StringValue("test")))
	assert.Equal(t, now.Format(time.RFC3339), formatValue(slog.TimeValue(now)))
	assert.Equal(t, "5s", formatValue(slog.DurationValue(5*time.Second)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}
