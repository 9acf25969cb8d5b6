package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baxromumarov/evchan"
	"github.com/baxromumarov/evchan/buffer"
	"github.com/baxromumarov/evchan/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTail_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("INFO start\nERROR boom\nINFO done\n"), 0o600))

	tests := []struct {
		name  string
		match string
		want  string
		puts  int64
	}{
		{"all lines", "", "INFO start\nERROR boom\nINFO done\n", 3},
		{"filtered", "^ERROR", "ERROR boom\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Match = tt.match
			logger, hook := logtest.NewNullLogger()

			var out bytes.Buffer
			err := runTail(context.Background(), cfg, path, nil, &out, logger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())

			last := hook.LastEntry()
			require.NotNil(t, last)
			assert.Equal(t, "tail finished", last.Message)
			assert.Equal(t, tt.puts, last.Data["puts"], "filtered lines never reach the channel")
		})
	}
}

func TestRunTail_Stdin(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	var out bytes.Buffer

	err := runTail(context.Background(), config.Default(), "-", strings.NewReader("a\nb\nc\n"), &out, logger)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out.String())
}

func TestRunTail_Errors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	err := runTail(context.Background(), config.Default(), filepath.Join(t.TempDir(), "missing"), nil, &bytes.Buffer{}, logger)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Match = "("
	err = runTail(context.Background(), cfg, "-", strings.NewReader(""), &bytes.Buffer{}, logger)
	assert.Error(t, err)
}

func TestRunTail_ContextCancelled(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// stdin never ends; the cancelled context must still stop the command.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()
	defer r.Close()

	err = runTail(ctx, config.Default(), "-", r, &bytes.Buffer{}, logger)
	assert.NoError(t, err)
}

func TestNewBuffer(t *testing.T) {
	tests := []struct {
		kind string
		want any
	}{
		{config.BufferNone, &buffer.Discard[string]{}},
		{config.BufferFixed, &buffer.Ring[string]{}},
		{config.BufferDropping, &buffer.Ring[string]{}},
		{config.BufferSliding, &buffer.Ring[string]{}},
		{config.BufferExpanding, &buffer.Ring[string]{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := config.Default()
			cfg.Buffer = tt.kind
			buf, err := newBuffer(cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, buf)
		})
	}

	cfg := config.Default()
	cfg.Buffer = "ring"
	_, err := newBuffer(cfg)
	assert.Error(t, err)
}

func TestNewFilter(t *testing.T) {
	m, err := newFilter("")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = newFilter(`^\d+$`)
	require.NoError(t, err)
	assert.True(t, m("42"))
	assert.False(t, m("x42"))

	_, err = newFilter("[")
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	var from config.Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&from.Buffer, "buffer", "expanding", "")
	fs.IntVar(&from.Size, "size", 16, "")
	fs.StringVar(&from.LogLevel, "log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--size", "4", "--log-level", "debug"}))

	cfg := config.Default()
	cfg.Buffer = config.BufferSliding // from the config file
	cfg.Size = 100

	applyFlags(fs, &cfg, from)

	assert.Equal(t, config.BufferSliding, cfg.Buffer, "unset flag keeps the file value")
	assert.Equal(t, 4, cfg.Size)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestSetupLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	cfg.LogFormat = config.FormatJSON

	l := logrus.New()
	var out bytes.Buffer
	require.NoError(t, setupLogger(l, cfg, &out))

	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)

	cfg.LogLevel = "loud"
	assert.Error(t, setupLogger(l, cfg, &out))
}

func TestMetricsServer(t *testing.T) {
	metrics := evchan.NewMetrics("")
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)

	ch := evchan.New[string](evchan.WithName("tail"), evchan.WithMetrics(metrics))
	require.NoError(t, ch.Put("x"))

	srv := newMetricsServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `evchan_puts_total{channel="tail",outcome="buffered"} 1`)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.True(t, strings.HasPrefix(out.String(), "evchan version dev "))
}
