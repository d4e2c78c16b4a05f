package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeeper/internal/chat/discord"
	"gatekeeper/internal/platform/config"
	"gatekeeper/internal/verification/provider"
	"gatekeeper/internal/verification/service"
	"gatekeeper/internal/verification/store/session"
	"gatekeeper/pkg/platform/audit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewVerifier(t *testing.T) {
	t.Run("mock only when selected", func(t *testing.T) {
		v, err := newVerifier(config.VerifierConfig{Mode: "mock"}, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &provider.MockVerifier{}, v)
	})

	t.Run("empty mode is not mock", func(t *testing.T) {
		_, err := newVerifier(config.VerifierConfig{}, discardLogger())
		require.Error(t, err)
	})

	t.Run("http requires url", func(t *testing.T) {
		_, err := newVerifier(config.VerifierConfig{Mode: "http"}, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VERIFIER_URL")
	})

	t.Run("http with url", func(t *testing.T) {
		v, err := newVerifier(config.VerifierConfig{Mode: "http", URL: "http://verifier.local/verify"}, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &provider.BreakingVerifier{}, v)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := newVerifier(config.VerifierConfig{Mode: "zk"}, discardLogger())
		require.Error(t, err)
	})
}

func TestOpenChat(t *testing.T) {
	t.Run("no token disables chat", func(t *testing.T) {
		dg, err := openChat("", discardLogger())
		require.NoError(t, err)
		assert.Nil(t, dg)
	})

	t.Run("token yields a session before anything is served", func(t *testing.T) {
		dg, err := openChat("test-token", discardLogger())
		require.NoError(t, err)
		require.NotNil(t, dg)

		// the granter is fixed at construction; no setter exists to race with callbacks
		svc, err := service.New(service.Config{}, session.New(), service.WithAccessGranter(discord.NewClient(dg)))
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestOpenAuditSinks_FileAndMemory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "verifier.log")

	sinks, err := openAuditSinks(ctx, config.AuditConfig{LogFile: path}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, sinks.Store().Append(ctx, audit.Event{Type: audit.EventCompleted, Message: "verification completed"}))

	recent, err := sinks.Lister().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, audit.EventCompleted, recent[0].Type)

	sinks.Close()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"verification.completed"`)
}

func TestOpenAuditSinks_NoFile(t *testing.T) {
	sinks, err := openAuditSinks(context.Background(), config.AuditConfig{}, discardLogger())
	require.NoError(t, err)
	defer sinks.Close()

	assert.Len(t, sinks.sinks, 1)
}
