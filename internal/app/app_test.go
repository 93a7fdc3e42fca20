package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/tokens"
)

type noopCompiler struct{}

func (noopCompiler) Compile(ctx context.Context, tex, cls, clsName string) ([]byte, error) {
	return []byte("%PDF-1.5"), nil
}

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage:   config.StorageConfig{Backend: "memory", MaxUploadBytes: 1 << 20},
		Latex:     config.LatexConfig{Binary: "definitely-not-a-latex-binary", Passes: 1, Workers: 1},
		LLM:       config.LLMConfig{BaseURL: "http://127.0.0.1:0", Model: "gpt-4", MaxSourceChars: 3000},
		Templates: config.TemplatesConfig{Dir: t.TempDir(), Seed: true},
	}
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := memoryConfig(t)
	a, err := New(context.Background(), cfg, Options{Compiler: noopCompiler{}})
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Nil(t, a.Mongo)
	assert.Nil(t, a.Redis)
	require.NotNil(t, a.Orchestrator)
	assert.IsType(t, noopCompiler{}, a.Compiler)

	deps := a.Ready(context.Background())
	assert.True(t, deps["storage"])
	assert.False(t, deps["latex"])
	assert.NotContains(t, deps, "redis")
}

func TestSeedTemplatesFromDir(t *testing.T) {
	cfg := memoryConfig(t)
	folder := filepath.Join(cfg.Templates.Dir, "modern_blue")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	for name, body := range map[string]string{
		"thumbnail.png": "PNG",
		"preview.pdf":   "%PDF-1.4",
		"main.tex":      `\documentclass{main}`,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte(body), 0o644))
	}

	a, err := New(context.Background(), cfg, Options{Compiler: noopCompiler{}})
	require.NoError(t, err)
	a.SeedTemplates(context.Background())

	list, err := a.Templates.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Modern Blue", list[0].Name)
}

func TestReadyChecksRedisWhenRateLimitingUsesIt(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	cfg := memoryConfig(t)
	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)
	cfg.Redis = config.RedisConfig{Host: host, Port: port}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, UseRedis: true}

	a, err := New(context.Background(), cfg, Options{Compiler: noopCompiler{}})
	require.NoError(t, err)
	require.NotNil(t, a.Redis)
	assert.True(t, a.Ready(context.Background())["redis"])

	m.Close()
	assert.False(t, a.Ready(context.Background())["redis"])
}

func TestNewVerifierFallbacks(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewVerifier(ctx, &config.Config{})
	require.ErrorIs(t, err, ErrNoVerifier)

	ver, kind, err := NewVerifier(ctx, &config.Config{JWT: config.JWTConfig{Secret: "s3cret-s3cret-s3cret-s3cret-s3cret"}})
	require.NoError(t, err)
	assert.Equal(t, "jwt", kind)
	raw, err := tokens.GenerateAccessToken("s3cret-s3cret-s3cret-s3cret-s3cret", "u1", "User", time.Minute)
	require.NoError(t, err)
	_, err = ver.Verify(ctx, raw)
	require.NoError(t, err)

	_, kind, err = NewVerifier(ctx, &config.Config{Auth: config.AuthConfig{AllowInsecureToken: true}})
	require.NoError(t, err)
	assert.Equal(t, "insecure", kind)
}
