package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.InDelta(t, 0.55, cfg.MinSimilarity, 0.001)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://localhost:9100/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithMinSimilarity(0.7),
	)

	assert.Equal(t, "http://localhost:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.InDelta(t, 0.7, cfg.MinSimilarity, 0.001)
}

func TestNormalizeAddsVersionSuffix(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already suffixed", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty left alone", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestValidateRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"missing host", &Config{EmbeddingModel: "m", MinSimilarity: 0.5}},
		{"missing model", &Config{EmbeddingHost: "http://h/v1", MinSimilarity: 0.5}},
		{"similarity below range", &Config{EmbeddingHost: "http://h/v1", EmbeddingModel: "m", MinSimilarity: -0.1}},
		{"similarity above range", &Config{EmbeddingHost: "http://h/v1", EmbeddingModel: "m", MinSimilarity: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}
