package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zns/internal/platform/config"
)

func TestNewProvider(t *testing.T) {
	t.Run("disabled returns a no-op tracer", func(t *testing.T) {
		p, err := NewProvider(config.TracingConfig{})
		require.NoError(t, err)
		assert.False(t, p.Enabled())
		assert.NotNil(t, p.Tracer())
		assert.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("enabled without exporter records spans", func(t *testing.T) {
		p, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "none"})
		require.NoError(t, err)
		assert.True(t, p.Enabled())

		_, span := p.Tracer().Start(context.Background(), "op")
		assert.True(t, span.IsRecording())
		span.End()
		assert.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("unknown exporter is rejected", func(t *testing.T) {
		_, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "zipkin"})
		assert.Error(t, err)
	})
}
