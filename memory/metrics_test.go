package memory

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

func TestRecordsGauge(t *testing.T) {
	m := NewInMemoryStore(func(o *Options) { o.Config.Enabled = true })

	_, err := m.Store("gauge-ai", "first note about databases", core.StoreMetadata{})
	require.NoError(t, err)
	_, err = m.Store("gauge-ai", "second note about caches", core.StoreMetadata{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(recordsGauge.WithLabelValues("gauge-ai")))

	require.NoError(t, m.Clear("gauge-ai"))
	assert.Equal(t, 0.0, testutil.ToFloat64(recordsGauge.WithLabelValues("gauge-ai")))
}
