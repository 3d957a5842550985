package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffdev/bufdev"
)

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)
	require.NotNil(t, c)

	assert.Panics(t, func() { NewCollector(registry) }, "duplicate registration")
}

func TestCollectorWithStore(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	s, err := bufdev.New(10, bufdev.WithObserver(c))
	require.NoError(t, err)
	defer s.Release()

	require.NoError(t, s.Open())
	assert.Error(t, s.Open())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessionOpen))

	_, err = s.Write(make([]byte, 12))
	require.NoError(t, err)
	_, err = s.Write([]byte{1})
	assert.Error(t, err)

	s.Seek(4, bufdev.FromStart)
	assert.Equal(t, 4.0, testutil.ToFloat64(c.position))

	_, err = s.Read(3)
	require.NoError(t, err)
	s.Seek(0, bufdev.FromEnd)
	_, err = s.Read(1)
	assert.Error(t, err)

	require.NoError(t, s.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.opens.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.opens.WithLabelValues("busy")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.bytesWritten))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.bytesRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.endOfDevice.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.endOfDevice.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.seeks.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.seeks.WithLabelValues("end")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.position))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.sessionOpen))
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)
	c.BytesWritten(5, 5)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "buffdev_bytes_written_total 5")
}
