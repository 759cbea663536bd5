package hsafgrib

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountHandlerActivity(t *testing.T) {
	m := NewMetrics()
	g := newFakeGRIB(newFakeMessage())
	h, err := NewFileHandler("h03B_20190603_1645_fdk.grb", nil, FileType{},
		WithOpener(g.opener()), WithLogger(quietLogger), WithMetrics(m))
	require.NoError(t, err)

	_, err = h.GetAreaDef("h03B")
	require.NoError(t, err)
	_, err = h.GetDataset(DataID{Name: "H03B"}, DatasetInfo{})
	require.NoError(t, err)
	_, err = h.GetDataset(DataID{Name: "h05"}, DatasetInfo{})
	require.ErrorIs(t, err, ErrWrongProduct)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.FilesOpened.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FilesOpened.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MessagesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetsLoaded.WithLabelValues("h03b")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.DecodeDuration))
}

func TestMetricsCountErrors(t *testing.T) {
	m := NewMetrics()
	msg := newFakeMessage()
	delete(msg.attrs, "dx")
	g := newFakeGRIB(msg)
	h, err := NewFileHandler("h03B", nil, FileType{},
		WithOpener(g.opener()), WithLogger(quietLogger), WithMetrics(m))
	require.NoError(t, err)

	_, err = h.GetAreaDef("h03B")
	require.ErrorIs(t, err, ErrUnknownProjection)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("projection")))

	delete(msg.attrs, "dataDate")
	_, err = NewFileHandler("h03B", nil, FileType{},
		WithOpener(g.opener()), WithLogger(quietLogger), WithMetrics(m))
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("format")))
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Register(reg), "registering twice")

	m.fileOpened(nil)
	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "hsafgrib_files_opened_total")
}

func TestMetricsRegisterAdoptsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics()
	require.NoError(t, first.Register(reg))

	second := NewMetrics()
	require.NoError(t, second.Register(reg))
	second.fileOpened(nil)
	second.messageDecoded()

	assert.Same(t, first.FilesOpened, second.FilesOpened)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.FilesOpened.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.MessagesDecoded))
}

func TestMetricsRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hsafgrib",
		Subsystem: "messages",
		Name:      "decoded_total",
		Help:      "Something else",
	})))

	assert.Error(t, NewMetrics().Register(reg))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.fileOpened(nil)
		m.messageDecoded()
		m.datasetLoaded("h03b")
		m.decodeError("format")
		m.observe("init", 0)
	})
}
