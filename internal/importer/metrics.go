package importer

import (
	"context"

	"github.com/gfox0104/AetPlugin/internal/footage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/gfox0104/AetPlugin/internal/importer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	layers            metric.Int64Counter
	keyframes         metric.Int64Counter
	footage           metric.Int64Counter
	attributeFailures metric.Int64Counter
}

func newMetrics(m metric.Meter) (*metrics, error) {
	var (
		mt  metrics
		err error
	)

	mt.layers, err = m.Int64Counter(
		"aet.import.layers",
		metric.WithDescription("Layers instantiated in the host"),
	)
	if err != nil {
		return nil, err
	}

	mt.keyframes, err = m.Int64Counter(
		"aet.import.keyframes",
		metric.WithDescription("Keyframes emitted to the host"),
	)
	if err != nil {
		return nil, err
	}

	mt.footage, err = m.Int64Counter(
		"aet.import.footage",
		metric.WithDescription("Footage items created, by resolution"),
	)
	if err != nil {
		return nil, err
	}

	mt.attributeFailures, err = m.Int64Counter(
		"aet.import.attribute_failures",
		metric.WithDescription("Layer attribute calls the host rejected"),
	)
	if err != nil {
		return nil, err
	}

	return &mt, nil
}

// noopMetrics is used when instruments cannot be created.
func noopMetrics() *metrics {
	mt, _ := newMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return mt
}

func (m *metrics) layerAdded() {
	m.layers.Add(context.Background(), 1)
}

func (m *metrics) keyframesEmitted(n int) {
	if n > 0 {
		m.keyframes.Add(context.Background(), int64(n))
	}
}

func (m *metrics) footageCreated(res footage.Resolution) {
	m.footage.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("resolution", res.String())))
}

func (m *metrics) attributeFailed(attr string) {
	m.attributeFailures.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("attribute", attr)))
}
