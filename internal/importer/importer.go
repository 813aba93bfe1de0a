// Package importer translates an Aet scene graph into a host project: the
// folder tree, footage, composition shells, layers, their attributes and
// their keyframed transform properties.
package importer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gfox0104/AetPlugin/internal/footage"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/pkg/aet"
	"go.opentelemetry.io/otel/metric"
)

// Report summarizes one translation.
type Report struct {
	SetName           string
	SceneName         string
	RootComp          string
	Compositions      int
	Layers            int
	LayersSkipped     int
	Keyframes         int
	Footage           map[footage.Resolution]int
	AttributeFailures int
	Duration          time.Duration
}

// Importer drives a host to rebuild Aet scenes.
type Importer struct {
	host    host.Host
	logger  *slog.Logger
	assets  []footage.Asset
	meter   metric.Meter
	metrics *metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithAssets sets the working directory assets footage may resolve to.
func WithAssets(assets []footage.Asset) Option {
	return func(im *Importer) {
		im.assets = assets
	}
}

// WithMeter sets the meter import counters are created on.
func WithMeter(m metric.Meter) Option {
	return func(im *Importer) {
		im.meter = m
	}
}

// New creates an importer authoring into h.
func New(h host.Host, logger *slog.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	im := &Importer{host: h, logger: logger}
	for _, opt := range opts {
		opt(im)
	}
	if im.meter == nil {
		im.meter = meter()
	}

	mt, err := newMetrics(im.meter)
	if err != nil {
		logger.Warn("Failed to create import metrics", "error", err)
		mt = noopMetrics()
	}
	im.metrics = mt
	return im
}

// Import translates the first scene of set. Scene-level preconditions are
// checked before the host is touched; a returned error with a non-nil report
// means the host holds a partial project.
func (im *Importer) Import(set *aet.Set) (*Report, error) {
	start := time.Now()

	if set == nil || len(set.Scenes) == 0 || set.Scenes[0] == nil {
		return nil, ErrNoScene
	}
	scene := set.Scenes[0]
	if len(set.Scenes) > 1 {
		im.logger.Warn("Set has more than one scene, importing the first", "set", set.Name, "scenes", len(set.Scenes))
	}

	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
	}

	sess, err := NewSession(set, scene, im.assets)
	if err != nil {
		return nil, err
	}

	r := &run{
		sess:     sess,
		host:     im.host,
		logger:   im.logger.With("set", set.Name, "scene", scene.Name),
		metrics:  im.metrics,
		handles:  newHandles(),
		resolver: footage.NewResolver(sess.Assets),
		report: &Report{
			SetName:   set.Name,
			SceneName: scene.Name,
			Footage:   make(map[footage.Resolution]int),
		},
	}

	r.logger.Info("Importing scene",
		"frameRate", sess.FrameRate,
		"width", sess.Resolution.Width,
		"height", sess.Resolution.Height,
		"compositions", len(scene.Compositions)+1,
		"assets", len(sess.Assets))

	err = r.buildHierarchy()
	r.report.Duration = time.Since(start)
	if err != nil {
		r.logger.Error("Import aborted", "error", err)
		return r.report, err
	}

	r.logger.Info("Scene imported",
		"rootComp", r.report.RootComp,
		"layers", r.report.Layers,
		"skipped", r.report.LayersSkipped,
		"keyframes", r.report.Keyframes,
		"attributeFailures", r.report.AttributeFailures,
		"duration", r.report.Duration)
	return r.report, nil
}

// run holds the state of one Import call.
type run struct {
	sess     *Session
	host     host.Host
	logger   *slog.Logger
	metrics  *metrics
	handles  *handles
	resolver *footage.Resolver
	report   *Report
}
