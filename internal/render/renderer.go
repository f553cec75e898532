package render

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Surface is the live map layer group the renderer draws into. The real
// implementation wraps the map widget; tests record calls.
type Surface interface {
	AddPolygon(ring orb.Ring, style PolygonStyle)
	AddLine(line orb.LineString, style LineStyle)
	AddMarker(pt orb.Point, size int)
	Clear()
	FitBounds(bound orb.Bound)
	Zoom() float64
}

// Forwarder receives each batch before it is drawn, for persistence.
// Failures are logged and never block rendering.
type Forwarder interface {
	StoreBatch(ctx context.Context, batch []*geojson.Feature) error
}

// Renderer draws a geometry collection in fixed-size batches so the event
// loop stays responsive, and cancels a superseded render before the new one
// touches the surface. The surface is only ever mutated from the render
// goroutine of the current job.
type Renderer struct {
	Styles     Styles
	BatchDelay time.Duration
	ResetDelay time.Duration
	Forwarder  Forwarder

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	surface Surface
}

func NewRenderer(styles Styles) *Renderer {
	delay := time.Duration(styles.BatchDelayMs) * time.Millisecond
	return &Renderer{
		Styles:     styles,
		BatchDelay: delay,
		ResetDelay: time.Second,
	}
}

// Render starts drawing the collection and returns a channel closed when the
// job completes or is cancelled. Any in-flight render is cancelled first and
// its partial layer group removed; once a job's context is cancelled it never
// mutates the surface again, even if its batch timer has already been queued.
func (r *Renderer) Render(ctx context.Context, fc *geojson.FeatureCollection, surface Surface, progress func(float64)) <-chan struct{} {
	r.mu.Lock()
	cancel, prevDone, prevSurface := r.cancel, r.done, r.surface
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		// the cancelled goroutine finishes its in-flight batch and exits;
		// it must stop touching the surface before we clear it
		<-prevDone
		prevSurface.Clear()
	}

	jobCtx, jobCancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = jobCancel
	r.done = done
	r.surface = surface
	r.mu.Unlock()

	go r.run(jobCtx, fc, surface, progress, done)
	return done
}

// Cancel stops the in-flight render, if any, and removes its layer group.
// Component teardown calls this too.
func (r *Renderer) Cancel() {
	r.mu.Lock()
	cancel, done, surface := r.cancel, r.done, r.surface
	r.cancel, r.done, r.surface = nil, nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		surface.Clear()
	}
}

func (r *Renderer) run(ctx context.Context, fc *geojson.FeatureCollection, surface Surface, progress func(float64), done chan struct{}) {
	defer close(done)

	report := func(percent float64) {
		if progress != nil {
			progress(percent)
		}
	}

	batchSize := r.Styles.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultStyles().BatchSize
	}

	features := fc.Features
	total := len(features)
	var bound orb.Bound
	haveBound := false

	for start := 0; start < total; start += batchSize {
		// checked at schedule time
		if ctx.Err() != nil {
			return
		}

		if start > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.BatchDelay):
			}
		}

		// checked again at batch start; a cancel flagged while the timer
		// was pending must win
		if ctx.Err() != nil {
			return
		}

		end := start + batchSize
		if end > total {
			end = total
		}
		batch := features[start:end]

		if r.Forwarder != nil {
			if err := r.Forwarder.StoreBatch(ctx, batch); err != nil {
				log.Println("Failed to store batch:", err)
			}
		}

		for _, feature := range batch {
			if b, ok := r.renderFeature(surface, feature); ok {
				if haveBound {
					bound = bound.Union(b)
				} else {
					bound = b
					haveBound = true
				}
			}
		}

		report(math.Min(100, 80+float64(end)/float64(total)*20))
	}

	if ctx.Err() != nil {
		return
	}

	if haveBound {
		surface.FitBounds(bound)
	}
	report(100)

	select {
	case <-ctx.Done():
	case <-time.After(r.ResetDelay):
		report(0)
	}
}

// renderFeature draws one feature and reports the bound of what was drawn.
// A malformed geometry is logged and skipped, never aborting the batch.
func (r *Renderer) renderFeature(surface Surface, feature *geojson.Feature) (bound orb.Bound, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Println("Failed to render feature:", rec)
			ok = false
		}
	}()

	switch geom := feature.Geometry.(type) {
	case orb.Point:
		surface.AddMarker(geom, r.markerSize(surface.Zoom()))
		return geom.Bound(), true

	case orb.MultiPoint:
		if len(geom) == 0 {
			return bound, false
		}
		size := r.markerSize(surface.Zoom())
		for _, pt := range geom {
			surface.AddMarker(pt, size)
		}
		return geom.Bound(), true

	case orb.LineString:
		return r.renderLine(surface, geom)

	case orb.MultiLineString:
		// flatten to one coordinate list before decimation
		var flat orb.LineString
		for _, line := range geom {
			flat = append(flat, line...)
		}
		return r.renderLine(surface, flat)

	case orb.Polygon:
		return r.renderOuterRing(surface, geom)

	case orb.MultiPolygon:
		drawn := false
		for _, polygon := range geom {
			if b, k := r.renderOuterRing(surface, polygon); k {
				if drawn {
					bound = bound.Union(b)
				} else {
					bound = b
					drawn = true
				}
			}
		}
		return bound, drawn

	default:
		return bound, false
	}
}

func (r *Renderer) renderLine(surface Surface, line orb.LineString) (orb.Bound, bool) {
	simplified := decimate(line, r.Styles.LineStep)
	if len(simplified) <= 1 {
		return orb.Bound{}, false
	}
	surface.AddLine(simplified, r.Styles.Line)
	return simplified.Bound(), true
}

// renderOuterRing draws only the outer ring; holes are not worth the vertex
// budget at the zoom levels this map runs at.
func (r *Renderer) renderOuterRing(surface Surface, polygon orb.Polygon) (orb.Bound, bool) {
	if len(polygon) == 0 {
		return orb.Bound{}, false
	}
	simplified := orb.Ring(decimate(orb.LineString(polygon[0]), r.Styles.PolygonStep))
	if len(simplified) <= 3 {
		return orb.Bound{}, false
	}
	surface.AddPolygon(simplified, r.Styles.Polygon)
	return simplified.Bound(), true
}

// markerSize scales the base marker with zoom, clamped to 0.5x-2x of the
// size at zoom 10.
func (r *Renderer) markerSize(zoom float64) int {
	base := float64(r.Styles.MarkerBaseSize)
	factor := math.Max(0.5, math.Min(2, zoom/10))
	return int(math.Round(base * factor))
}

// decimate keeps every step-th vertex, starting with the first.
func decimate(line orb.LineString, step int) orb.LineString {
	if step <= 1 {
		return line
	}
	out := make(orb.LineString, 0, len(line)/step+1)
	for i, pt := range line {
		if i%step == 0 {
			out = append(out, pt)
		}
	}
	return out
}
