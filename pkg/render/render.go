// Package render samples a procedure snapshot over a grid and produces
// preview images of its outputs. Rows are evaluated in parallel; every
// worker owns its own Evaluator.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/proctex/pkg/color"
	"github.com/chazu/proctex/pkg/logger"
	"github.com/chazu/proctex/pkg/procedure"
)

// ErrEmptyImage is returned for a zero or negative image size.
var ErrEmptyImage = errors.New("render: image has no pixels")

// Options control a render.
type Options struct {
	Width, Height int
	Workers       int     // 0 means GOMAXPROCS
	Blur          float64 // passed to every output request
	Time          float64
	Params        []float64
	Eval          procedure.Options
}

// Image holds one sample per pixel for every procedure output. Pixels
// are stored row-major with row 0 at the top.
type Image struct {
	Width, Height int
	Colors        map[string][]color.RGB
	Values        map[string][]float64
	// DepthErrors counts pixels whose evaluation hit the recursion limit.
	DepthErrors int
}

// Render evaluates snap at the center of each pixel of the unit square
// in the z = 0 plane. Cancelling ctx stops scheduling rows; rows already
// running finish and the context error is returned.
func Render(ctx context.Context, snap *procedure.Snapshot, opts Options) (*Image, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrEmptyImage
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	img := &Image{
		Width:  opts.Width,
		Height: opts.Height,
		Colors: make(map[string][]color.RGB),
		Values: make(map[string][]float64),
	}
	type layer struct {
		index  int
		colors []color.RGB
		values []float64
	}
	var layers []layer
	for i, id := range snap.Outputs() {
		out, ok := snap.Node(id).(*procedure.OutputNode)
		if !ok {
			continue
		}
		l := layer{index: i}
		if out.Type() == procedure.Color {
			l.colors = make([]color.RGB, opts.Width*opts.Height)
			img.Colors[out.Name()] = l.colors
		} else {
			l.values = make([]float64, opts.Width*opts.Height)
			img.Values[out.Name()] = l.values
		}
		layers = append(layers, l)
	}

	evaluators := sync.Pool{New: func() any { return snap.NewEvaluator(opts.Eval) }}
	var depthErrors atomic.Int64
	size := v3.Vec{X: 1 / float64(opts.Width), Y: 1 / float64(opts.Height)}

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for row := 0; row < opts.Height; row++ {
		group.SubmitErr(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e := evaluators.Get().(*procedure.Evaluator)
			defer evaluators.Put(e)

			y := 1 - (float64(row)+0.5)*size.Y
			for col := 0; col < opts.Width; col++ {
				e.Init(procedure.PointInfo{
					Pos:    v3.Vec{X: (float64(col) + 0.5) * size.X, Y: y},
					Size:   size,
					T:      opts.Time,
					Params: opts.Params,
				})
				px := row*opts.Width + col
				for _, l := range layers {
					if l.colors != nil {
						l.colors[px] = e.OutputColor(l.index, opts.Blur)
					} else {
						l.values[px] = e.OutputValue(l.index, opts.Blur)
					}
				}
				if e.Err() != nil {
					depthErrors.Add(1)
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	img.DepthErrors = int(depthErrors.Load())
	if img.DepthErrors > 0 {
		logger.Log.Warn("recursion limit reached while rendering",
			zap.Int("pixels", img.DepthErrors), zap.Uint64("version", snap.Version()))
	}
	logger.Log.Debug("rendered preview",
		zap.Int("width", opts.Width), zap.Int("height", opts.Height), zap.Int("workers", workers))
	return img, nil
}

// Layer returns the named output as an image. Color outputs become NRGBA
// images; numeric outputs become grayscale, clamped to [0, 1].
func (im *Image) Layer(name string) (image.Image, error) {
	rect := image.Rect(0, 0, im.Width, im.Height)
	if cs, ok := im.Colors[name]; ok {
		out := image.NewNRGBA(rect)
		for i, c := range cs {
			out.SetNRGBA(i%im.Width, i/im.Width, c.NRGBA())
		}
		return out, nil
	}
	if vs, ok := im.Values[name]; ok {
		out := image.NewGray(rect)
		for i, v := range vs {
			g := color.RGB{R: v, G: v, B: v}.NRGBA()
			out.Pix[i] = g.R
		}
		return out, nil
	}
	return nil, fmt.Errorf("render: no output named %q", name)
}
