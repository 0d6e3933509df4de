package assembler

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-assembler/indexexpr"
	"github.com/robert-malhotra/go-assembler/ndarray"
	"github.com/robert-malhotra/go-assembler/transform"
)

// PlaneAssembler assembles subjects predicted along several planes, for
// example axial, coronal and sagittal slices of a volume. Chunks are routed to
// one BasicAssembler per plane dimension and the finished planes are merged.
//
// A subject is ready once it is ready in every plane; readiness is recomputed
// after each batch.
type PlaneAssembler struct {
	opts        *options
	planes      map[int]*BasicAssembler
	corrections map[int]*correction
	ready       *readySet
}

// correction caches the transform of a plane for the last required shape.
type correction struct {
	shape   []int
	entries []string
	t       transform.Transform
}

// NewPlane creates a PlaneAssembler.
func NewPlane(opts ...Option) *PlaneAssembler {
	return &PlaneAssembler{
		opts:        buildOptions(opts),
		planes:      make(map[int]*BasicAssembler),
		corrections: make(map[int]*correction),
		ready:       newReadySet(),
	}
}

func (a *PlaneAssembler) AddBatch(entries Entries, batch *Batch, last bool) error {
	n, err := batch.size(fieldSubjects | fieldIndexExprs | fieldShapes)
	if err != nil {
		return err
	}
	if err := checkEntries(entries, n, 2); err != nil {
		return err
	}

	keys := entries.Keys()
	for idx := 0; idx < n; idx++ {
		expr, err := batch.IndexExprs[idx].Resolve()
		if err != nil {
			return fmt.Errorf("resolving index expression of batch index %d: %w", idx, err)
		}

		dim := expr.PlaneDimension()
		required, err := expr.SelectedShape(batch.Shapes[idx])
		if err != nil {
			return fmt.Errorf("computing in-plane shape of batch index %d: %w", idx, err)
		}

		// New planes and corrections are registered only after a chunk was
		// written to them.
		plane, created := a.plane(dim)
		c := a.correction(dim, required, keys)
		if err := plane.addSample(entries, keys, batch, idx, correctedSample(c.t, expr)); err != nil {
			return fmt.Errorf("plane %d: %w", dim, err)
		}
		a.corrections[dim] = c
		if created {
			a.planes[dim] = plane
			a.opts.logger.Debug("created plane assembler", zap.Int("plane", dim))
		}
	}

	if last {
		for _, dim := range a.dims() {
			a.planes[dim].Flush()
		}
	}
	a.ready = a.intersectReady()
	return nil
}

// plane returns the assembler of dim, or a new unregistered one.
func (a *PlaneAssembler) plane(dim int) (*BasicAssembler, bool) {
	if p, ok := a.planes[dim]; ok {
		return p, false
	}
	o := *a.opts
	o.logger = a.opts.logger.With(zap.Int("plane", dim))
	return newBasic(&o), true
}

// correction returns the cached correction of dim if it still fits, or a new
// one the caller stores after use.
func (a *PlaneAssembler) correction(dim int, shape []int, entries []string) *correction {
	c, ok := a.corrections[dim]
	if ok && slices.Equal(c.shape, shape) && slices.Equal(c.entries, entries) {
		return c
	}
	return &correction{shape: shape, entries: entries, t: a.opts.correction(shape, entries)}
}

// correctedSample runs the plane's transform on one entry. Other entries of
// the transform are not part of the call, so missing ones are tolerated.
func correctedSample(t transform.Transform, expr indexexpr.Expr) SampleFunc {
	return func(p SampleParams) (*ndarray.Array, indexexpr.Expr, error) {
		out, err := t.Apply(transform.Sample{
			Entries: map[string]*ndarray.Array{p.Key: p.Data},
			Index:   expr,
		}, true)
		if err != nil {
			return nil, nil, err
		}
		data, ok := out.Entries[p.Key]
		if !ok {
			return nil, nil, fmt.Errorf("%w: transform dropped entry %q", ErrShapeMismatch, p.Key)
		}
		return data, out.Index, nil
	}
}

func (a *PlaneAssembler) dims() []int {
	dims := make([]int, 0, len(a.planes))
	for dim := range a.planes {
		dims = append(dims, dim)
	}
	slices.Sort(dims)
	return dims
}

func (a *PlaneAssembler) intersectReady() *readySet {
	dims := a.dims()
	if len(dims) == 0 {
		return newReadySet()
	}
	others := make([]*readySet, 0, len(dims)-1)
	for _, dim := range dims[1:] {
		others = append(others, a.planes[dim].ready)
	}
	return a.planes[dims[0]].ready.intersect(others...)
}

// GetAssembledSubject pops the subject from every plane holding it and merges
// each entry across planes in ascending plane order. Nothing is removed if the
// merge fails.
func (a *PlaneAssembler) GetAssembledSubject(subject int) (Entries, error) {
	var holders []int
	for _, dim := range a.dims() {
		if a.planes[dim].has(subject) {
			holders = append(holders, dim)
		}
	}
	if len(holders) == 0 {
		return nil, fmt.Errorf("%w: subject %d not in assembler", ErrState, subject)
	}
	if !a.ready.contains(subject) {
		a.opts.logger.Debug("retrieving subject before it was ready in every plane", zap.Int("subject", subject))
	}

	collected := make(map[string][]*ndarray.Array)
	for _, dim := range holders {
		acc, _ := a.planes[dim].peek(subject)
		for _, key := range acc.Keys() {
			collected[key] = append(collected[key], acc[key])
		}
	}

	merged := make(Entries, len(collected))
	for key, planes := range collected {
		m, err := a.opts.merge(planes)
		if err != nil {
			return nil, fmt.Errorf("merging entry %q of subject %d: %w", key, subject, err)
		}
		merged[key] = m
	}

	for _, dim := range holders {
		if _, err := a.planes[dim].GetAssembledSubject(subject); err != nil {
			return nil, err
		}
	}
	a.ready.remove(subject)
	a.opts.logger.Debug("merged subject", zap.Int("subject", subject), zap.Ints("planes", holders))
	return merged, nil
}

func (a *PlaneAssembler) SubjectsReady() []int {
	return a.ready.values()
}

// Planes returns the plane dimensions seen so far.
func (a *PlaneAssembler) Planes() []int {
	return a.dims()
}
