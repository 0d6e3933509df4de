package assembler

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-assembler/ndarray"
)

// BasicAssembler writes chunks into per-subject accumulators at the position
// given by each chunk's index expression.
//
// Completion is inferred from the stream order: when a chunk for an unseen
// subject arrives, every open subject is flushed to the ready set. Callers
// must therefore deliver each subject's chunks contiguously, and mark the
// final batch with last so the trailing subjects are flushed too. A chunk
// for a subject that was already flushed is rejected with ErrOutOfOrder.
type BasicAssembler struct {
	opts  *options
	store *subjectStore
	ready *readySet
}

// NewBasic creates a BasicAssembler.
func NewBasic(opts ...Option) *BasicAssembler {
	return newBasic(buildOptions(opts))
}

func newBasic(o *options) *BasicAssembler {
	return &BasicAssembler{
		opts:  o,
		store: newSubjectStore(),
		ready: newReadySet(),
	}
}

func (a *BasicAssembler) AddBatch(entries Entries, batch *Batch, last bool) error {
	n, err := batch.size(fieldSubjects | fieldIndexExprs | fieldShapes)
	if err != nil {
		return err
	}
	if err := checkEntries(entries, n, 2); err != nil {
		return err
	}

	keys := entries.Keys()
	for idx := 0; idx < n; idx++ {
		if err := a.addSample(entries, keys, batch, idx, a.opts.sample); err != nil {
			return err
		}
	}

	if last {
		a.Flush()
	}
	return nil
}

type placement struct {
	key   string
	data  *ndarray.Array
	start []int
	count []int
}

// addSample writes chunk idx of the batch. Every entry is prepared and
// checked before the store is touched.
func (a *BasicAssembler) addSample(entries Entries, keys []string, batch *Batch, idx int, sample SampleFunc) error {
	subject := batch.SubjectIndices[idx]
	if a.ready.contains(subject) {
		return fmt.Errorf("%w: subject %d (batch index %d)", ErrOutOfOrder, subject, idx)
	}

	acc, open := a.store.get(subject)
	if !open {
		var err error
		if acc, err = a.allocate(entries, keys, batch, idx); err != nil {
			return err
		}
	}

	writes := make([]placement, 0, len(keys))
	for _, key := range keys {
		target, ok := acc[key]
		if !ok {
			return fmt.Errorf("%w: entry %q was not present when subject %d was opened", ErrShapeMismatch, key, subject)
		}

		chunk, err := entries[key].Index(idx)
		if err != nil {
			return err
		}
		data, expr, err := sample(SampleParams{Key: key, Data: chunk, Batch: batch, BatchIndex: idx})
		if err != nil {
			return fmt.Errorf("preparing entry %q of subject %d: %w", key, subject, err)
		}

		shape := target.Shape()
		start, count, err := expr.Region(shape)
		if err != nil {
			return fmt.Errorf("placing entry %q of subject %d: %w", key, subject, err)
		}
		selected, err := expr.SelectedShape(shape)
		if err != nil {
			return err
		}
		if ndarray.NumElements(selected) != data.Len() || !squeezedEqual(selected, data.Shape()) {
			return fmt.Errorf("%w: entry %q of subject %d has shape %v, %v selects %v",
				ErrShapeMismatch, key, subject, data.Shape(), expr, selected)
		}
		writes = append(writes, placement{key: key, data: data, start: start, count: count})
	}

	if !open {
		if a.store.len() > 0 {
			a.Flush()
		}
		a.store.put(subject, acc)
		a.opts.logger.Debug("opened subject", zap.Int("subject", subject), zap.Strings("keys", keys))
	}

	for _, w := range writes {
		if err := acc[w.key].SetRegion(w.start, w.count, w.data); err != nil {
			return fmt.Errorf("writing entry %q of subject %d: %w", w.key, subject, err)
		}
	}
	return nil
}

func (a *BasicAssembler) allocate(entries Entries, keys []string, batch *Batch, idx int) (Entries, error) {
	for _, d := range batch.Shapes[idx] {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in subject shape %v (batch index %d)", ErrConfiguration, batch.Shapes[idx], idx)
		}
	}

	acc := make(Entries, len(keys))
	for _, key := range keys {
		shape := append(slices.Clone(batch.Shapes[idx]), entries[key].Dim(-1))
		arr := a.opts.zero(shape, key, batch, idx)
		if arr == nil || !slices.Equal(arr.Shape(), shape) {
			return nil, fmt.Errorf("%w: zero function returned %v for entry %q, expected shape %v", ErrShapeMismatch, arr, key, shape)
		}
		acc[key] = arr
	}
	return acc, nil
}

// Flush marks every open subject ready.
func (a *BasicAssembler) Flush() {
	subjects := a.store.subjects()
	if len(subjects) == 0 {
		return
	}
	a.ready.add(subjects...)
	a.opts.logger.Debug("flushed subjects", zap.Ints("subjects", subjects))
}

// Pending returns the number of subjects held, ready or not.
func (a *BasicAssembler) Pending() int {
	return a.store.len()
}

func (a *BasicAssembler) GetAssembledSubject(subject int) (Entries, error) {
	acc, ok := a.store.get(subject)
	if !ok {
		return nil, fmt.Errorf("%w: subject %d not in assembler", ErrState, subject)
	}
	if !a.ready.remove(subject) {
		a.opts.logger.Debug("retrieving subject before it was flushed", zap.Int("subject", subject))
	}
	a.store.remove(subject)
	return acc, nil
}

func (a *BasicAssembler) SubjectsReady() []int {
	return a.ready.values()
}

// Ready reports whether subject is awaiting retrieval.
func (a *BasicAssembler) Ready(subject int) bool {
	return a.ready.contains(subject)
}

func (a *BasicAssembler) has(subject int) bool {
	_, ok := a.store.get(subject)
	return ok
}

// peek returns the accumulator without removing it.
func (a *BasicAssembler) peek(subject int) (Entries, bool) {
	return a.store.get(subject)
}
