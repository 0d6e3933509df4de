package assembler

import (
	"fmt"

	"go.uber.org/zap"
)

// FlatAssembler handles chunks that already are whole subjects, such as
// predictions on two-dimensional images. Every chunk is stored under its
// subject and the subject is ready at once.
type FlatAssembler struct {
	opts  *options
	store *subjectStore
	ready *readySet
}

// NewFlat creates a FlatAssembler. Only WithLogger applies.
func NewFlat(opts ...Option) *FlatAssembler {
	return &FlatAssembler{
		opts:  buildOptions(opts),
		store: newSubjectStore(),
		ready: newReadySet(),
	}
}

// AddBatch stores each chunk; last has no effect since nothing is pending.
// A later chunk for the same subject overwrites the entries it carries.
func (a *FlatAssembler) AddBatch(entries Entries, batch *Batch, _ bool) error {
	n, err := batch.size(fieldSubjects)
	if err != nil {
		return err
	}
	if err := checkEntries(entries, n, 1); err != nil {
		return err
	}

	keys := entries.Keys()
	for idx := 0; idx < n; idx++ {
		subject := batch.SubjectIndices[idx]
		acc, ok := a.store.get(subject)
		if !ok {
			acc = make(Entries, len(keys))
			a.store.put(subject, acc)
		}
		for _, key := range keys {
			data, err := entries[key].Index(idx)
			if err != nil {
				return fmt.Errorf("entry %q of subject %d: %w", key, subject, err)
			}
			acc[key] = data
		}
		a.ready.add(subject)
	}
	a.opts.logger.Debug("stored flat batch", zap.Int("size", n))
	return nil
}

func (a *FlatAssembler) GetAssembledSubject(subject int) (Entries, error) {
	acc, ok := a.store.get(subject)
	if !ok {
		return nil, fmt.Errorf("%w: subject %d not in assembler", ErrState, subject)
	}
	a.ready.remove(subject)
	a.store.remove(subject)
	return acc, nil
}

func (a *FlatAssembler) SubjectsReady() []int {
	return a.ready.values()
}
