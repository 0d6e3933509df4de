// Package assembler rebuilds whole-subject arrays from batched predictions
// made on chunks (slices, patches) of those subjects.
//
// A model that sees only chunks produces, per batch, one array per output
// with a leading batch dimension and a trailing channel dimension. Alongside
// the batch the data pipeline extracts, per chunk, the subject index, the
// [indexexpr.Expr] placing the chunk in its subject, and the subject shape.
// An [Assembler] consumes both and keeps one accumulator per open subject.
//
// # Protocol
//
// The producer and consumer share one goroutine:
//
//	for i, batch := range batches {
//	    if err := a.AddBatch(predictions[i], batch, i == len(batches)-1); err != nil {
//	        return err
//	    }
//	    for _, subject := range a.SubjectsReady() {
//	        entries, err := a.GetAssembledSubject(subject)
//	        ...
//	    }
//	}
//
// Assemblers hold no locks; concurrent use must be serialized by the caller.
// Retrieval hands ownership of the arrays to the caller.
//
// # Completion
//
// There is no per-chunk completion signal. [BasicAssembler] assumes the
// stream delivers each subject's chunks contiguously: when a chunk for an
// unseen subject arrives, every open subject is flushed to the ready set.
// The last batch flag flushes the remaining subjects. A chunk for a subject
// that has already been flushed fails with [ErrOutOfOrder].
//
// # Assemblers
//
//   - [BasicAssembler]: one accumulator per subject and entry.
//   - [PlaneAssembler]: one BasicAssembler per plane dimension, with a size
//     correction applied to each chunk and a merge of the planes on
//     retrieval. A subject is ready once it is ready in every plane.
//   - [FlatAssembler]: chunks are whole subjects and are ready immediately.
//
// # Strategies
//
// Allocation ([WithZeroFunc]), per-sample preparation ([WithSampleFunc]),
// plane merging ([WithMergeFunc]) and size correction ([WithSizeCorrection])
// are set at construction.
//
// # Errors
//
// Missing batch metadata fails with [ErrConfiguration]; retrieving an unknown
// subject fails with [ErrState]. Chunks are validated before the store is
// modified, so a failing chunk leaves earlier chunks of the call written and
// nothing else.
package assembler
