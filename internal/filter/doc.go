// Package filter implements the byte filter pipeline applied to the array
// payloads of assembled subject files.
//
// Filters are applied in order when encoding and in reverse order when
// decoding. A pipeline is described by a list of filter specs, which are
// stored next to the filtered payload so a reader can rebuild the pipeline.
//
// # Supported Filters
//
//   - deflate[:level]: zlib compression via [Deflate]. The level defaults
//     to 6.
//
//   - shuffle[:size]: byte shuffling via [Shuffle]. Groups byte i of every
//     element together, which helps deflate on float payloads. The element
//     size defaults to 8.
//
//   - fletcher32: a Fletcher-32 checksum appended to the data and verified
//     on decode, via [Fletcher32Filter].
//
// # Filter Pipeline
//
//	p, err := filter.NewPipeline("shuffle", "deflate:9", "fletcher32")
//	encoded, err := p.Encode(raw)
//	raw, err = p.Decode(encoded)
//
// Encoding with [shuffle, deflate] shuffles first, then compresses; decoding
// decompresses first, then unshuffles.
package filter
