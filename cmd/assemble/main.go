// Command assemble replays batch prediction streams through a subject
// assembler and writes the assembled subjects.
//
//	assemble synth --output stream.msgpack --shape 4,5,6 --subjects 3 --planes
//	assemble run --input stream.msgpack --output out --mode plane
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
