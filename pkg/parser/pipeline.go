package parser

import "io"

// NewFilePipeline wires the full pipeline over the given files: reader,
// extractor, coalescer, chunker. Closing the returned Chunker closes the
// whole chain.
func NewFilePipeline(files []string, extractor *Extractor, chunkSize int) (*Chunker, error) {
	source := NewFileSource(files)
	return NewChunker(NewCoalescer(source, extractor), chunkSize)
}

// NewStreamPipeline wires the full pipeline over an arbitrary reader.
func NewStreamPipeline(r io.Reader, name string, extractor *Extractor, chunkSize int) (*Chunker, error) {
	source := NewReaderSource(r, name)
	return NewChunker(NewCoalescer(source, extractor), chunkSize)
}
