package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"
)

// maxLineSize caps the scanner buffer at 1MB per line.
const maxLineSize = 1024 * 1024

// FileSource implements LineSource for reading raw lines from log files.
// Lines that are not valid UTF-8 are skipped with a logged warning; the
// stream never aborts on a single bad line.
type FileSource struct {
	files []string

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	currentOffset  int64
	fileIndex      int
	skipped        int
}

// NewFileSource creates a LineSource that reads the given files in order.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next raw line across all files.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			raw := s.currentScanner.Text()
			offset := s.currentOffset
			s.currentOffset += int64(len(s.currentScanner.Bytes())) + 1

			if !utf8.ValidString(raw) {
				s.skipped++
				log.Printf("skipping undecodable line %s:%d (byte offset %d)",
					s.currentSource, s.currentLine, offset)
				continue
			}

			return &LogLine{
				Raw:     raw,
				Source:  s.currentSource,
				LineNum: s.currentLine,
				Offset:  offset,
			}, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next.
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Skipped returns the number of lines dropped for invalid encoding.
func (s *FileSource) Skipped() int {
	return s.skipped
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = newLineScanner(f)
	s.currentSource = path
	s.currentLine = 0
	s.currentOffset = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}

// ReaderSource implements LineSource over an arbitrary io.Reader, for
// callers feeding a stream rather than files.
type ReaderSource struct {
	scanner *bufio.Scanner
	name    string
	line    int
	offset  int64
	skipped int
	closer  io.Closer
}

// NewReaderSource creates a LineSource over r. The name labels lines for
// reporting. If r implements io.Closer it is closed by Close.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	closer, _ := r.(io.Closer)
	return &ReaderSource{
		scanner: newLineScanner(r),
		name:    name,
		closer:  closer,
	}
}

// Next returns the next raw line from the stream.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", s.name, err)
			}
			return nil, io.EOF
		}

		s.line++
		raw := s.scanner.Text()
		offset := s.offset
		s.offset += int64(len(s.scanner.Bytes())) + 1

		if !utf8.ValidString(raw) {
			s.skipped++
			log.Printf("skipping undecodable line %s:%d (byte offset %d)", s.name, s.line, offset)
			continue
		}

		return &LogLine{
			Raw:     raw,
			Source:  s.name,
			LineNum: s.line,
			Offset:  offset,
		}, nil
	}
}

// Close closes the underlying reader if it is closeable.
func (s *ReaderSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}
