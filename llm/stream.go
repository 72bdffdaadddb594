package llm

import (
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
)

// ChunkReader yields text fragments. Read returns io.EOF once the response is complete.
// Close may be called while a Read is blocked and must unblock it.
type ChunkReader interface {
	Read() (string, error)
	Close() error
}

// Stream is a lazy, single-pass sequence of text fragments.
// Fragments read once are never replayed; after the end Next keeps returning io.EOF.
// Close may be called from another goroutine to abandon a pending Next.
type Stream struct {
	readMu sync.Mutex // serializes Next

	mu         sync.Mutex
	reader     ChunkReader
	text       strings.Builder
	done       bool
	completed  bool
	err        error
	onComplete []func(text string)
}

// NewStream wraps reader.
func NewStream(reader ChunkReader) *Stream {
	return &Stream{reader: reader}
}

// Next returns the next non-empty fragment.
// A read failure is returned once; every later call returns io.EOF.
func (s *Stream) Next() (string, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	for {
		s.mu.Lock()
		if s.done {
			err := s.err
			s.err = nil
			s.mu.Unlock()
			if err != nil {
				return "", err
			}
			return "", io.EOF
		}
		s.mu.Unlock()

		fragment, err := s.reader.Read()

		s.mu.Lock()
		if s.done {
			// closed while reading
			s.mu.Unlock()
			return "", io.EOF
		}
		if err != nil {
			callbacks, text := s.finish(err)
			failure := s.err
			s.err = nil
			s.mu.Unlock()
			for _, fn := range callbacks {
				fn(text)
			}
			if failure != nil {
				return "", failure
			}
			return "", io.EOF
		}
		if fragment != "" {
			s.text.WriteString(fragment)
		}
		s.mu.Unlock()
		if fragment != "" {
			return fragment, nil
		}
	}
}

// finish must be called with s.mu held.
func (s *Stream) finish(err error) ([]func(string), string) {
	s.done = true
	closeErr := s.reader.Close()
	if !errors.Is(err, io.EOF) {
		s.err = err
		return nil, ""
	}
	if closeErr != nil {
		s.err = closeErr
		return nil, ""
	}
	s.completed = true
	callbacks := s.onComplete
	s.onComplete = nil
	return callbacks, s.text.String()
}

// All iterates over the remaining fragments.
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			fragment, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// Text drains the stream and concatenates the fragments not consumed yet.
func (s *Stream) Text() (string, error) {
	var sb strings.Builder
	for fragment, err := range s.All() {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}

// OnComplete registers fn to receive the full text once the stream is drained
// without error. It runs immediately if that already happened.
// A stream closed early never completes.
func (s *Stream) OnComplete(fn func(text string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.completed {
		text := s.text.String()
		s.mu.Unlock()
		fn(text)
		return
	}
	if !s.done {
		s.onComplete = append(s.onComplete, fn)
	}
	s.mu.Unlock()
}

// Close abandons the remaining fragments. It does not wait for a pending Next,
// which then returns io.EOF.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	s.onComplete = nil
	return s.reader.Close()
}
