// Package tailsource exposes the lines of a file as an evchan event source.
package tailsource

import (
	"fmt"
	"io"
	"sync"

	"github.com/baxromumarov/evchan"
	"github.com/nxadm/tail"
	"github.com/sirupsen/logrus"
)

// Options controls how the file is read.
type Options struct {
	// Follow keeps reading as the file grows, and reopens it when it is
	// rotated. Without Follow the source ends at EOF.
	Follow bool
	// FromEnd starts at the current end of the file instead of its start.
	FromEnd bool
	// Poll uses polling instead of inotify to detect changes.
	Poll bool
	// Logger receives tail's own diagnostics. Nil discards them.
	Logger *logrus.Logger
}

// File is an opened file tail. Its [File.Source] can be subscribed once.
type File struct {
	t    *tail.Tail
	once sync.Once
	done chan struct{}
	err  error
}

// Open starts tailing path. The file must exist.
func Open(path string, opts Options) (*File, error) {
	cfg := tail.Config{
		Follow:    opts.Follow,
		ReOpen:    opts.Follow,
		Poll:      opts.Poll,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	}
	if opts.FromEnd {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
	if opts.Logger != nil {
		cfg.Logger = opts.Logger
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("tailing %s: %w", path, err)
	}
	return &File{
		t:    t,
		done: make(chan struct{}),
	}, nil
}

// Source returns the event source for the file. Every line is pushed
// without its trailing newline. The source ends with [evchan.End] when the
// file is exhausted (without Follow) and fails with the read error when a
// line cannot be read. Unsubscribing stops the tail without blocking.
func (f *File) Source() evchan.Source[string] {
	return func(sink evchan.Sink[string]) func() {
		go f.forward(sink)
		return f.stop
	}
}

// Wait blocks until the tail has stopped and returns the error that
// stopped it, if any.
func (f *File) Wait() error {
	<-f.done
	return f.err
}

func (f *File) forward(sink evchan.Sink[string]) {
	defer close(f.done)

	for line := range f.t.Lines {
		if line.Err != nil {
			sink("", line.Err)
			continue // keep draining until tail closes Lines
		}
		sink(line.Text, nil)
	}
	sink("", evchan.End)

	f.err = f.t.Wait()
	f.t.Cleanup()
}

func (f *File) stop() {
	f.once.Do(func() {
		// Kill only signals; forward keeps draining Lines so the tail
		// goroutine can exit.
		f.t.Kill(nil)
	})
}
