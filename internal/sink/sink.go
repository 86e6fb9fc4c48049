// Package sink defines the export contract shared by every report format and the
// registry the formats add themselves to.
package sink

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"firestige.xyz/pcapreport/internal/core"
)

// Sink consumes the whole record sequence once.
//
// Open, Write and Finalize are called in that order. Finalize persists the output
// and releases resources. Close releases without persisting, is idempotent and is
// safe after Finalize.
type Sink interface {
	Name() string
	Open() error
	Write(rec core.Record) error
	Finalize() error
	Close() error
}

// Targeter is implemented by sinks that write to a named destination.
type Targeter interface {
	Target() string
}

// Config carries the settings a sink constructor may use.
type Config struct {
	Path      string    // output file
	TableName string    // relational sinks
	Writer    io.Writer // stream sinks, stdout when nil
}

// Constructor builds an unopened sink.
type Constructor func(cfg Config) (Sink, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

// Register makes a sink available by name. It panics when name is registered twice.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if ctor == nil {
		panic("sink: Register constructor is nil for " + name)
	}
	if _, exists := registry[name]; exists {
		panic("sink: Register called twice for " + name)
	}
	registry[name] = ctor
}

// New constructs the sink registered as name.
func New(name string, cfg Config) (Sink, error) {
	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSinkNotFound, name)
	}
	return ctor(cfg)
}

// Names lists the registered sinks in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export writes records through s and finalizes it. s is closed on every path.
// It returns the number of records written.
func Export(s Sink, records []core.Record) (rows int, err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: close: %w", core.ErrExportWrite, s.Name(), cerr)
		}
	}()

	if err := s.Open(); err != nil {
		return 0, fmt.Errorf("%w: %s: open: %w", core.ErrExportWrite, s.Name(), err)
	}
	for i, rec := range records {
		if err := s.Write(rec); err != nil {
			return rows, fmt.Errorf("%w: %s: record %d: %w", core.ErrExportWrite, s.Name(), i+1, err)
		}
		rows++
	}
	if err := s.Finalize(); err != nil {
		return rows, fmt.Errorf("%w: %s: finalize: %w", core.ErrExportWrite, s.Name(), err)
	}
	return rows, nil
}
