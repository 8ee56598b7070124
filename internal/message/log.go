package message

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives every message reported through a Log.
type Sink interface {
	Add(Message)
}

// Log fans messages out to its sinks. A Log returned by At shares the
// sinks of its parent but stamps messages with a CSS file position.
// All methods are safe on a nil *Log and for concurrent use.
type Log struct {
	shared *sinks
	file   string
	line   int
}

type sinks struct {
	mu  sync.Mutex
	all []Sink
}

// New returns a Log writing to the given sinks.
func New(s ...Sink) *Log {
	return &Log{shared: &sinks{all: s}, line: -1}
}

// At returns a Log whose messages are attributed to file:line.
func (l *Log) At(file string, line int) *Log {
	if l == nil {
		return nil
	}
	return &Log{shared: l.shared, file: file, line: line}
}

// Tee returns a Log that reports to s in addition to every sink of l.
func (l *Log) Tee(s ...Sink) *Log {
	if l == nil {
		return New(s...)
	}
	all := append([]Sink{forward{l.shared}}, s...)
	return &Log{shared: &sinks{all: all}, file: l.file, line: l.line}
}

type forward struct{ to *sinks }

func (f forward) Add(m Message) { f.to.add(m) }

func (s *sinks) add(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.all {
		sink.Add(m)
	}
}

// Log reports a message of the given level and kind.
func (l *Log) Log(level Level, kind Kind, args ...any) {
	if l == nil {
		return
	}
	l.shared.add(Message{Level: level, Kind: kind, Args: args, File: l.file, Line: l.line})
}

func (l *Log) Info(kind Kind, args ...any)    { l.Log(Info, kind, args...) }
func (l *Log) Notice(kind Kind, args ...any)  { l.Log(Notice, kind, args...) }
func (l *Log) Warning(kind Kind, args ...any) { l.Log(Warning, kind, args...) }
func (l *Log) Error(kind Kind, args ...any)   { l.Log(Error, kind, args...) }

// Memory collects messages in order.
type Memory struct {
	mu   sync.Mutex
	msgs []Message
}

func (m *Memory) Add(msg Message) {
	m.mu.Lock()
	m.msgs = append(m.msgs, msg)
	m.mu.Unlock()
}

// Messages returns a copy of everything collected so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.msgs))
	copy(out, m.msgs)
	return out
}

// Kinds returns the kind of every collected message, in order.
func (m *Memory) Kinds() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kind, len(m.msgs))
	for i, msg := range m.msgs {
		out[i] = msg.Kind
	}
	return out
}

// Has reports whether a message of kind k was collected.
func (m *Memory) Has(k Kind) bool {
	for _, got := range m.Kinds() {
		if got == k {
			return true
		}
	}
	return false
}

// Counter counts messages per level.
type Counter struct {
	mu     sync.Mutex
	counts map[Level]int
}

func (c *Counter) Add(msg Message) {
	c.mu.Lock()
	if c.counts == nil {
		c.counts = make(map[Level]int)
	}
	c.counts[msg.Level]++
	c.mu.Unlock()
}

// Count returns how many messages of level l were seen.
func (c *Counter) Count(l Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[l]
}

// Printer writes messages at or above Min as "[smartsprites] LEVEL: ..."
// lines. Status messages are always written.
type Printer struct {
	W   io.Writer
	Min Level
}

func (p *Printer) Add(msg Message) {
	if msg.Level < p.Min && msg.Level != Status {
		return
	}
	fmt.Fprintf(p.W, "[smartsprites] %s\n", msg)
}
