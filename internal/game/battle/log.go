package battle

import "sync"

// Log is an in-memory notice sink.
//
// Log is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// NewLog returns an empty Log.
func NewLog() *Log { return &Log{} }

// Notice appends msg.
func (l *Log) Notice(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

// Entries returns a copy of every notice in arrival order.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Tee fans notices out to several sinks.
type Tee []interface{ Notice(string) }

// Notice forwards msg to every sink.
func (t Tee) Notice(msg string) {
	for _, s := range t {
		s.Notice(msg)
	}
}
