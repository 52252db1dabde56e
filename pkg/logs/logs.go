// Package logs holds the user-facing activity log.
package logs

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one line of the activity log.
type Entry struct {
	Time time.Time
	Text string
}

// Store is an append-only list of entries shared by the engine, the bridge
// log subscription and the CLI.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	subs    map[int]func(Entry)
	nextSub int
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		subs: make(map[int]func(Entry)),
		now:  time.Now,
	}
}

// Add appends text. A leading all-uppercase word such as a log level
// emitted by the native helper is dropped.
func (s *Store) Add(text string) {
	entry := Entry{Time: s.now(), Text: stripLevel(text)}
	slog.Debug("Activity", "text", entry.Text)

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	subs := make([]func(Entry), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(entry)
	}
}

func (s *Store) Addf(format string, args ...any) {
	s.Add(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Texts returns the text of every entry.
func (s *Store) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, len(s.entries))
	for i, e := range s.entries {
		texts[i] = e.Text
	}
	return texts
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Subscribe calls fn for every entry added from now on, on the goroutine
// that adds it. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Entry)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func stripLevel(text string) string {
	word, rest, _ := strings.Cut(text, " ")
	if word == "" {
		return text
	}
	for _, r := range word {
		if r < 'A' || r > 'Z' {
			return text
		}
	}
	return rest
}
