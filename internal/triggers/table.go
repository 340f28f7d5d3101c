// Package triggers holds the keyword auto-reply table.
//
// A Table is built once at startup and never mutated afterwards, so it can be
// shared by every message handler without locking. Matching is first-in-table:
// a more specific phrase must be listed before a more general one that it
// contains.
package triggers

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyPhrase = errors.New("trigger phrase is empty")

type Entry struct {
	Phrase string
	Reply  string
}

type Table struct {
	entries []Entry
}

// DefaultEntries is the stock reply set, in match order.
func DefaultEntries() []Entry {
	return []Entry{
		{Phrase: "hello tempest", Reply: "Hello there! 👋 How can I help?"},
		{Phrase: "thank you tempest", Reply: "You're welcome! 😊"},
		{Phrase: "good bot", Reply: "Aww, thanks! ❤️"},
		{Phrase: "bad bot", Reply: "I'll try harder next time... 😢"},
	}
}

func NewTable(entries []Entry) (*Table, error) {
	table := &Table{entries: make([]Entry, 0, len(entries))}
	for i, entry := range entries {
		phrase := normalize(entry.Phrase)
		if phrase == "" {
			return nil, fmt.Errorf("trigger %d: %w", i, ErrEmptyPhrase)
		}
		table.entries = append(table.entries, Entry{Phrase: phrase, Reply: entry.Reply})
	}
	return table, nil
}

// Match returns the first entry whose phrase occurs anywhere in the
// lower-cased, trimmed text.
func (t *Table) Match(text string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	content := normalize(text)
	if content == "" {
		return Entry{}, false
	}
	for _, entry := range t.entries {
		if strings.Contains(content, entry.Phrase) {
			return entry, true
		}
	}
	return Entry{}, false
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table in match order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
