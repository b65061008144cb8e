package spell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Book indexes spells by ID, keeping declaration order.
//
// Invariant: every ID appears at most once.
type Book struct {
	byID  map[ID]*Spell
	order []*Spell
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{byID: make(map[ID]*Spell)}
}

// Add validates and stores s.
//
// Postcondition: returns an error on validation failure or ID collision.
func (b *Book) Add(s *Spell) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, dup := b.byID[s.ID]; dup {
		return fmt.Errorf("spell.Book: duplicate spell %q", s.ID)
	}
	b.byID[s.ID] = s
	b.order = append(b.order, s)
	return nil
}

// Lookup returns the spell with the given ID.
func (b *Book) Lookup(id ID) (*Spell, bool) {
	s, ok := b.byID[id]
	return s, ok
}

// All returns the spells in declaration order.
func (b *Book) All() []*Spell {
	out := make([]*Spell, len(b.order))
	copy(out, b.order)
	return out
}

// Resolve maps ids to spells.
//
// Postcondition: returns an error naming the first unknown id.
func (b *Book) Resolve(ids []ID) ([]*Spell, error) {
	out := make([]*Spell, 0, len(ids))
	for _, id := range ids {
		s, ok := b.byID[id]
		if !ok {
			return nil, fmt.Errorf("spell.Book: unknown spell %q", id)
		}
		out = append(out, s)
	}
	return out, nil
}

type yamlSpellFile struct {
	Spells []*Spell `yaml:"spells"`
}

// ParseBook decodes a YAML document with a top-level "spells" list into b.
func (b *Book) ParseBook(data []byte) error {
	var f yamlSpellFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("spell.ParseBook: %w", err)
	}
	for _, s := range f.Spells {
		if err := b.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// LoadBook reads every *.yaml file in dir into a new Book.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error on the first read, parse, or validation failure.
func LoadBook(dir string) (*Book, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("spell.LoadBook: reading %q: %w", dir, err)
	}
	b := NewBook()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("spell.LoadBook: reading %s: %w", e.Name(), err)
		}
		if err := b.ParseBook(data); err != nil {
			return nil, fmt.Errorf("spell.LoadBook: %s: %w", e.Name(), err)
		}
	}
	return b, nil
}
