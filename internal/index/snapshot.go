// Package index builds immutable search snapshots from a document set and
// swaps them in one generation at a time.
package index

import (
	"sync"
	"time"

	"github.com/hyperjump/smartsearch/internal/keyword"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/vector"
)

// Snapshot is everything the retrieval engines read for one generation.
// Nothing in it changes after the build, so readers need no locks. Readers
// obtained through Manager.Acquire must call Release.
type Snapshot struct {
	generation uint64
	builtAt    time.Time
	docs       []*models.Document
	byID       map[string]*models.Document
	model      *vector.Model

	Exact    *keyword.ExactEngine
	Fuzzy    *keyword.FuzzyEngine
	Semantic *vector.SemanticEngine
	Spell    *keyword.SpellChecker

	terms *keyword.TermIndex
	refs  sync.WaitGroup
}

// Generation returns the build number. Generation 0 is the empty index.
func (s *Snapshot) Generation() uint64 { return s.generation }

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of indexed documents.
func (s *Snapshot) Len() int { return len(s.docs) }

// Empty reports whether nothing is indexed.
func (s *Snapshot) Empty() bool { return len(s.docs) == 0 }

// Documents returns the indexed documents ordered by id.
func (s *Snapshot) Documents() []*models.Document { return s.docs }

// Document looks up an indexed document.
func (s *Snapshot) Document(id string) (*models.Document, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// Model returns the TF-IDF model of this generation.
func (s *Snapshot) Model() *vector.Model { return s.model }

// Retain adds a reference for work that may outlive the caller's own. It is
// only valid while the caller still holds a reference.
func (s *Snapshot) Retain() { s.refs.Add(1) }

// Release ends a read started with Manager.Acquire or Retain.
func (s *Snapshot) Release() { s.refs.Done() }

// retire waits for in-flight readers, then frees the term index.
func (s *Snapshot) retire() error {
	s.refs.Wait()
	if s.terms != nil {
		return s.terms.Close()
	}
	return nil
}
