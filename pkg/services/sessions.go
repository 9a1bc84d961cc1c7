package services

import (
	"sync"

	"blog-cms/pkg/models"
)

// EditorSessions keeps one Editor per admin session token. Buffers of
// different sessions are independent; an uncommitted edit in one is invisible
// to the others.
type EditorSessions struct {
	mu      sync.Mutex
	entries map[string]*editorEntry
	load    func() (models.Document, error)
	opts    []EditorOption
}

type editorEntry struct {
	mu     sync.Mutex
	editor *Editor
}

// NewEditorSessions creates a registry that seeds new editors from load.
func NewEditorSessions(load func() (models.Document, error), opts ...EditorOption) *EditorSessions {
	return &EditorSessions{
		entries: make(map[string]*editorEntry),
		load:    load,
		opts:    opts,
	}
}

// With runs fn with the editor of token, creating it from the stored
// document on first use. Calls for the same token are serialized.
func (s *EditorSessions) With(token string, fn func(*Editor) error) error {
	entry, err := s.entry(token)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.editor)
}

// Reset discards the buffer of token; the next With reloads from disk.
func (s *EditorSessions) Reset(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func (s *EditorSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *EditorSessions) entry(token string) (*editorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[token]; ok {
		return entry, nil
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	entry := &editorEntry{editor: NewEditor(doc, s.opts...)}
	s.entries[token] = entry
	return entry, nil
}
