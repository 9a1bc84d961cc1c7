package services

import (
	"fmt"
	"os"
	"path/filepath"

	"blog-cms/pkg/models"

	json "github.com/goccy/go-json"
)

// Store persists the site document as one JSON file.
//
// Store holds no lock. Every mutation is a read-modify-write of the whole
// file, so two concurrent IncrementViews or Save calls can interleave and the
// last writer wins.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Init creates the document file with empty collections if it is missing.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.Save(models.EmptyDocument())
}

// Load reads the document. A missing file yields an empty document.
func (s *Store) Load() (models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.EmptyDocument(), nil
		}
		return models.Document{}, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	doc.Normalize()
	return doc, nil
}

// Save replaces the stored document in full.
func (s *Store) Save(doc models.Document) error {
	doc = doc.Clone()
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data, 0644)
}

// IncrementViews bumps the view counter of one article and returns the new count.
func (s *Store) IncrementViews(id int64) (int, error) {
	doc, err := s.Load()
	if err != nil {
		return 0, err
	}
	i := doc.FindArticle(id)
	if i < 0 {
		return 0, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	doc.Articles[i].Views++
	if err := s.Save(doc); err != nil {
		return 0, err
	}
	return doc.Articles[i].Views, nil
}
