package store

import "context"

// KnowledgeDocument is a curated reference text maintained by admins.
// Full replace or delete are the only mutations; there is no versioning.
type KnowledgeDocument struct {
	ID        int32
	UID       string
	Title     string
	Content   string // extracted plain text
	FileType  string // "pdf", "txt", ...
	CreatedTs int64
}

// FindKnowledgeDocument filters for ListKnowledgeDocuments.
type FindKnowledgeDocument struct {
	ID  *int32
	UID *string
}

// CreateKnowledgeDocument persists a new reference document.
func (s *Store) CreateKnowledgeDocument(ctx context.Context, create *KnowledgeDocument) (*KnowledgeDocument, error) {
	return s.driver.CreateKnowledgeDocument(ctx, create)
}

// ListKnowledgeDocuments lists reference documents, newest first.
func (s *Store) ListKnowledgeDocuments(ctx context.Context, find *FindKnowledgeDocument) ([]*KnowledgeDocument, error) {
	return s.driver.ListKnowledgeDocuments(ctx, find)
}

// GetKnowledgeDocument returns the first match, nil when absent.
func (s *Store) GetKnowledgeDocument(ctx context.Context, find *FindKnowledgeDocument) (*KnowledgeDocument, error) {
	docs, err := s.driver.ListKnowledgeDocuments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// DeleteKnowledgeDocument removes a reference document.
func (s *Store) DeleteKnowledgeDocument(ctx context.Context, uid string) error {
	return s.driver.DeleteKnowledgeDocument(ctx, uid)
}
