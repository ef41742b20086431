package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) CreateKnowledgeDocument(ctx context.Context, create *store.KnowledgeDocument) (*store.KnowledgeDocument, error) {
	stmt := `INSERT INTO knowledge_base (uid, title, content, file_type)
	         VALUES (?, ?, ?, ?)
	         RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.Title, create.Content, create.FileType,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListKnowledgeDocuments(ctx context.Context, find *store.FindKnowledgeDocument) ([]*store.KnowledgeDocument, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, uid, title, content, file_type, created_ts
		 FROM knowledge_base WHERE %s ORDER BY created_ts DESC, id DESC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.KnowledgeDocument
	for rows.Next() {
		doc := &store.KnowledgeDocument{}
		if err := rows.Scan(&doc.ID, &doc.UID, &doc.Title, &doc.Content, &doc.FileType, &doc.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

func (d *DB) DeleteKnowledgeDocument(ctx context.Context, uid string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM knowledge_base WHERE uid = ?", uid)
	return err
}
