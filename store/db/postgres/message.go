package postgres

import (
	"context"
	"fmt"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.CreateMessage) (*store.Message, error) {
	stmt := `INSERT INTO messages (conversation_id, sender_role, content)
	         VALUES ($1, $2, $3)
	         RETURNING id, created_ts`
	m := &store.Message{
		ConversationID: create.ConversationID,
		SenderRole:     create.SenderRole,
		Content:        create.Content,
	}
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ConversationID, create.SenderRole, create.Content,
	).Scan(&m.ID, &m.CreatedTs); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	order := "ASC"
	if find.Descending {
		order = "DESC"
	}
	query := fmt.Sprintf(
		`SELECT id, conversation_id, sender_role, content, created_ts
		 FROM messages WHERE conversation_id = $1 ORDER BY id %s`, order)
	if v := find.Limit; v != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *v)
	}
	rows, err := d.db.QueryContext(ctx, query, find.ConversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Message
	for rows.Next() {
		m := &store.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderRole, &m.Content, &m.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
