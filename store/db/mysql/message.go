package mysql

import (
	"context"
	"fmt"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.CreateMessage) (*store.Message, error) {
	stmt := "INSERT INTO `messages` (`conversation_id`, `sender_role`, `content`) VALUES (?, ?, ?)"
	result, err := d.db.ExecContext(ctx, stmt, create.ConversationID, create.SenderRole, create.Content)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	m := &store.Message{
		ID:             int32(rawID),
		ConversationID: create.ConversationID,
		SenderRole:     create.SenderRole,
		Content:        create.Content,
	}
	// Fetch created_ts.
	_ = d.db.QueryRowContext(ctx, "SELECT UNIX_TIMESTAMP(created_ts) FROM messages WHERE id = ?", m.ID).Scan(&m.CreatedTs)
	return m, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	order := "ASC"
	if find.Descending {
		order = "DESC"
	}
	query := fmt.Sprintf(
		`SELECT id, conversation_id, sender_role, content, UNIX_TIMESTAMP(created_ts)
		 FROM messages WHERE conversation_id = ? ORDER BY id %s`, order)
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
