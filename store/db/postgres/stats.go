package postgres

import (
	"context"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) GetDashboardStats(ctx context.Context, activeSince int64) (*store.DashboardStats, error) {
	stats := &store.DashboardStats{}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&stats.TotalConversations); err != nil {
		return nil, err
	}
	activeQuery := `SELECT COUNT(DISTINCT c.user_id)
	                FROM conversations c
	                JOIN messages m ON m.conversation_id = c.id
	                WHERE c.user_id IS NOT NULL AND m.created_ts >= $1`
	if err := d.db.QueryRowContext(ctx, activeQuery, activeSince).Scan(&stats.ActiveUsers24h); err != nil {
		return nil, err
	}
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE status = $1", store.ConversationRiskDetected,
	).Scan(&stats.RiskCases); err != nil {
		return nil, err
	}
	return stats, nil
}

func (d *DB) CountConversationsByUser(ctx context.Context, userID int32) (int32, error) {
	var count int32
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE user_id = $1", userID,
	).Scan(&count)
	return count, err
}
