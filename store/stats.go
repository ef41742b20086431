package store

import "context"

// DashboardStats are the aggregates shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers         int32
	TotalConversations int32
	// ActiveUsers24h counts distinct users with message activity since the
	// cutoff passed to GetDashboardStats.
	ActiveUsers24h int32
	// RiskCases counts conversations flagged risk_detected.
	RiskCases int32
}

// GetDashboardStats computes admin aggregates. activeSince is the unix
// timestamp cutoff for the active-user count.
func (s *Store) GetDashboardStats(ctx context.Context, activeSince int64) (*DashboardStats, error) {
	return s.driver.GetDashboardStats(ctx, activeSince)
}

// CountConversationsByUser returns how many conversations a user owns.
func (s *Store) CountConversationsByUser(ctx context.Context, userID int32) (int32, error) {
	return s.driver.CountConversationsByUser(ctx, userID)
}
