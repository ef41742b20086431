package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := "INSERT INTO `users` (`email`, `password_hash`, `full_name`, `role`, `is_admin`, `is_approved`) VALUES (?, ?, ?, ?, ?, ?)"
	result, err := d.db.ExecContext(ctx, stmt,
		create.Email, create.PasswordHash, create.FullName, create.Role, create.IsAdmin, create.IsApproved)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	id := int32(rawID)
	return d.GetUser(ctx, &store.FindUser{ID: &id})
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, email, password_hash, full_name, role, is_admin, is_approved, UNIX_TIMESTAMP(created_ts)
		 FROM users WHERE %s ORDER BY id ASC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.User
	for rows.Next() {
		u := &store.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsAdmin, &u.IsApproved, &u.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	list, err := d.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if v := update.FullName; v != nil {
		set, args = append(set, "`full_name` = ?"), append(args, *v)
	}
	if v := update.IsApproved; v != nil {
		set, args = append(set, "`is_approved` = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
	}
	args = append(args, update.ID)
	stmt := fmt.Sprintf("UPDATE `users` SET %s WHERE `id` = ?", strings.Join(set, ", "))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, err
	}
	return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
}
