package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/iuristatech/legalchat/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `INSERT INTO users (email, password_hash, full_name, role, is_admin, is_approved)
	         VALUES ($1, $2, $3, $4, $5, $6)
	         RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Email, create.PasswordHash, create.FullName, create.Role, create.IsAdmin, create.IsApproved,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, email, password_hash, full_name, role, is_admin, is_approved, created_ts
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
		set, args = append(set, "full_name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.IsApproved; v != nil {
		set, args = append(set, "is_approved = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
	}
	args = append(args, update.ID)
	stmt := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = %s
		 RETURNING id, email, password_hash, full_name, role, is_admin, is_approved, created_ts`,
		strings.Join(set, ", "), placeholder(len(args)),
	)
	u := &store.User{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsAdmin, &u.IsApproved, &u.CreatedTs); err != nil {
		return nil, err
	}
	return u, nil
}
