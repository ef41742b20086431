// Package db selects the concrete database driver for a profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
	"github.com/iuristatech/legalchat/store/db/mysql"
	"github.com/iuristatech/legalchat/store/db/postgres"
	"github.com/iuristatech/legalchat/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "mysql":
		return mysql.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
