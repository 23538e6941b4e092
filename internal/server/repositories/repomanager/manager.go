package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/properties"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so that services
// can run them against the pool or inside a transaction alike.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Properties(db dbx.DBTX) properties.Repository
	Transactions(db dbx.DBTX) transactions.Repository
}
