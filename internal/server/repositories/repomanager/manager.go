package repomanager

import (
	"context"
	"database/sql"

	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/server/repositories/purchases"
	"github.com/paket-core/funder/internal/server/repositories/testresults"
	"github.com/paket-core/funder/internal/server/repositories/userinfos"
	"github.com/paket-core/funder/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	UserInfos(db dbx.DBTX) userinfos.Repository
	TestResults(db dbx.DBTX) testresults.Repository
	Purchases(db dbx.DBTX) purchases.Repository
}
