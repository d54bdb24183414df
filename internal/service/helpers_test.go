package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"formdraft/internal/auth"
	"formdraft/internal/repository/sqlite"
)

type fixture struct {
	db     *sql.DB
	users  UserService
	drafts DraftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &fixture{
		db:     db,
		users:  NewUserService(sqlite.NewUserRepository(db), auth.NewBcryptHasher(bcrypt.MinCost)),
		drafts: NewDraftService(sqlite.NewDraftRepository(db)),
	}
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
