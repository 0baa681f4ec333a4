package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/projectdesk/internal/database/dbtest"
)

func TestMenuRepo_ListForHandle(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "ana", "h", dbtest.RoleMember, true)
	dbtest.Grant(t, db, dbtest.RoleMember, dbtest.MenuProjects, dbtest.MenuMilestones, dbtest.MenuHidden)
	repo := NewMenuRepo(db)

	got, err := repo.ListForHandle(context.Background(), "ana")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{dbtest.MenuProjects, dbtest.MenuMilestones}, menuIDs(got))

	got, err = repo.ListForHandle(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMenuRepo_ListCatalog(t *testing.T) {
	repo := NewMenuRepo(dbtest.Open(t))
	got, err := repo.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 7)
	for _, e := range got {
		if e.ID == dbtest.MenuHidden {
			assert.False(t, e.Visible)
		}
	}
}
