package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSupplier(t *testing.T, repo *GormSupplierRepository, userID, code, name, category string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(userID, code, partner.Profile{CompanyName: name}, category)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), s))
	return s
}

func TestGormSupplierRepository_FindAll(t *testing.T) {
	repo := NewGormSupplierRepository(newSQLiteDB(t))
	ctx := context.Background()

	seedSupplier(t, repo, "user-1", "SUP001", "Cotton Mills", "fabric")
	seedSupplier(t, repo, "user-1", "SUP002", "Button House", "trims")
	seedSupplier(t, repo, "user-1", "SUP003", "Dye Works", "fabric")
	seedSupplier(t, repo, "user-2", "SUP001", "Elsewhere", "fabric")

	t.Run("filters by category", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 10, Filters: map[string]interface{}{"category": "fabric"}}
		suppliers, total, err := repo.FindAll(ctx, "user-1", filter)

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, suppliers, 2)
		assert.Equal(t, "Cotton Mills", suppliers[0].Profile.CompanyName)
		assert.Equal(t, "Dye Works", suppliers[1].Profile.CompanyName)
	})

	t.Run("paginates with the full total", func(t *testing.T) {
		filter := shared.Filter{Page: 2, PageSize: 2, OrderBy: "supplier_code", OrderDir: "asc"}
		suppliers, total, err := repo.FindAll(ctx, "user-1", filter)

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, suppliers, 1)
		assert.Equal(t, "SUP003", suppliers[0].Code)
	})

	t.Run("ignores unknown sort fields", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 10, OrderBy: "company_name; DROP TABLE suppliers"}
		suppliers, _, err := repo.FindAll(ctx, "user-1", filter)

		require.NoError(t, err)
		assert.Len(t, suppliers, 3)
	})
}

func TestGormSupplierRepository_Delete(t *testing.T) {
	repo := NewGormSupplierRepository(newSQLiteDB(t))
	ctx := context.Background()

	s := seedSupplier(t, repo, "user-1", "SUP001", "Cotton Mills", "fabric")

	assert.ErrorIs(t, repo.Delete(ctx, "user-2", s.ID), shared.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "user-1", s.ID))

	_, err := repo.FindByID(ctx, "user-1", s.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user-1", uuid.New()), shared.ErrNotFound)
}

func TestGormSupplierRepository_ExistsByCode(t *testing.T) {
	repo := NewGormSupplierRepository(newSQLiteDB(t))
	ctx := context.Background()

	s := seedSupplier(t, repo, "user-1", "SUP001", "Cotton Mills", "fabric")

	exists, err := repo.ExistsByCode(ctx, "user-1", "SUP001", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, "user-1", "SUP001", s.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByCode(ctx, "user-2", "SUP001", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists)
}
