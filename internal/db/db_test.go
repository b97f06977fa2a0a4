package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "x")
	assert.ErrorContains(t, err, "unsupported")

	_, err = Connect("sqlite", "")
	assert.Error(t, err)
}

func TestAutoMigrateSQLite(t *testing.T) {
	gdb, err := Connect("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))

	for _, m := range Models() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}

	promo := models.PromoCode{Code: "DISC10", DiscountType: models.DiscountFixed}
	require.NoError(t, gdb.Create(&promo).Error)
	dup := models.PromoCode{Code: "DISC10", DiscountType: models.DiscountFixed}
	err = gdb.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_promo_codes_code"`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}
