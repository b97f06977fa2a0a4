package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewProfileService(dbtest.New(t))
	p, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsInternalEvent("Libur"))
	assert.False(t, p.IsInternalEvent("Pernikahan"))
}

func TestSaveUpserts(t *testing.T) {
	svc := NewProfileService(dbtest.New(t))
	ctx := context.Background()

	p := models.DefaultProfile()
	p.CompanyName = "Lensa Studio"
	first, err := svc.Save(ctx, p)
	require.NoError(t, err)

	p.CompanyName = "Lensa Studio & Film"
	p.InternalEventTypes = []string{"Libur"}
	second, err := svc.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, svc.DB.Model(&models.Profile{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lensa Studio & Film", got.CompanyName)
	assert.Equal(t, []string{"Libur"}, []string(got.InternalEventTypes))
}
