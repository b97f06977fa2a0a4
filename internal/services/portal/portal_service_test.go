package portal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
)

const key = "0123456789abcdef"

func newService(t *testing.T) *PortalService {
	db := dbtest.New(t)
	return NewPortalService(db, key, notify.NewNotifyService(db, nil, logger.Nop()))
}

func TestClientPortal(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	client := models.Client{Name: "Rina"}
	require.NoError(t, svc.DB.Create(&client).Error)
	for _, p := range []models.Project{
		{Name: "Prewedding", ClientID: &client.ID, TotalCost: 3000000, AmountPaid: 3000000, PaymentProofURL: "data:image/png;base64,AA"},
		{Name: "Wedding", ClientID: &client.ID, TotalCost: 4950000, AmountPaid: 1000000},
	} {
		p := p
		require.NoError(t, svc.DB.Create(&p).Error)
	}

	token, err := svc.IssueClientAccess(ctx, client.ID)
	require.NoError(t, err)

	v, err := svc.Client(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Rina", v.Client.Name)
	assert.Len(t, v.Projects, 2)
	assert.Equal(t, int64(7950000), v.TotalCost)
	assert.Equal(t, int64(4000000), v.TotalPaid)
	assert.Equal(t, int64(3950000), v.Outstanding)
	for _, p := range v.Projects {
		assert.Empty(t, p.PaymentProofURL)
	}

	// token lama tidak berlaku setelah diganti
	_, err = svc.IssueClientAccess(ctx, client.ID)
	require.NoError(t, err)
	_, err = svc.Client(ctx, token)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidLink))

	_, err = svc.Client(ctx, "sembarang")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidLink))
}

func TestFreelancerPortal(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	m := models.TeamMember{Name: "Andi"}
	require.NoError(t, svc.DB.Create(&m).Error)
	p := models.Project{Name: "Wedding"}
	require.NoError(t, svc.DB.Create(&p).Error)
	require.NoError(t, svc.DB.Create(&models.TeamProjectPayment{ProjectID: p.ID, TeamMemberID: m.ID, Fee: 750000}).Error)
	require.NoError(t, svc.DB.Create(&models.Revision{ProjectID: p.ID, FreelancerID: m.ID, AdminNotes: "Warna kulit"}).Error)

	token, err := svc.IssueFreelancerAccess(ctx, m.ID)
	require.NoError(t, err)

	v, err := svc.Freelancer(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(750000), v.UnpaidTotal)
	require.Len(t, v.Fees, 1)
	require.NotNil(t, v.Fees[0].Project)
	assert.Equal(t, "Wedding", v.Fees[0].Project.Name)
	assert.Len(t, v.Revisions, 1)

	_, err = svc.IssueFreelancerAccess(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestClientNoteCreatesNotification(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	client := models.Client{Name: "Rina"}
	require.NoError(t, svc.DB.Create(&client).Error)
	mine := models.Project{Name: "Wedding", ClientID: &client.ID}
	require.NoError(t, svc.DB.Create(&mine).Error)
	other := models.Project{Name: "Lain"}
	require.NoError(t, svc.DB.Create(&other).Error)
	token, err := svc.IssueClientAccess(ctx, client.ID)
	require.NoError(t, err)

	n, err := svc.ClientNote(ctx, token, NoteInput{ProjectID: mine.ID, SubStatus: "Seleksi Foto", Note: "Tolong tambah foto keluarga"})
	require.NoError(t, err)
	assert.Equal(t, "comment", n.Icon)
	assert.Contains(t, n.Message, "Seleksi Foto")

	_, err = svc.ClientNote(ctx, token, NoteInput{ProjectID: other.ID, SubStatus: "x", Note: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	var count int64
	require.NoError(t, svc.DB.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
