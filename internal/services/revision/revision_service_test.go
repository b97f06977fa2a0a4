package revision

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/routing"
)

type fixture struct {
	svc     *RevisionService
	project models.Project
	member  models.TeamMember
	rev     *models.Revision
}

func setup(t *testing.T) fixture {
	t.Helper()
	svc := NewRevisionService(dbtest.New(t), nil)
	svc.Now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }

	p := models.Project{Name: "Wedding Rina"}
	require.NoError(t, svc.DB.Create(&p).Error)
	m := models.TeamMember{Name: "Andi"}
	require.NoError(t, svc.DB.Create(&m).Error)
	require.NoError(t, svc.DB.Create(&models.TeamProjectPayment{ProjectID: p.ID, TeamMemberID: m.ID, Fee: 1}).Error)

	rev, err := svc.Create(context.Background(), CreateInput{
		ProjectID: p.ID, FreelancerID: m.ID, AdminNotes: "Koreksi warna", Deadline: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return fixture{svc: svc, project: p, member: m, rev: rev}
}

func (f fixture) ref() routing.RevisionRef {
	return routing.RevisionRef{ProjectID: f.project.ID.String(), FreelancerID: f.member.ID.String(), RevisionID: f.rev.ID.String()}
}

func TestLinkParsesBack(t *testing.T) {
	f := setup(t)
	link := Link("https://studio.example.com/", *f.rev)

	frag := link[len("https://studio.example.com/"):]
	r := routing.Parse(frag)
	require.Equal(t, routing.RevisionForm, r.Kind)
	ref, ok := r.Revision()
	require.True(t, ok)
	assert.Equal(t, f.ref(), ref)
}

func TestCreateRequiresTeamMembership(t *testing.T) {
	f := setup(t)
	outsider := models.TeamMember{Name: "Budi"}
	require.NoError(t, f.svc.DB.Create(&outsider).Error)

	_, err := f.svc.Create(context.Background(), CreateInput{ProjectID: f.project.ID, FreelancerID: outsider.ID, AdminNotes: "x", Deadline: time.Now()})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestResolveValidatesOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.svc.Resolve(ctx, f.ref())
	require.NoError(t, err)
	assert.Equal(t, "Wedding Rina", v.ProjectName)
	assert.Equal(t, "Andi", v.MemberName)

	wrong := f.ref()
	wrong.FreelancerID = uuid.NewString()
	_, err = f.svc.Resolve(ctx, wrong)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidLink))

	garbage := f.ref()
	garbage.ProjectID = "abc"
	_, err = f.svc.Resolve(ctx, garbage)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidLink))
}

func TestSubmit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.ref(), SubmitInput{Status: models.RevisionCompleted})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	v, err := f.svc.Submit(ctx, f.ref(), SubmitInput{
		Status: models.RevisionCompleted, FreelancerNotes: "Sudah", DriveLink: "https://drive.google.com/x",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RevisionCompleted, v.Revision.Status)
	require.NotNil(t, v.Revision.CompletedDate)

	var stored models.Revision
	require.NoError(t, f.svc.DB.First(&stored, "id = ?", f.rev.ID).Error)
	assert.Equal(t, models.RevisionCompleted, stored.Status)
	assert.Equal(t, "https://drive.google.com/x", stored.DriveLink)
	require.NotNil(t, stored.CompletedDate)

	var notes []models.Notification
	require.NoError(t, f.svc.DB.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "revision", notes[0].Icon)
	assert.Contains(t, notes[0].Message, "Wedding Rina")
}
