package revision

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/routing"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
)

const MsgInvalidLink = "Tautan revisi tidak valid"

type RevisionService struct {
	DB     *gorm.DB
	Notify *notify.NotifyService
	Now    func() time.Time
}

func NewRevisionService(db *gorm.DB, n *notify.NotifyService) *RevisionService {
	return &RevisionService{DB: db, Notify: n, Now: time.Now}
}

// Link builds the public revision-form fragment for r.
func Link(baseURL string, r models.Revision) string {
	q := url.Values{}
	q.Set("projectId", r.ProjectID.String())
	q.Set("freelancerId", r.FreelancerID.String())
	q.Set("revisionId", r.ID.String())
	return strings.TrimSuffix(baseURL, "/") + "/#/" + string(routing.RevisionForm) + "?" + q.Encode()
}

type CreateInput struct {
	ProjectID    uuid.UUID `json:"project_id" validate:"required"`
	FreelancerID uuid.UUID `json:"freelancer_id" validate:"required"`
	AdminNotes   string    `json:"admin_notes" validate:"required,max=2000"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

// Create opens a revision for a freelancer who is on the project's team.
func (s *RevisionService) Create(ctx context.Context, in CreateInput) (*models.Revision, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&models.TeamProjectPayment{}).
		Where("project_id = ? AND team_member_id = ?", in.ProjectID, in.FreelancerID).
		Count(&n).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa tim proyek")
	}
	if n == 0 {
		return nil, apperr.Validation("freelancer_id", "Freelancer tidak ada di tim proyek ini")
	}

	r := models.Revision{
		ProjectID:    in.ProjectID,
		FreelancerID: in.FreelancerID,
		AdminNotes:   strings.TrimSpace(in.AdminNotes),
		Deadline:     in.Deadline,
		Status:       models.RevisionPending,
	}
	if err := db.Create(&r).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal membuat revisi")
	}
	return &r, nil
}

func (s *RevisionService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Revision, error) {
	var rows []models.Revision
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).
		Order("deadline asc").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat revisi")
	}
	return rows, nil
}

type View struct {
	Revision    models.Revision `json:"revision"`
	ProjectName string          `json:"project_name"`
	MemberName  string          `json:"member_name"`
}

func parseRef(ref routing.RevisionRef) (pid, fid, rid uuid.UUID, err error) {
	if pid, err = uuid.Parse(ref.ProjectID); err != nil {
		return
	}
	if fid, err = uuid.Parse(ref.FreelancerID); err != nil {
		return
	}
	rid, err = uuid.Parse(ref.RevisionID)
	return
}

func load(db *gorm.DB, ref routing.RevisionRef) (*View, error) {
	pid, fid, rid, err := parseRef(ref)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidLink, MsgInvalidLink)
	}

	var v View
	err = db.Where("id = ? AND project_id = ? AND freelancer_id = ?", rid, pid, fid).First(&v.Revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeInvalidLink, MsgInvalidLink)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat revisi")
	}

	var p models.Project
	if err := db.Select("name").First(&p, "id = ?", pid).Error; err == nil {
		v.ProjectName = p.Name
	}
	var m models.TeamMember
	if err := db.Select("name").First(&m, "id = ?", fid).Error; err == nil {
		v.MemberName = m.Name
	}
	return &v, nil
}

// Resolve checks that the revision belongs to that freelancer on that project.
func (s *RevisionService) Resolve(ctx context.Context, ref routing.RevisionRef) (*View, error) {
	return load(s.DB.WithContext(ctx), ref)
}

type SubmitInput struct {
	Status          models.RevisionStatus `json:"status" validate:"required,oneof=Menunggu 'Sedang Dikerjakan' Selesai"`
	FreelancerNotes string                `json:"freelancer_notes" validate:"max=2000"`
	DriveLink       string                `json:"drive_link" validate:"omitempty,url,max=500"`
}

// Submit records the freelancer's update and notifies the studio.
func (s *RevisionService) Submit(ctx context.Context, ref routing.RevisionRef, in SubmitInput) (*View, error) {
	switch in.Status {
	case models.RevisionPending, models.RevisionInProgress, models.RevisionCompleted:
	default:
		return nil, apperr.Validation("status", "Status revisi tidak dikenal")
	}
	if in.Status == models.RevisionCompleted && strings.TrimSpace(in.DriveLink) == "" {
		return nil, apperr.Validation("drive_link", "Link hasil revisi wajib diisi")
	}

	var (
		v *View
		n models.Notification
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if v, err = load(tx, ref); err != nil {
			return err
		}

		updates := map[string]any{
			"status":           in.Status,
			"freelancer_notes": strings.TrimSpace(in.FreelancerNotes),
			"drive_link":       strings.TrimSpace(in.DriveLink),
			"completed_date":   nil,
		}
		if in.Status == models.RevisionCompleted {
			now := s.Now()
			updates["completed_date"] = now
			v.Revision.CompletedDate = &now
		} else {
			v.Revision.CompletedDate = nil
		}
		if err := tx.Model(&models.Revision{}).Where("id = ?", v.Revision.ID).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan revisi")
		}
		v.Revision.Status = in.Status
		v.Revision.FreelancerNotes = updates["freelancer_notes"].(string)
		v.Revision.DriveLink = updates["drive_link"].(string)

		n = notify.NewRevisionUpdate(v.Revision, v.ProjectName, v.MemberName)
		return notify.Create(tx, &n)
	})
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	return v, nil
}
