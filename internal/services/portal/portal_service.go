package portal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

const MsgInvalidLink = "Tautan tidak valid atau sudah kedaluwarsa"

type PortalService struct {
	DB     *gorm.DB
	Key    string
	Notify *notify.NotifyService
}

func NewPortalService(db *gorm.DB, key string, n *notify.NotifyService) *PortalService {
	return &PortalService{DB: db, Key: key, Notify: n}
}

func invalidLink() error {
	return apperr.New(apperr.CodeInvalidLink, MsgInvalidLink)
}

// IssueClientAccess rotates the client's portal token; the old link stops working.
func (s *PortalService) IssueClientAccess(ctx context.Context, clientID uuid.UUID) (string, error) {
	return s.issue(ctx, &models.Client{}, clientID)
}

func (s *PortalService) IssueFreelancerAccess(ctx context.Context, memberID uuid.UUID) (string, error) {
	return s.issue(ctx, &models.TeamMember{}, memberID)
}

func (s *PortalService) issue(ctx context.Context, model any, id uuid.UUID) (string, error) {
	token, err := utils.EncryptID(id, s.Key)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, err, "Gagal membuat tautan portal")
	}
	res := s.DB.WithContext(ctx).Model(model).Where("id = ?", id).Update("portal_access_id", token)
	if res.Error != nil {
		return "", apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menyimpan tautan portal")
	}
	if res.RowsAffected == 0 {
		return "", apperr.New(apperr.CodeNotFound, "Data tidak ditemukan")
	}
	return token, nil
}

// resolve decrypts the token and loads the row it was issued for.
// A token that decrypts but is no longer stored on the row is rejected.
func (s *PortalService) resolve(db *gorm.DB, token string, dest any) error {
	token = strings.TrimSpace(token)
	id, err := utils.DecryptID(token, s.Key)
	if err != nil {
		return invalidLink()
	}
	err = db.Where("id = ? AND portal_access_id = ?", id, token).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalidLink()
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat portal")
	}
	return nil
}

type ProjectSummary struct {
	models.Project
	Outstanding int64 `json:"outstanding"`
}

type ClientView struct {
	Client      models.Client    `json:"client"`
	Projects    []ProjectSummary `json:"projects"`
	TotalCost   int64            `json:"total_cost"`
	TotalPaid   int64            `json:"total_paid"`
	Outstanding int64            `json:"outstanding"`
}

func (s *PortalService) Client(ctx context.Context, token string) (*ClientView, error) {
	db := s.DB.WithContext(ctx)
	var v ClientView
	if err := s.resolve(db, token, &v.Client); err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := db.Where("client_id = ?", v.Client.ID).Order("date desc").Find(&projects).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat proyek")
	}
	v.Projects = make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		// bukti bayar tidak dikirim ke portal
		p.PaymentProofURL = ""
		v.Projects = append(v.Projects, ProjectSummary{Project: p, Outstanding: p.Outstanding()})
		v.TotalCost += p.TotalCost
		v.TotalPaid += p.AmountPaid
		v.Outstanding += p.Outstanding()
	}
	return &v, nil
}

type FreelancerView struct {
	Member        models.TeamMember           `json:"member"`
	Fees          []models.TeamProjectPayment `json:"fees"`
	UnpaidTotal   int64                       `json:"unpaid_total"`
	Records       []models.TeamPaymentRecord  `json:"records"`
	RewardEntries []models.RewardLedgerEntry  `json:"reward_entries"`
	Revisions     []models.Revision           `json:"revisions"`
}

func (s *PortalService) Freelancer(ctx context.Context, token string) (*FreelancerView, error) {
	db := s.DB.WithContext(ctx)
	var v FreelancerView
	if err := s.resolve(db, token, &v.Member); err != nil {
		return nil, err
	}
	id := v.Member.ID

	if err := db.Preload("Project").Where("team_member_id = ?", id).Order("date desc").Find(&v.Fees).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat fee")
	}
	for _, f := range v.Fees {
		if f.Status == models.FeeUnpaid {
			v.UnpaidTotal += f.Fee
		}
		if f.Project != nil {
			f.Project.PaymentProofURL = ""
		}
	}
	if err := db.Where("team_member_id = ?", id).Order("date desc").Find(&v.Records).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat slip pembayaran")
	}
	if err := db.Where("team_member_id = ?", id).Order("date desc").Find(&v.RewardEntries).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat riwayat hadiah")
	}
	if err := db.Where("freelancer_id = ?", id).Order("deadline asc").Find(&v.Revisions).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat revisi")
	}
	return &v, nil
}

type NoteInput struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	SubStatus string    `json:"sub_status" validate:"required,max=80"`
	Note      string    `json:"note" validate:"required,max=1000"`
}

// ClientNote lets a client comment on one of their project's sub-statuses.
// The comment reaches the studio as a notification.
func (s *PortalService) ClientNote(ctx context.Context, token string, in NoteInput) (*models.Notification, error) {
	var n models.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := s.resolve(tx, token, &c); err != nil {
			return err
		}
		var p models.Project
		err := tx.Where("id = ? AND client_id = ?", in.ProjectID, c.ID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "Proyek tidak ditemukan")
		}
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat proyek")
		}
		n = notify.NewClientNote(p, in.SubStatus, strings.TrimSpace(in.Note))
		return notify.Create(tx, &n)
	})
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	return &n, nil
}
