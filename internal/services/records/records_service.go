// Package records holds the plain CRUD around the studio's supporting records
// (clients, leads, projects, team, cards, pockets, contracts, SOPs). Money
// fields are read-only here; they move through the ledger services.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
)

// Entity is implemented by every record type managed here.
type Entity interface {
	Label() string
}

// Guard names a dependent table that blocks deleting its parent.
type Guard struct {
	Model  any
	Column string
	What   string
}

// Input fills an entity from a request DTO.
type Input[T Entity] interface {
	Apply(*T)
}

// preparer is an Input that also needs the database, e.g. to check references.
type preparer[T Entity] interface {
	Prepare(tx *gorm.DB, row *T) error
}

func apply[T Entity](tx *gorm.DB, in Input[T], row *T) error {
	in.Apply(row)
	if p, ok := any(in).(preparer[T]); ok {
		return p.Prepare(tx, row)
	}
	return nil
}

type RecordsService struct {
	DB *gorm.DB
}

func NewRecordsService(db *gorm.DB) *RecordsService {
	return &RecordsService{DB: db}
}

func notFound[T Entity]() error {
	var zero T
	return apperr.Newf(apperr.CodeNotFound, "%s tidak ditemukan", zero.Label())
}

func find[T Entity](tx *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	if err := tx.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound[T]()
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat data")
	}
	return &row, nil
}

// ListOptions narrows List. Where is a list of column=value pairs.
type ListOptions struct {
	Order  string
	Where  map[string]any
	Search string
	// columns matched against Search with LIKE
	SearchColumns []string
	Limit         int
}

func List[T Entity](ctx context.Context, s *RecordsService, opt ListOptions) ([]T, error) {
	q := s.DB.WithContext(ctx)
	if opt.Order != "" {
		q = q.Order(opt.Order)
	}
	for col, v := range opt.Where {
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: v})
	}
	if term := strings.TrimSpace(opt.Search); term != "" && len(opt.SearchColumns) > 0 {
		like := "%" + strings.ToLower(term) + "%"
		ors := make([]clause.Expression, 0, len(opt.SearchColumns))
		for _, col := range opt.SearchColumns {
			ors = append(ors, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: col}, like}})
		}
		q = q.Where(clause.Or(ors...))
	}
	if opt.Limit > 0 {
		q = q.Limit(opt.Limit)
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat data")
	}
	return rows, nil
}

func Get[T Entity](ctx context.Context, s *RecordsService, id uuid.UUID) (*T, error) {
	return find[T](s.DB.WithContext(ctx), id)
}

func Create[T Entity](ctx context.Context, s *RecordsService, in Input[T]) (*T, error) {
	var row T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := apply(tx, in, &row); err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, fmt.Sprintf("Gagal menyimpan %s", strings.ToLower(row.Label())))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update loads the row under lock, applies in and saves every column.
func Update[T Entity](ctx context.Context, s *RecordsService, id uuid.UUID, in Input[T]) (*T, error) {
	var out *T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := find[T](tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := apply(tx, in, row); err != nil {
			return err
		}
		if err := tx.Save(row).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan data")
		}
		out = row
		return nil
	})
	return out, err
}

// Delete removes the row unless a guard finds dependents, which yields CONFLICT.
func Delete[T Entity](ctx context.Context, s *RecordsService, id uuid.UUID, guards ...Guard) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := find[T](tx, id)
		if err != nil {
			return err
		}
		for _, g := range guards {
			var n int64
			if err := tx.Model(g.Model).Where(clause.Eq{Column: clause.Column{Name: g.Column}, Value: id}).Count(&n).Error; err != nil {
				return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa data terkait")
			}
			if n > 0 {
				return apperr.Newf(apperr.CodeConflict, "%s tidak bisa dihapus karena masih dipakai %d %s", (*row).Label(), n, g.What)
			}
		}
		return tx.Delete(row).Error
	})
}
