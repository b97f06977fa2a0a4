package calendar

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/profile"
)

type CalendarService struct {
	DB  *gorm.DB
	Loc *time.Location
	Now func() time.Time
}

func NewCalendarService(db *gorm.DB, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarService{DB: db, Loc: loc, Now: time.Now}
}

// Query is the filter sent by the calendar screen. Nil EventTypes means all internal types.
type Query struct {
	ClientProjects bool
	EventTypes     []string
}

func (q Query) visibility(p models.Profile) Visibility {
	if q.EventTypes == nil {
		v := ShowAll(p)
		v.ClientProjects = q.ClientProjects
		return v
	}
	v := Visibility{ClientProjects: q.ClientProjects, EventTypes: map[string]bool{}}
	for _, t := range q.EventTypes {
		v.EventTypes[t] = true
	}
	return v
}

func (s *CalendarService) Month(ctx context.Context, year int, month time.Month, q Query) (Month, error) {
	db := s.DB.WithContext(ctx)
	p, err := profile.Load(db)
	if err != nil {
		return Month{}, err
	}

	ref := time.Date(year, month, 1, 0, 0, 0, 0, s.Loc)
	start, end := GridRange(ref)
	var events []models.Project
	if err := db.Where("date >= ? AND date < ?", start, end.AddDate(0, 0, 1)).
		Order("created_at asc").Find(&events).Error; err != nil {
		return Month{}, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat kalender")
	}
	return MonthView(events, ref, p, q.visibility(p)), nil
}

func (s *CalendarService) Agenda(ctx context.Context, q Query) ([]Day, error) {
	db := s.DB.WithContext(ctx)
	p, err := profile.Load(db)
	if err != nil {
		return nil, err
	}

	today := DayOf(s.Now().In(s.Loc))
	var events []models.Project
	if err := db.Where("date >= ?", today).
		Order("created_at asc").Find(&events).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat agenda")
	}
	return Agenda(events, today, p, q.visibility(p)), nil
}
