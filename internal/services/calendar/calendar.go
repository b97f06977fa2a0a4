package calendar

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

// FallbackColor is slate, used for unknown event types and statuses.
const FallbackColor = "#64748b"

const dayKey = "2006-01-02"

var internalColors = map[string]string{
	"Meeting Klien":  "#3b82f6",
	"Survey Lokasi":  "#22c55e",
	"Libur":          "#ef4444",
	"Workshop":       "#a855f7",
	"Acara Internal": "#f97316",
	"Lainnya":        "#eab308",
}

type Kind string

const (
	KindInternal Kind = "internal"
	KindClient   Kind = "client"
)

// Visibility is the calendar's filter state.
type Visibility struct {
	ClientProjects bool
	EventTypes     map[string]bool
}

// ShowAll makes every client project and every configured internal type visible.
func ShowAll(profile models.Profile) Visibility {
	v := Visibility{ClientProjects: true, EventTypes: map[string]bool{}}
	for _, t := range profile.InternalEventTypes {
		v.EventTypes[t] = true
	}
	return v
}

type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ClientName  string    `json:"client_name,omitempty"`
	ProjectType string    `json:"project_type"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Kind        Kind      `json:"kind"`
	Color       string    `json:"color"`
}

type Day struct {
	Date   time.Time `json:"date"`
	Events []Event   `json:"events"`
}

// DayOf truncates t to midnight in t's location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GridRange returns the Sunday on/before the 1st of month and the Saturday
// on/after its last day.
func GridRange(month time.Time) (start, end time.Time) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)
	start = first.AddDate(0, 0, -int(first.Weekday()))
	end = last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	return start, end
}

func Classify(p models.Project, profile models.Profile) Kind {
	if profile.IsInternalEvent(p.ProjectType) {
		return KindInternal
	}
	return KindClient
}

// Filter keeps events visible under v, preserving input order.
func Filter(events []models.Project, profile models.Profile, v Visibility) []models.Project {
	out := make([]models.Project, 0, len(events))
	for _, p := range events {
		if Classify(p, profile) == KindInternal {
			if v.EventTypes[p.ProjectType] {
				out = append(out, p)
			}
			continue
		}
		if v.ClientProjects {
			out = append(out, p)
		}
	}
	return out
}

func ColorFor(p models.Project, profile models.Profile) string {
	if Classify(p, profile) == KindInternal {
		if c, ok := internalColors[p.ProjectType]; ok {
			return c
		}
		return FallbackColor
	}
	for _, s := range profile.ProjectStatusConfig {
		if s.Name == p.Status && s.Color != "" {
			return s.Color
		}
	}
	return FallbackColor
}

func toEvent(p models.Project, profile models.Profile, loc *time.Location) Event {
	return Event{
		ID:          p.ID,
		Name:        p.Name,
		ClientName:  p.ClientName,
		ProjectType: p.ProjectType,
		Status:      p.Status,
		Date:        p.Date.In(loc),
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Location:    p.Location,
		Kind:        Classify(p, profile),
		Color:       ColorFor(p, profile),
	}
}

type Month struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  []Day     `json:"days"`
}

// MonthView buckets visible events into every day of month's grid, each day
// keeping input order.
func MonthView(events []models.Project, month time.Time, profile models.Profile, v Visibility) Month {
	loc := month.Location()
	start, end := GridRange(month)
	m := Month{Start: start, End: end}

	index := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d.Format(dayKey)] = len(m.Days)
		m.Days = append(m.Days, Day{Date: d, Events: []Event{}})
	}

	for _, p := range Filter(events, profile, v) {
		day := DayOf(p.Date.In(loc))
		i, ok := index[day.Format(dayKey)]
		if !ok {
			continue
		}
		m.Days[i].Events = append(m.Days[i].Events, toEvent(p, profile, loc))
	}
	return m
}

// Agenda lists visible events from today onward grouped by day. Within a day,
// events that both have a start time are ordered by it; otherwise input order holds.
func Agenda(events []models.Project, today time.Time, profile models.Profile, v Visibility) []Day {
	loc := today.Location()
	from := DayOf(today)

	var upcoming []Event
	for _, p := range Filter(events, profile, v) {
		if DayOf(p.Date.In(loc)).Before(from) {
			continue
		}
		upcoming = append(upcoming, toEvent(p, profile, loc))
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		di, dj := DayOf(upcoming[i].Date), DayOf(upcoming[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if upcoming[i].StartTime != "" && upcoming[j].StartTime != "" {
			return upcoming[i].StartTime < upcoming[j].StartTime
		}
		return false
	})

	days := []Day{}
	for _, e := range upcoming {
		d := DayOf(e.Date)
		if n := len(days); n > 0 && days[n-1].Date.Equal(d) {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, Day{Date: d, Events: []Event{e}})
	}
	return days
}
