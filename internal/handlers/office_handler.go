package handlers

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/calendar"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/export"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/revision"
)

// OfficeHandler groups the back-office screens that are not money or CRUD:
// profile settings, calendar, notifications, exports and revisions.
type OfficeHandler struct {
	Profile  *profile.ProfileService
	Calendar *calendar.CalendarService
	Notify   *notify.NotifyService
	Export   *export.ExportService
	Revision *revision.RevisionService
	BaseURL  string
	Now      func() time.Time
}

func (h *OfficeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *OfficeHandler) GetProfile(c *fiber.Ctx) error {
	p, err := h.Profile.Get(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", p)
}

func (h *OfficeHandler) SaveProfile(c *fiber.Ctx) error {
	var in models.Profile
	if err := c.BodyParser(&in); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Format data tidak valid")
	}
	p, err := h.Profile.Save(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, "Profil disimpan", p)
}

// calendarQuery reads ?client=0|1&types=Meeting,Libur. Without "types" every
// internal event type is shown.
func calendarQuery(c *fiber.Ctx) calendar.Query {
	q := calendar.Query{ClientProjects: c.Query("client", "1") != "0"}
	if raw, present := c.Queries()["types"]; present {
		q.EventTypes = []string{}
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.EventTypes = append(q.EventTypes, t)
			}
		}
	}
	return q
}

// GET /api/calendar?month=2024-05
func (h *OfficeHandler) CalendarMonth(c *fiber.Ctx) error {
	month := h.now()
	if raw := c.Query("month"); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			return apperr.Validation("month", "Format bulan harus YYYY-MM")
		}
		month = t
	}
	m, err := h.Calendar.Month(c.UserContext(), month.Year(), month.Month(), calendarQuery(c))
	if err != nil {
		return err
	}
	return ok(c, "", m)
}

func (h *OfficeHandler) CalendarAgenda(c *fiber.Ctx) error {
	days, err := h.Calendar.Agenda(c.UserContext(), calendarQuery(c))
	if err != nil {
		return err
	}
	return ok(c, "", days)
}

func (h *OfficeHandler) ListNotifications(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	rows, err := h.Notify.List(c.UserContext(), c.QueryBool("unread"), limit)
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *OfficeHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Notify.UnreadCount(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", fiber.Map{"unread": n})
}

func (h *OfficeHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Notify.MarkRead(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "Notifikasi dibaca", nil)
}

func (h *OfficeHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.Notify.MarkAllRead(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "Semua notifikasi dibaca", fiber.Map{"updated": n})
}

func (h *OfficeHandler) ExportDatasets(c *fiber.Ctx) error {
	return ok(c, "", export.Datasets())
}

// GET /api/export/:dataset streams a CSV download.
func (h *OfficeHandler) ExportCSV(c *fiber.Ctx) error {
	name := c.Params("dataset")
	var buf bytes.Buffer
	if err := h.Export.Export(c.UserContext(), name, &buf); err != nil {
		return err
	}
	c.Attachment(export.Filename(name, h.now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// ---- revisions (admin side)

func (h *OfficeHandler) CreateRevision(c *fiber.Ctx) error {
	var in revision.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.Revision.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Revisi dibuat", fiber.Map{"revision": r, "link": revision.Link(h.BaseURL, *r)})
}

func (h *OfficeHandler) ProjectRevisions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Revision.ListByProject(c.UserContext(), id)
	if err != nil {
		return err
	}
	type item struct {
		models.Revision
		Link string `json:"link"`
	}
	out := make([]item, 0, len(rows))
	for _, r := range rows {
		out = append(out, item{Revision: r, Link: revision.Link(h.BaseURL, r)})
	}
	return ok(c, "", out)
}
