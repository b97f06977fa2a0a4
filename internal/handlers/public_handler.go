package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/routing"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/booking"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/portal"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/revision"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/upload"
)

// PublicHandler serves everything reachable without a session: the public
// forms, the client and freelancer portals and revision links.
type PublicHandler struct {
	Booking  *booking.BookingService
	Portal   *portal.PortalService
	Revision *revision.RevisionService
}

func NewPublicHandler(b *booking.BookingService, p *portal.PortalService, r *revision.RevisionService) *PublicHandler {
	return &PublicHandler{Booking: b, Portal: p, Revision: r}
}

// bookingInput accepts either a JSON body or a multipart form with the
// booking as JSON in "data" and the proof file in "payment_proof".
func bookingInput(c *fiber.Ctx) (booking.BookingInput, error) {
	var in booking.BookingInput
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return in, bind(c, &in)
	}

	if err := json.Unmarshal([]byte(c.FormValue("data")), &in); err != nil {
		return in, apperr.Wrap(apperr.CodeValidation, err, "Format data tidak valid")
	}
	if err := check(&in); err != nil {
		return in, err
	}
	fh, err := c.FormFile("payment_proof")
	if err != nil {
		// bukti bayar opsional
		return in, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, apperr.Wrap(apperr.CodeValidation, err, "Gagal membaca file")
	}
	defer f.Close()
	proof, err := upload.ReadProof(f)
	if err != nil {
		return in, err
	}
	in.PaymentProof = proof.DataURL
	return in, nil
}

func (h *PublicHandler) SubmitBooking(c *fiber.Ctx) error {
	in, err := bookingInput(c)
	if err != nil {
		return err
	}
	res, err := h.Booking.SubmitBooking(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Booking berhasil dikirim", res)
}

func (h *PublicHandler) SubmitLead(c *fiber.Ctx) error {
	var in booking.LeadInput
	if err := bind(c, &in); err != nil {
		return err
	}
	l, err := h.Booking.SubmitLead(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Terima kasih, kami akan segera menghubungi Anda", l)
}

func (h *PublicHandler) SubmitFeedback(c *fiber.Ctx) error {
	var in booking.FeedbackInput
	if err := bind(c, &in); err != nil {
		return err
	}
	f, err := h.Booking.SubmitFeedback(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Terima kasih atas masukan Anda", f)
}

// ResolveRoute mirrors the SPA hash router: GET /api/public/route?fragment=#/portal/xyz
func (h *PublicHandler) ResolveRoute(c *fiber.Ctx) error {
	return ok(c, "", routing.Parse(c.Query("fragment")))
}

func (h *PublicHandler) ClientPortal(c *fiber.Ctx) error {
	v, err := h.Portal.Client(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}
	return ok(c, "", v)
}

func (h *PublicHandler) ClientNote(c *fiber.Ctx) error {
	var in portal.NoteInput
	if err := bind(c, &in); err != nil {
		return err
	}
	n, err := h.Portal.ClientNote(c.UserContext(), c.Params("token"), in)
	if err != nil {
		return err
	}
	return created(c, "Catatan terkirim", n)
}

func (h *PublicHandler) FreelancerPortal(c *fiber.Ctx) error {
	v, err := h.Portal.Freelancer(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}
	return ok(c, "", v)
}

func revisionRef(c *fiber.Ctx) (routing.RevisionRef, error) {
	r := routing.Route{Kind: routing.RevisionForm, Query: map[string][]string{
		"projectId":    {c.Query("projectId")},
		"freelancerId": {c.Query("freelancerId")},
		"revisionId":   {c.Query("revisionId")},
	}}
	ref, valid := r.Revision()
	if !valid {
		return ref, apperr.New(apperr.CodeInvalidLink, "Link revisi tidak valid")
	}
	return ref, nil
}

func (h *PublicHandler) GetRevision(c *fiber.Ctx) error {
	ref, err := revisionRef(c)
	if err != nil {
		return err
	}
	v, err := h.Revision.Resolve(c.UserContext(), ref)
	if err != nil {
		return err
	}
	return ok(c, "", v)
}

func (h *PublicHandler) SubmitRevision(c *fiber.Ctx) error {
	ref, err := revisionRef(c)
	if err != nil {
		return err
	}
	var in revision.SubmitInput
	if err := bind(c, &in); err != nil {
		return err
	}
	v, err := h.Revision.Submit(c.UserContext(), ref, in)
	if err != nil {
		return err
	}
	return ok(c, "Update revisi terkirim", v)
}
