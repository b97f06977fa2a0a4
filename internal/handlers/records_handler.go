package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/portal"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/records"
)

func list[T records.Entity](c *fiber.Ctx, s *records.RecordsService, opt records.ListOptions) error {
	opt.Search = c.Query("q")
	rows, err := records.List[T](c.UserContext(), s, opt)
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func show[T records.Entity](c *fiber.Ctx, s *records.RecordsService) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	row, err := records.Get[T](c.UserContext(), s, id)
	if err != nil {
		return err
	}
	return ok(c, "", row)
}

func create[T records.Entity, I records.Input[T]](c *fiber.Ctx, s *records.RecordsService, msg string) error {
	var in I
	if err := bind(c, &in); err != nil {
		return err
	}
	row, err := records.Create[T](c.UserContext(), s, in)
	if err != nil {
		return err
	}
	return created(c, msg, row)
}

func update[T records.Entity, I records.Input[T]](c *fiber.Ctx, s *records.RecordsService, msg string) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in I
	if err := bind(c, &in); err != nil {
		return err
	}
	row, err := records.Update[T](c.UserContext(), s, id, in)
	if err != nil {
		return err
	}
	return ok(c, msg, row)
}

func destroy[T records.Entity](c *fiber.Ctx, s *records.RecordsService, msg string, guards ...records.Guard) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := records.Delete[T](c.UserContext(), s, id, guards...); err != nil {
		return err
	}
	return ok(c, msg, fiber.Map{"id": id})
}

type RecordsHandler struct {
	Records     *records.RecordsService
	Portal      *portal.PortalService
	FrontendURL string
}

func NewRecordsHandler(s *records.RecordsService, p *portal.PortalService, frontendURL string) *RecordsHandler {
	return &RecordsHandler{Records: s, Portal: p, FrontendURL: strings.TrimRight(frontendURL, "/")}
}

// ---- clients

func (h *RecordsHandler) ListClients(c *fiber.Ctx) error {
	return list[models.Client](c, h.Records, records.ListOptions{
		Order: "name ASC", SearchColumns: []string{"name", "email", "phone", "whatsapp"},
	})
}

func (h *RecordsHandler) GetClient(c *fiber.Ctx) error { return show[models.Client](c, h.Records) }

func (h *RecordsHandler) CreateClient(c *fiber.Ctx) error {
	return create[models.Client, records.ClientInput](c, h.Records, "Klien ditambahkan")
}

func (h *RecordsHandler) UpdateClient(c *fiber.Ctx) error {
	return update[models.Client, records.ClientInput](c, h.Records, "Klien diperbarui")
}

func (h *RecordsHandler) DeleteClient(c *fiber.Ctx) error {
	return destroy[models.Client](c, h.Records, "Klien dihapus", records.ClientGuards...)
}

// ClientPortalLink issues a fresh portal token; older links stop working.
func (h *RecordsHandler) ClientPortalLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	token, err := h.Portal.IssueClientAccess(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "Link portal klien dibuat", fiber.Map{
		"portal_access_id": token,
		"url":              h.FrontendURL + "/#/portal/" + token,
	})
}

// ---- leads

func (h *RecordsHandler) ListLeads(c *fiber.Ctx) error {
	opt := records.ListOptions{Order: "date DESC", SearchColumns: []string{"name", "location", "whatsapp"}}
	if st := c.Query("status"); st != "" {
		opt.Where = map[string]any{"status": st}
	}
	return list[models.Lead](c, h.Records, opt)
}

func (h *RecordsHandler) CreateLead(c *fiber.Ctx) error {
	return create[models.Lead, records.LeadInput](c, h.Records, "Prospek ditambahkan")
}

func (h *RecordsHandler) UpdateLead(c *fiber.Ctx) error {
	return update[models.Lead, records.LeadInput](c, h.Records, "Prospek diperbarui")
}

func (h *RecordsHandler) DeleteLead(c *fiber.Ctx) error {
	return destroy[models.Lead](c, h.Records, "Prospek dihapus")
}

type convertLeadReq struct {
	Email string `json:"email" validate:"omitempty,email"`
}

func (h *RecordsHandler) ConvertLead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req convertLeadReq
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	client, err := h.Records.ConvertLead(c.UserContext(), id, req.Email)
	if err != nil {
		return err
	}
	return created(c, "Prospek dikonversi menjadi klien", client)
}

// ---- projects

func (h *RecordsHandler) ListProjects(c *fiber.Ctx) error {
	opt := records.ListOptions{Order: "date DESC", SearchColumns: []string{"name", "client_name", "location"}, Where: map[string]any{}}
	if st := c.Query("status"); st != "" {
		opt.Where["status"] = st
	}
	if pt := c.Query("project_type"); pt != "" {
		opt.Where["project_type"] = pt
	}
	cid, err := queryID(c, "client_id")
	if err != nil {
		return err
	}
	if cid != nil {
		opt.Where["client_id"] = *cid
	}
	return list[models.Project](c, h.Records, opt)
}

func (h *RecordsHandler) GetProject(c *fiber.Ctx) error { return show[models.Project](c, h.Records) }

func (h *RecordsHandler) CreateProject(c *fiber.Ctx) error {
	return create[models.Project, records.ProjectInput](c, h.Records, "Proyek ditambahkan")
}

func (h *RecordsHandler) UpdateProject(c *fiber.Ctx) error {
	return update[models.Project, records.ProjectInput](c, h.Records, "Proyek diperbarui")
}

func (h *RecordsHandler) DeleteProject(c *fiber.Ctx) error {
	return destroy[models.Project](c, h.Records, "Proyek dihapus", records.ProjectGuards...)
}

// ---- team

func (h *RecordsHandler) ListTeam(c *fiber.Ctx) error {
	return list[models.TeamMember](c, h.Records, records.ListOptions{Order: "name ASC", SearchColumns: []string{"name", "role"}})
}

func (h *RecordsHandler) GetTeamMember(c *fiber.Ctx) error { return show[models.TeamMember](c, h.Records) }

func (h *RecordsHandler) CreateTeamMember(c *fiber.Ctx) error {
	return create[models.TeamMember, records.TeamMemberInput](c, h.Records, "Freelancer ditambahkan")
}

func (h *RecordsHandler) UpdateTeamMember(c *fiber.Ctx) error {
	return update[models.TeamMember, records.TeamMemberInput](c, h.Records, "Freelancer diperbarui")
}

func (h *RecordsHandler) DeleteTeamMember(c *fiber.Ctx) error {
	return destroy[models.TeamMember](c, h.Records, "Freelancer dihapus", records.TeamMemberGuards...)
}

func (h *RecordsHandler) FreelancerPortalLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	token, err := h.Portal.IssueFreelancerAccess(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "Link portal freelancer dibuat", fiber.Map{
		"portal_access_id": token,
		"url":              h.FrontendURL + "/#/freelancer-portal/" + token,
	})
}

// ---- cards & pockets

func (h *RecordsHandler) ListCards(c *fiber.Ctx) error {
	return list[models.Card](c, h.Records, records.ListOptions{Order: "bank_name ASC"})
}

func (h *RecordsHandler) CreateCard(c *fiber.Ctx) error {
	return create[models.Card, records.CardInput](c, h.Records, "Kartu ditambahkan")
}

func (h *RecordsHandler) UpdateCard(c *fiber.Ctx) error {
	return update[models.Card, records.CardInput](c, h.Records, "Kartu diperbarui")
}

func (h *RecordsHandler) DeleteCard(c *fiber.Ctx) error {
	return destroy[models.Card](c, h.Records, "Kartu dihapus", records.CardGuards...)
}

func (h *RecordsHandler) ListPockets(c *fiber.Ctx) error {
	return list[models.FinancialPocket](c, h.Records, records.ListOptions{Order: "name ASC"})
}

func (h *RecordsHandler) CreatePocket(c *fiber.Ctx) error {
	return create[models.FinancialPocket, records.PocketInput](c, h.Records, "Kantong ditambahkan")
}

func (h *RecordsHandler) UpdatePocket(c *fiber.Ctx) error {
	return update[models.FinancialPocket, records.PocketInput](c, h.Records, "Kantong diperbarui")
}

func (h *RecordsHandler) DeletePocket(c *fiber.Ctx) error {
	return destroy[models.FinancialPocket](c, h.Records, "Kantong dihapus", records.PocketGuards...)
}

// ---- contracts & SOPs

func (h *RecordsHandler) ListContracts(c *fiber.Ctx) error {
	opt := records.ListOptions{Order: "signing_date DESC", SearchColumns: []string{"contract_number", "client_name1"}, Where: map[string]any{}}
	pid, err := queryID(c, "project_id")
	if err != nil {
		return err
	}
	if pid != nil {
		opt.Where["project_id"] = *pid
	}
	return list[models.Contract](c, h.Records, opt)
}

func (h *RecordsHandler) GetContract(c *fiber.Ctx) error { return show[models.Contract](c, h.Records) }

func (h *RecordsHandler) CreateContract(c *fiber.Ctx) error {
	return create[models.Contract, records.ContractInput](c, h.Records, "Kontrak dibuat")
}

func (h *RecordsHandler) UpdateContract(c *fiber.Ctx) error {
	return update[models.Contract, records.ContractInput](c, h.Records, "Kontrak diperbarui")
}

func (h *RecordsHandler) DeleteContract(c *fiber.Ctx) error {
	return destroy[models.Contract](c, h.Records, "Kontrak dihapus")
}

type signReq struct {
	Party     records.Party `json:"party" validate:"required,oneof=vendor client"`
	Signature string        `json:"signature" validate:"required"`
}

func (h *RecordsHandler) SignContract(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req signReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctr, err := h.Records.SignContract(c.UserContext(), id, req.Party, req.Signature)
	if err != nil {
		return err
	}
	return ok(c, "Kontrak ditandatangani", ctr)
}

func (h *RecordsHandler) ListSOPs(c *fiber.Ctx) error {
	opt := records.ListOptions{Order: "title ASC", SearchColumns: []string{"title", "content"}}
	if cat := c.Query("category"); cat != "" {
		opt.Where = map[string]any{"category": cat}
	}
	return list[models.SOP](c, h.Records, opt)
}

func (h *RecordsHandler) CreateSOP(c *fiber.Ctx) error {
	return create[models.SOP, records.SOPInput](c, h.Records, "SOP ditambahkan")
}

func (h *RecordsHandler) UpdateSOP(c *fiber.Ctx) error {
	return update[models.SOP, records.SOPInput](c, h.Records, "SOP diperbarui")
}

func (h *RecordsHandler) DeleteSOP(c *fiber.Ctx) error {
	return destroy[models.SOP](c, h.Records, "SOP dihapus")
}

