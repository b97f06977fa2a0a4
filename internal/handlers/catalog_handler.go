package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
)

type CatalogHandler struct {
	Catalog *catalog.CatalogService
	Pricing *pricing.Service
}

func NewCatalogHandler(cat *catalog.CatalogService, pr *pricing.Service) *CatalogHandler {
	return &CatalogHandler{Catalog: cat, Pricing: pr}
}

// PublicCatalog is the public read used by the booking form.
func (h *CatalogHandler) PublicCatalog(c *fiber.Ctx) error {
	pkgs, err := h.Catalog.Packages(c.UserContext())
	if err != nil {
		return err
	}
	addOns, err := h.Catalog.AddOns(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", fiber.Map{"packages": pkgs, "add_ons": addOns})
}

// Quote prices a selection without redeeming anything.
func (h *CatalogHandler) Quote(c *fiber.Ctx) error {
	var in pricing.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	q, err := h.Pricing.Preview(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, "", q)
}

func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	rows, err := h.Catalog.Packages(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *CatalogHandler) CreatePackage(c *fiber.Ctx) error {
	var in catalog.PackageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.CreatePackage(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Paket ditambahkan", p)
}

func (h *CatalogHandler) UpdatePackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in catalog.PackageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.UpdatePackage(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ok(c, "Paket diperbarui", p)
}

func (h *CatalogHandler) DeletePackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeletePackage(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "Paket dihapus", fiber.Map{"id": id})
}

func (h *CatalogHandler) ListAddOns(c *fiber.Ctx) error {
	rows, err := h.Catalog.AddOns(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *CatalogHandler) CreateAddOn(c *fiber.Ctx) error {
	var in catalog.AddOnInput
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := h.Catalog.CreateAddOn(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Add-on ditambahkan", a)
}

func (h *CatalogHandler) UpdateAddOn(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in catalog.AddOnInput
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := h.Catalog.UpdateAddOn(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ok(c, "Add-on diperbarui", a)
}

func (h *CatalogHandler) DeleteAddOn(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteAddOn(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "Add-on dihapus", fiber.Map{"id": id})
}

func (h *CatalogHandler) ListPromos(c *fiber.Ctx) error {
	rows, err := h.Catalog.Promos(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *CatalogHandler) CreatePromo(c *fiber.Ctx) error {
	var in catalog.PromoInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.CreatePromo(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Kode promo ditambahkan", p)
}

func (h *CatalogHandler) UpdatePromo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in catalog.PromoInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.UpdatePromo(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ok(c, "Kode promo diperbarui", p)
}

func (h *CatalogHandler) DeletePromo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeletePromo(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "Kode promo dihapus", fiber.Map{"id": id})
}
