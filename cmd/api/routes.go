package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/config"
	"github.com/Windi-Fikriyansyah/studio_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/studio_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/booking"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/calendar"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/export"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/payroll"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/portal"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/records"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/revision"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/reward"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/tripay"
)

type deps struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *gorm.DB
	rdb      *redis.Client
	hub      *realtime.Hub
	notifier *realtime.Notifier
	tripay   *tripay.TripayService
	cardID   uuid.UUID
}

func registerRoutes(app *fiber.App, d deps) {
	gdb := d.db

	// services
	notifySvc := notify.NewNotifyService(gdb, d.notifier, d.log)
	portalSvc := portal.NewPortalService(gdb, d.cfg.PortalKey, notifySvc)
	revisionSvc := revision.NewRevisionService(gdb, notifySvc)
	bookingSvc := booking.NewBookingService(gdb, notifySvc, d.log, d.cfg.PublicSubmitTimeout)
	recordsSvc := records.NewRecordsService(gdb)

	// handlers
	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: d.cfg.JWTSecret,
		Expires:   d.cfg.JWTExpiresMin,
		Secure:    d.cfg.IsProd(),
	}
	googleH := &handlers.GoogleOAuthHandler{
		Auth:            authH,
		Log:             d.log,
		GoogleClientID:  d.cfg.GoogleClientID,
		GoogleSecret:    d.cfg.GoogleSecret,
		GoogleRedirect:  d.cfg.GoogleRedirect,
		FrontendBaseURL: d.cfg.FrontendBaseURL,
	}
	catalogH := handlers.NewCatalogHandler(catalog.NewCatalogService(gdb), pricing.NewService(gdb))
	recordsH := handlers.NewRecordsHandler(recordsSvc, portalSvc, d.cfg.FrontendBaseURL)
	financeH := handlers.NewFinanceHandler(
		ledger.NewLedgerService(gdb, d.log),
		payroll.NewPayrollService(gdb, d.log),
		reward.NewRewardService(gdb, d.log),
	)
	officeH := &handlers.OfficeHandler{
		Profile:  profile.NewProfileService(gdb),
		Calendar: calendar.NewCalendarService(gdb, nil),
		Notify:   notifySvc,
		Export:   export.NewExportService(gdb),
		Revision: revisionSvc,
		BaseURL:  d.cfg.FrontendBaseURL,
	}
	publicH := handlers.NewPublicHandler(bookingSvc, portalSvc, revisionSvc)
	var settler *tripay.Settler
	if d.tripay != nil {
		settler = tripay.NewSettler(gdb, notifySvc, d.log, d.cardID)
	}
	paymentH := handlers.NewPaymentHandler(d.tripay, settler, portalSvc, d.log, d.cfg.FrontendBaseURL)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// ---- public
	idem := middleware.Idempotency(middleware.IdempotencyConfig{
		Store: middleware.RedisStore{Client: d.rdb},
		TTL:   d.cfg.IdempotencyTTL,
	})

	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Post("/tripay/callback", paymentH.HandleCallback)

	pub := api.Group("/public")
	pub.Get("/route", publicH.ResolveRoute)
	pub.Get("/catalog", catalogH.PublicCatalog)
	pub.Post("/quote", catalogH.Quote)
	pub.Post("/bookings", idem, publicH.SubmitBooking)
	pub.Post("/leads", idem, publicH.SubmitLead)
	pub.Post("/feedback", idem, publicH.SubmitFeedback)
	pub.Get("/portal/:token", publicH.ClientPortal)
	pub.Post("/portal/:token/notes", idem, publicH.ClientNote)
	pub.Get("/portal/:token/payment-channels", paymentH.GetChannels)
	pub.Post("/portal/:token/payments", idem, paymentH.CreatePayment)
	pub.Get("/freelancer-portal/:token", publicH.FreelancerPortal)
	pub.Get("/revisions", publicH.GetRevision)
	pub.Post("/revisions", idem, publicH.SubmitRevision)

	// ---- protected (JWT cookie)
	auth := []fiber.Handler{middleware.JWTFromCookie(d.cfg.JWTSecret), middleware.AttachJWTLocals()}
	protected := api.Group("/", auth...)
	view := func(name string) fiber.Handler { return middleware.RequireView(gdb, name) }
	admin := middleware.RequireRoles(models.RoleAdmin)

	protected.Get("/me", authH.Me)

	users := protected.Group("/users", admin)
	users.Get("/", authH.ListUsers)
	users.Post("/", authH.CreateUser)
	users.Put("/:id", authH.UpdateUser)
	users.Delete("/:id", authH.DeleteUser)

	settings := protected.Group("/profile")
	settings.Get("/", officeH.GetProfile)
	settings.Put("/", view(models.ViewSettings), officeH.SaveProfile)

	notif := protected.Group("/notifications")
	notif.Get("/", officeH.ListNotifications)
	notif.Get("/unread-count", officeH.UnreadCount)
	notif.Patch("/read-all", officeH.MarkAllRead)
	notif.Patch("/:id/read", officeH.MarkRead)

	cal := protected.Group("/calendar", view(models.ViewCalendar))
	cal.Get("/", officeH.CalendarMonth)
	cal.Get("/agenda", officeH.CalendarAgenda)

	rep := protected.Group("/export", view(models.ViewReports))
	rep.Get("/", officeH.ExportDatasets)
	rep.Get("/:dataset", officeH.ExportCSV)

	// catalog
	pkgs := protected.Group("/packages", view(models.ViewPackages))
	pkgs.Get("/", catalogH.ListPackages)
	pkgs.Post("/", catalogH.CreatePackage)
	pkgs.Put("/:id", catalogH.UpdatePackage)
	pkgs.Delete("/:id", catalogH.DeletePackage)

	addOns := protected.Group("/add-ons", view(models.ViewPackages))
	addOns.Get("/", catalogH.ListAddOns)
	addOns.Post("/", catalogH.CreateAddOn)
	addOns.Put("/:id", catalogH.UpdateAddOn)
	addOns.Delete("/:id", catalogH.DeleteAddOn)

	promos := protected.Group("/promo-codes", view(models.ViewPromos))
	promos.Get("/", catalogH.ListPromos)
	promos.Post("/", catalogH.CreatePromo)
	promos.Put("/:id", catalogH.UpdatePromo)
	promos.Delete("/:id", catalogH.DeletePromo)

	// records
	leads := protected.Group("/leads", view(models.ViewLeads))
	leads.Get("/", recordsH.ListLeads)
	leads.Post("/", recordsH.CreateLead)
	leads.Put("/:id", recordsH.UpdateLead)
	leads.Delete("/:id", recordsH.DeleteLead)
	leads.Post("/:id/convert", recordsH.ConvertLead)

	clients := protected.Group("/clients", view(models.ViewClients))
	clients.Get("/", recordsH.ListClients)
	clients.Post("/", recordsH.CreateClient)
	clients.Get("/:id", recordsH.GetClient)
	clients.Put("/:id", recordsH.UpdateClient)
	clients.Delete("/:id", recordsH.DeleteClient)
	clients.Post("/:id/portal-link", recordsH.ClientPortalLink)

	projects := protected.Group("/projects", view(models.ViewProjects))
	projects.Get("/", recordsH.ListProjects)
	projects.Post("/", recordsH.CreateProject)
	projects.Get("/:id", recordsH.GetProject)
	projects.Put("/:id", recordsH.UpdateProject)
	projects.Delete("/:id", recordsH.DeleteProject)
	projects.Get("/:id/revisions", officeH.ProjectRevisions)
	projects.Post("/revisions", officeH.CreateRevision)
	projects.Post("/team", financeH.AssignFreelancer)
	projects.Delete("/team/:id", financeH.UnassignFreelancer)

	team := protected.Group("/team", view(models.ViewTeam))
	team.Get("/", recordsH.ListTeam)
	team.Post("/", recordsH.CreateTeamMember)
	team.Get("/:id", recordsH.GetTeamMember)
	team.Put("/:id", recordsH.UpdateTeamMember)
	team.Delete("/:id", recordsH.DeleteTeamMember)
	team.Post("/:id/portal-link", recordsH.FreelancerPortalLink)
	team.Get("/:id/unpaid", financeH.UnpaidFees)
	team.Get("/:id/payment-records", financeH.PaymentRecords)
	team.Get("/:id/rewards", financeH.RewardEntries)

	contracts := protected.Group("/contracts", view(models.ViewContracts))
	contracts.Get("/", recordsH.ListContracts)
	contracts.Post("/", recordsH.CreateContract)
	contracts.Get("/:id", recordsH.GetContract)
	contracts.Put("/:id", recordsH.UpdateContract)
	contracts.Delete("/:id", recordsH.DeleteContract)
	contracts.Post("/:id/sign", recordsH.SignContract)

	sops := protected.Group("/sops", view(models.ViewSOP))
	sops.Get("/", recordsH.ListSOPs)
	sops.Post("/", recordsH.CreateSOP)
	sops.Put("/:id", recordsH.UpdateSOP)
	sops.Delete("/:id", recordsH.DeleteSOP)

	// finance
	fin := protected.Group("/finance", view(models.ViewFinance))
	fin.Get("/cards", recordsH.ListCards)
	fin.Post("/cards", recordsH.CreateCard)
	fin.Put("/cards/:id", recordsH.UpdateCard)
	fin.Delete("/cards/:id", recordsH.DeleteCard)
	fin.Get("/pockets", recordsH.ListPockets)
	fin.Post("/pockets", recordsH.CreatePocket)
	fin.Put("/pockets/:id", recordsH.UpdatePocket)
	fin.Delete("/pockets/:id", recordsH.DeletePocket)

	fin.Get("/transactions", financeH.ListTransactions)
	fin.Post("/transactions/expense", financeH.RecordExpense)
	fin.Post("/transactions/income", financeH.RecordIncome)
	fin.Post("/transactions/client-payment", financeH.RecordClientPayment)
	fin.Post("/transactions/transfer", financeH.Transfer)
	fin.Post("/transactions/:id/sign", financeH.SignTransaction)

	fin.Post("/payroll/disburse", financeH.Disburse)
	fin.Post("/payroll/records/:id/sign", financeH.SignPaymentRecord)
	fin.Post("/rewards/deposit", financeH.DepositReward)
	fin.Post("/rewards/withdraw", financeH.WithdrawReward)

	// ---- realtime
	app.Use("/ws", auth[0], auth[1], func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/ws/notifications", websocket.New(realtime.ServeWS(d.hub, d.log)))
}
