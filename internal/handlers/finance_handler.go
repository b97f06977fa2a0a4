package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/payroll"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/reward"
)

type FinanceHandler struct {
	Ledger  *ledger.LedgerService
	Payroll *payroll.PayrollService
	Reward  *reward.RewardService
}

func NewFinanceHandler(l *ledger.LedgerService, p *payroll.PayrollService, r *reward.RewardService) *FinanceHandler {
	return &FinanceHandler{Ledger: l, Payroll: p, Reward: r}
}

type signatureReq struct {
	Signature string `json:"vendor_signature" validate:"required"`
}

func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, apperr.Validation(name, "Format tanggal harus YYYY-MM-DD")
	}
	return &t, nil
}

// GET /api/transactions?type=&category=&project_id=&from=&to=
func (h *FinanceHandler) ListTransactions(c *fiber.Ctx) error {
	f := ledger.ListFilter{
		Type:     models.TransactionType(c.Query("type")),
		Category: c.Query("category"),
	}
	var err error
	if f.ProjectID, err = queryID(c, "project_id"); err != nil {
		return err
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	if f.To != nil {
		end := f.To.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	rows, err := h.Ledger.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *FinanceHandler) RecordExpense(c *fiber.Ctx) error {
	var in ledger.ExpenseInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.Ledger.RecordExpense(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Pengeluaran dicatat", t)
}

func (h *FinanceHandler) RecordIncome(c *fiber.Ctx) error {
	var in ledger.IncomeInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.Ledger.RecordIncome(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Pemasukan dicatat", t)
}

func (h *FinanceHandler) RecordClientPayment(c *fiber.Ctx) error {
	var in ledger.ClientPaymentInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, p, err := h.Ledger.RecordClientPayment(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Pembayaran klien dicatat", fiber.Map{"transaction": t, "project": p})
}

func (h *FinanceHandler) Transfer(c *fiber.Ctx) error {
	var in ledger.TransferInput
	if err := bind(c, &in); err != nil {
		return err
	}
	rows, err := h.Ledger.Transfer(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Transfer berhasil", rows)
}

func (h *FinanceHandler) SignTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req signatureReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.Ledger.SignTransaction(c.UserContext(), id, req.Signature)
	if err != nil {
		return err
	}
	return ok(c, "Transaksi ditandatangani", t)
}

// ---- payroll

func (h *FinanceHandler) AssignFreelancer(c *fiber.Ctx) error {
	var in payroll.AssignInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Payroll.AssignFreelancer(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Freelancer ditugaskan", p)
}

func (h *FinanceHandler) UnassignFreelancer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Payroll.Unassign(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "Penugasan dihapus", fiber.Map{"id": id})
}

func (h *FinanceHandler) UnpaidFees(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Payroll.Unpaid(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "", out)
}

func (h *FinanceHandler) Disburse(c *fiber.Ctx) error {
	var in payroll.DisburseInput
	if err := bind(c, &in); err != nil {
		return err
	}
	rec, err := h.Payroll.Disburse(c.UserContext(), in)
	if err != nil {
		return err
	}
	if rec == nil {
		return ok(c, "Tidak ada fee yang dipilih", nil)
	}
	return created(c, "Gaji freelancer dibayarkan", rec)
}

func (h *FinanceHandler) PaymentRecords(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Payroll.Records(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "", rows)
}

func (h *FinanceHandler) SignPaymentRecord(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req signatureReq
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.Payroll.SignRecord(c.UserContext(), id, req.Signature)
	if err != nil {
		return err
	}
	return ok(c, "Slip ditandatangani", rec)
}

// ---- rewards

func (h *FinanceHandler) DepositReward(c *fiber.Ctx) error {
	var in reward.DepositInput
	if err := bind(c, &in); err != nil {
		return err
	}
	e, err := h.Reward.Deposit(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Hadiah ditambahkan", e)
}

func (h *FinanceHandler) WithdrawReward(c *fiber.Ctx) error {
	var in reward.WithdrawInput
	if err := bind(c, &in); err != nil {
		return err
	}
	w, err := h.Reward.Withdraw(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "Saldo hadiah dicairkan", w)
}

func (h *FinanceHandler) RewardEntries(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Reward.Entries(c.UserContext(), id)
	if err != nil {
		return err
	}
	rec, err := h.Reward.Reconcile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "", fiber.Map{"entries": rows, "balance": rec.Balance, "consistent": rec.Consistent()})
}
