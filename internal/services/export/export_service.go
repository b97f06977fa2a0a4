package export

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

const dateLayout = "2006-01-02"

// Filename returns "<name>_<YYYY-MM-DD>.csv".
func Filename(name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "export"
	}
	return name + "_" + now.Format(dateLayout) + ".csv"
}

// Write emits a header row and one row per element. Fields containing
// commas, quotes or newlines are quoted with inner quotes doubled.
func Write(w io.Writer, rows any) error {
	return gocsv.Marshal(rows, w)
}

type ClientRow struct {
	Name      string `csv:"Nama"`
	Email     string `csv:"Email"`
	Phone     string `csv:"Telepon"`
	Whatsapp  string `csv:"WhatsApp"`
	Instagram string `csv:"Instagram"`
	Since     string `csv:"Klien Sejak"`
	Status    string `csv:"Status"`
	Type      string `csv:"Tipe"`
}

type ProjectRow struct {
	Name          string `csv:"Nama Proyek"`
	Client        string `csv:"Klien"`
	Type          string `csv:"Jenis"`
	Package       string `csv:"Paket"`
	Date          string `csv:"Tanggal"`
	Location      string `csv:"Lokasi"`
	Status        string `csv:"Status"`
	TotalCost     int64  `csv:"Total Biaya"`
	Discount      int64  `csv:"Diskon"`
	AmountPaid    int64  `csv:"Terbayar"`
	PaymentStatus string `csv:"Status Pembayaran"`
}

type TransactionRow struct {
	Date        string `csv:"Tanggal"`
	Description string `csv:"Deskripsi"`
	Type        string `csv:"Jenis"`
	Category    string `csv:"Kategori"`
	Method      string `csv:"Metode"`
	Amount      int64  `csv:"Jumlah"`
}

type LeadRow struct {
	Name     string `csv:"Nama"`
	Channel  string `csv:"Sumber"`
	Location string `csv:"Lokasi"`
	Status   string `csv:"Status"`
	Date     string `csv:"Tanggal"`
	Whatsapp string `csv:"WhatsApp"`
	Notes    string `csv:"Catatan"`
}

type TeamRow struct {
	Name          string `csv:"Nama"`
	Role          string `csv:"Peran"`
	Email         string `csv:"Email"`
	Phone         string `csv:"Telepon"`
	StandardFee   int64  `csv:"Fee Standar"`
	RewardBalance int64  `csv:"Saldo Hadiah"`
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

type ExportService struct {
	DB *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{DB: db}
}

type dataset func(db *gorm.DB) (any, error)

var datasets = map[string]dataset{
	"klien": func(db *gorm.DB) (any, error) {
		var src []models.Client
		if err := db.Order("name asc").Find(&src).Error; err != nil {
			return nil, err
		}
		rows := make([]ClientRow, 0, len(src))
		for _, c := range src {
			rows = append(rows, ClientRow{c.Name, c.Email, c.Phone, c.Whatsapp, c.Instagram, day(c.Since), string(c.Status), c.ClientType})
		}
		return rows, nil
	},
	"proyek": func(db *gorm.DB) (any, error) {
		var src []models.Project
		if err := db.Order("date desc").Find(&src).Error; err != nil {
			return nil, err
		}
		rows := make([]ProjectRow, 0, len(src))
		for _, p := range src {
			rows = append(rows, ProjectRow{p.Name, p.ClientName, p.ProjectType, p.PackageName, day(p.Date), p.Location,
				p.Status, p.TotalCost, p.DiscountAmount, p.AmountPaid, string(p.PaymentStatus)})
		}
		return rows, nil
	},
	"transaksi": func(db *gorm.DB) (any, error) {
		var src []models.Transaction
		if err := db.Order("date desc").Find(&src).Error; err != nil {
			return nil, err
		}
		rows := make([]TransactionRow, 0, len(src))
		for _, t := range src {
			rows = append(rows, TransactionRow{day(t.Date), t.Description, string(t.Type), t.Category, t.Method, t.Amount})
		}
		return rows, nil
	},
	"prospek": func(db *gorm.DB) (any, error) {
		var src []models.Lead
		if err := db.Order("date desc").Find(&src).Error; err != nil {
			return nil, err
		}
		rows := make([]LeadRow, 0, len(src))
		for _, l := range src {
			rows = append(rows, LeadRow{l.Name, l.ContactChannel, l.Location, string(l.Status), day(l.Date), l.Whatsapp, l.Notes})
		}
		return rows, nil
	},
	"freelancer": func(db *gorm.DB) (any, error) {
		var src []models.TeamMember
		if err := db.Order("name asc").Find(&src).Error; err != nil {
			return nil, err
		}
		rows := make([]TeamRow, 0, len(src))
		for _, m := range src {
			rows = append(rows, TeamRow{m.Name, m.Role, m.Email, m.Phone, m.StandardFee, m.RewardBalance})
		}
		return rows, nil
	},
}

// Datasets lists the exportable dataset names.
func Datasets() []string {
	out := make([]string, 0, len(datasets))
	for k := range datasets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *ExportService) Export(ctx context.Context, name string, w io.Writer) error {
	load, ok := datasets[name]
	if !ok {
		return apperr.Newf(apperr.CodeNotFound, "Data %q tidak bisa diekspor", name)
	}
	rows, err := load(s.DB.WithContext(ctx))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat data ekspor")
	}
	if err := Write(w, rows); err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal menulis CSV")
	}
	return nil
}
