package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "klien_2026-10-16.csv", Filename("klien", now))
	assert.Equal(t, "export_2026-10-16.csv", Filename(" ", now))
}

func TestWriteQuotesSpecialFields(t *testing.T) {
	rows := []LeadRow{{
		Name:  `Rina "Ayu"`,
		Notes: "Minta paket, plus drone\nbaris dua",
	}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	want := "Nama,Sumber,Lokasi,Status,Tanggal,WhatsApp,Catatan\n" +
		`"Rina ""Ayu""",,,,,,"Minta paket, plus drone` + "\n" + `baris dua"` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestExportDatasets(t *testing.T) {
	svc := NewExportService(dbtest.New(t))
	ctx := context.Background()
	require.NoError(t, svc.DB.Create(&models.Client{Name: "Rina", Email: "rina@example.com"}).Error)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, "klien", &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Rina,rina@example.com"))

	err := svc.Export(ctx, "rahasia", &buf)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	assert.Equal(t, []string{"freelancer", "klien", "prospek", "proyek", "transaksi"}, Datasets())
}
