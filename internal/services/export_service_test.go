package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedExportLedger(t *testing.T, env *testEnv) {
	t.Helper()
	key := models.DuesKey{Period: testPeriod, ResidentID: "7"}
	require.NoError(t, env.repos.Ledger.SaveAll(context.Background(), []models.Transaction{
		{ID: "a", Date: "2026-10-01", Type: models.TransactionTypeIncome, Category: models.CategoryDues, Description: "Iuran 2026-10 - Budi " + key.Token(), Amount: 150000, LinkedKey: &key},
		{ID: "b", Date: "2026-10-03", Type: models.TransactionTypeExpense, Category: "Kebersihan", Description: "Angkut sampah, Oktober", Amount: 75000},
		{ID: "c", Date: "2026-10-05", Type: models.TransactionTypeIncome, Category: "Donasi", Amount: 20000},
	}))
}

func TestExportService_CSV(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	seedExportLedger(t, env)

	data, filename, err := env.svc.Export.Export(context.Background(), "", models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "transaksi_2026-10-16.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Tanggal,Jenis,Kategori,Keterangan,Jumlah", lines[0])
	assert.Equal(t, "2026-10-01,Pemasukan,Iuran,Iuran 2026-10 - Budi [DUES:2026-10:7],150000", lines[1])
	assert.Equal(t, `2026-10-03,Pengeluaran,Kebersihan,"Angkut sampah, Oktober",75000`, lines[2])
	assert.Equal(t, "2026-10-05,Pemasukan,Donasi,,20000", lines[3])
}

func TestExportService_CSVFiltered(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	seedExportLedger(t, env)

	data, _, err := env.svc.Export.Export(context.Background(), ExportFormatCSV, models.TransactionFilter{Type: models.TransactionTypeExpense})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}

func TestExportService_XLSX(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	seedExportLedger(t, env)

	data, filename, err := env.svc.Export.Export(context.Background(), ExportFormatXLSX, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "transaksi_2026-10-16.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transaksi")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, ledgerHeader, rows[0])
	assert.Equal(t, "Kebersihan", rows[2][2])

	balance, err := f.GetCellValue("Transaksi", "D8")
	require.NoError(t, err)
	assert.Equal(t, "Saldo", balance)
}

func TestExportService_PDF(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)
	seedExportLedger(t, env)

	data, filename, err := env.svc.Export.Export(context.Background(), ExportFormatPDF, models.TransactionFilter{From: "2026-10-01"})
	require.NoError(t, err)
	assert.Equal(t, "transaksi_2026-10-16.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t, nil, config.ClosingPolicySticky)

	_, _, err := env.svc.Export.Export(context.Background(), "json", models.TransactionFilter{})
	require.Error(t, err)
	assert.Equal(t, 400, StatusCode(err))
}

func TestExportService_CSVImportsBack(t *testing.T) {
	src := newTestEnv(t, nil, config.ClosingPolicySticky)
	seedExportLedger(t, src)
	data, _, err := src.svc.Export.Export(context.Background(), ExportFormatCSV, models.TransactionFilter{})
	require.NoError(t, err)

	dst := newTestEnv(t, nil, config.ClosingPolicySticky)
	result, err := dst.svc.Dues.ImportLedger(context.Background(), bytes.NewReader(data), ImportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Imported: 3, Dues: 1}, result)

	want := src.ledger(t)
	got := dst.ledger(t)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Description, got[i].Description)
		assert.Equal(t, want[i].Amount, got[i].Amount)
	}

	payments, err := dst.repos.DuesPayment.FindAll(context.Background())
	require.NoError(t, err)
	assert.True(t, payments.IsPaid(testPeriod, "7"))
}
