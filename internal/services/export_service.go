package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

var ledgerHeader = []string{"Tanggal", "Jenis", "Kategori", "Keterangan", "Jumlah"}

type ExportService struct {
	ledger *LedgerService
	now    Clock
}

func NewExportService(ledger *LedgerService, now Clock) *ExportService {
	if now == nil {
		now = time.Now
	}
	return &ExportService{ledger: ledger, now: now}
}

// Export renders the filtered ledger in the requested format and returns the file
// content with a suggested filename
func (s *ExportService) Export(ctx context.Context, format string, filter models.TransactionFilter) ([]byte, string, error) {
	txs, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case ExportFormatCSV, "":
		return s.ExportCSV(txs)
	case ExportFormatXLSX:
		return s.ExportXLSX(txs)
	case ExportFormatPDF:
		return s.ExportPDF(txs, filter)
	}
	return nil, "", NewAppError("format ekspor tidak didukung: %q", format)
}

func (s *ExportService) ExportCSV(txs []models.Transaction) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(ledgerHeader)
	for _, tx := range txs {
		_ = writer.Write([]string{
			tx.Date,
			typeLabel(tx.Type),
			tx.Category,
			tx.Description,
			strconv.FormatInt(tx.Amount, 10),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), s.filename("csv"), nil
}

func (s *ExportService) ExportXLSX(txs []models.Transaction) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transaksi"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 3})

	for i, h := range ledgerHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for i, tx := range txs {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), tx.Date)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), typeLabel(tx.Type))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), tx.Category)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), tx.Description)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), tx.Amount)
	}

	totals := ComputeTotals(txs)
	last := len(txs) + 3
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", last), "Total Pemasukan")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", last), totals.Income)
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", last+1), "Total Pengeluaran")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", last+1), totals.Expense)
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", last+2), "Saldo")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", last+2), totals.Balance)
	_ = f.SetCellStyle(sheet, "E2", fmt.Sprintf("E%d", last+2), moneyStyle)
	_ = f.SetColWidth(sheet, "D", "D", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), s.filename("xlsx"), nil
}

func (s *ExportService) ExportPDF(txs []models.Transaction, filter models.TransactionFilter) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Buku Kas Komplek")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("Periode: %s s/d %s", orDash(filter.From), orDash(filter.To)))
	pdf.Ln(10)

	widths := []float64{24, 22, 30, 78, 36}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range ledgerHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, tx := range txs {
		pdf.CellFormat(widths[0], 6, tx.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, typeLabel(tx.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(tx.Category, 18), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, truncate(tx.Description, 52), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, FormatRupiah(tx.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	totals := ComputeTotals(txs)
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	for _, line := range [][2]string{
		{"Total Pemasukan:", FormatRupiah(totals.Income)},
		{"Total Pengeluaran:", FormatRupiah(totals.Expense)},
		{"Saldo:", FormatRupiah(totals.Balance)},
	} {
		pdf.Cell(60, 6, line[0])
		pdf.Cell(40, 6, line[1])
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), s.filename("pdf"), nil
}

func (s *ExportService) filename(ext string) string {
	return fmt.Sprintf("transaksi_%s.%s", s.now().Format("2006-01-02"), ext)
}

func typeLabel(t string) string {
	switch t {
	case models.TransactionTypeIncome:
		return "Pemasukan"
	case models.TransactionTypeExpense:
		return "Pengeluaran"
	}
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
