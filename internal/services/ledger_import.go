package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Import formats
const (
	ImportFormatCSV  = "csv"
	ImportFormatXLSX = "xlsx"
)

// ImportResult summarises a ledger import
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Dues     int `json:"dues"`
}

// column positions used when the file has no recognisable header
var defaultImportColumns = map[string]int{
	"date":        0,
	"type":        1,
	"category":    2,
	"description": 3,
	"amount":      4,
}

var importHeaderAliases = map[string]string{
	"date":        "date",
	"tanggal":     "date",
	"type":        "type",
	"jenis":       "type",
	"tipe":        "type",
	"category":    "category",
	"kategori":    "category",
	"description": "description",
	"keterangan":  "description",
	"deskripsi":   "description",
	"amount":      "amount",
	"jumlah":      "amount",
	"nominal":     "amount",
}

// Import reads ledger rows from a CSV or XLSX file. Any invalid row rejects the whole
// file. Rows already in the ledger are skipped; dues rows carrying a token are linked.
func (s *LedgerService) Import(ctx context.Context, r io.Reader, format string) (*ImportResult, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(format) {
	case ImportFormatCSV:
		records, err = readCSV(r)
	case ImportFormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, NewAppError("format impor tidak didukung: %q", format)
	}
	if err != nil {
		return nil, err
	}

	rows, err := parseImportRecords(records)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	result, err := s.appendImported(ctx, rows)
	if err != nil {
		return nil, err
	}
	logger.Info("Ledger import finished", "format", format, "imported", result.Imported, "skipped", result.Skipped, "dues", result.Dues)
	return result, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewAppError("file CSV tidak dapat dibaca: %v", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewAppError("file XLSX tidak dapat dibaca: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func parseImportRecords(records [][]string) ([]models.Transaction, error) {
	if len(records) == 0 {
		return nil, nil
	}

	columns := defaultImportColumns
	start := 0
	if header, ok := importHeader(records[0]); ok {
		columns = header
		start = 1
	}

	rows := make([]models.Transaction, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		record := records[i]
		if blankRecord(record) {
			continue
		}
		tx, err := parseImportRow(record, columns)
		if err != nil {
			var appErr *AppError
			if errors.As(err, &appErr) {
				return nil, NewAppError("baris %d: %s", i+1, appErr.Message)
			}
			return nil, err
		}
		rows = append(rows, *tx)
	}
	return rows, nil
}

func importHeader(record []string) (map[string]int, bool) {
	columns := make(map[string]int)
	for i, cell := range record {
		if field, ok := importHeaderAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			columns[field] = i
		}
	}
	for _, field := range []string{"date", "type", "amount"} {
		if _, ok := columns[field]; !ok {
			return nil, false
		}
	}
	return columns, true
}

func parseImportRow(record []string, columns map[string]int) (*models.Transaction, error) {
	cell := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseImportDate(cell("date"))
	if err != nil {
		return nil, err
	}
	amount, err := parseRupiah(cell("amount"))
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Date:        date,
		Type:        normalizeType(cell("type")),
		Category:    cell("category"),
		Description: cell("description"),
		Amount:      amount,
	}
	if tx.Category == "" {
		tx.Category = "Lainnya"
	}
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	if key, ok := tx.DuesLink(); ok {
		tx.LinkedKey = &key
	}
	return tx, nil
}

func parseImportDate(v string) (string, error) {
	for _, layout := range []string{models.DateLayout, "02/01/2006", "2/1/2006", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(models.DateLayout), nil
		}
	}
	return "", NewAppError("tanggal tidak valid: %q", v)
}

// parseRupiah accepts "150000", "150.000" and "Rp 150.000"
func parseRupiah(v string) (int64, error) {
	cleaned := strings.NewReplacer("Rp", "", "rp", "", ".", "", ",", "", " ", "").Replace(v)
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return 0, NewAppError("jumlah tidak valid: %q", v)
	}
	return n, nil
}

func normalizeType(v string) string {
	switch strings.ToLower(v) {
	case "income", "pemasukan", "masuk":
		return models.TransactionTypeIncome
	case "expense", "pengeluaran", "keluar":
		return models.TransactionTypeExpense
	}
	return strings.ToLower(v)
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
