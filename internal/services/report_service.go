package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/google/uuid"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

// ReportInput is the payload for creating a report
type ReportInput struct {
	Title       string              `json:"title" binding:"required"`
	PeriodStart string              `json:"period_start" binding:"required"`
	PeriodEnd   string              `json:"period_end" binding:"required"`
	Adjustments []models.Adjustment `json:"adjustments"`
	Snapshot    *TransactionInput   `json:"snapshot"`
	DuesPeriod  string              `json:"dues_period"`
}

// ReportService stores immutable ledger snapshots. Deleting a report rolls back the
// ledger entry and dues config it brought in, on a best-effort basis.
type ReportService struct {
	mu            sync.Mutex
	repo          repository.ReportRepository
	ledger        *LedgerService
	configs       *DuesConfigService
	notifications *NotificationService
	now           Clock
	renderPDF     func(html []byte) ([]byte, error)
}

func NewReportService(
	repo repository.ReportRepository,
	ledger *LedgerService,
	configs *DuesConfigService,
	notifications *NotificationService,
	now Clock,
) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		repo:          repo,
		ledger:        ledger,
		configs:       configs,
		notifications: notifications,
		now:           now,
		renderPDF:     htmlToPDF,
	}
}

// List returns reports newest first
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (s *ReportService) FindByID(ctx context.Context, id string) (*models.Report, error) {
	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create totals the ledger over the report range. A snapshot transaction is booked into
// the ledger and remembered for rollback.
func (s *ReportService) Create(ctx context.Context, input ReportInput) (*models.Report, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, NewAppError("judul laporan wajib diisi")
	}
	if !models.ValidDate(input.PeriodStart) || !models.ValidDate(input.PeriodEnd) {
		return nil, NewAppError("rentang tanggal laporan tidak valid")
	}
	if input.PeriodStart > input.PeriodEnd {
		return nil, NewAppError("tanggal awal laporan harus sebelum tanggal akhir")
	}
	if input.DuesPeriod != "" && !s.configs.Exists(ctx, input.DuesPeriod) {
		return nil, ErrDuesNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report := &models.Report{
		ID:          uuid.NewString(),
		Title:       title,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Adjustments: input.Adjustments,
		DuesPeriod:  input.DuesPeriod,
		CreatedAt:   s.now(),
	}

	if input.Snapshot != nil {
		tx, err := s.ledger.Create(ctx, *input.Snapshot)
		if err != nil {
			return nil, err
		}
		report.Snapshot = tx
		report.LinkedTransactionID = tx.ID
	}

	txs, err := s.ledger.List(ctx, models.TransactionFilter{From: input.PeriodStart, To: input.PeriodEnd})
	if err != nil {
		return nil, err
	}
	report.Totals = ComputeTotals(txs)

	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	reports = append(reports, *report)
	if err := s.repo.SaveAll(ctx, reports); err != nil {
		return nil, fmt.Errorf("failed to save reports: %w", err)
	}

	logger.Info("Report created", "report_id", report.ID, "title", report.Title, "snapshot", report.Snapshot != nil)
	return report, nil
}

// Delete removes the report, then tries to remove its snapshot transaction (by id, else by
// matching fields) and its dues config. Rollback misses are logged and the report is
// deleted anyway.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range reports {
		if reports[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	report := reports[idx]

	reports = append(reports[:idx], reports[idx+1:]...)
	if err := s.repo.SaveAll(ctx, reports); err != nil {
		return fmt.Errorf("failed to save reports: %w", err)
	}

	rolledBack := s.rollback(ctx, &report)
	logger.Info("Report deleted", "report_id", report.ID, "rolled_back", rolledBack)
	if len(rolledBack) > 0 {
		s.notifications.Notify(ctx, models.NotificationTypeRollback,
			"Laporan dihapus",
			fmt.Sprintf("Laporan %q dihapus, %s ikut dibatalkan.", report.Title, strings.Join(rolledBack, " dan ")))
	}
	return nil
}

func (s *ReportService) rollback(ctx context.Context, report *models.Report) []string {
	var done []string

	if report.LinkedTransactionID != "" || report.Snapshot != nil {
		removed, err := s.ledger.RemoveMatching(ctx, report.LinkedTransactionID, report.Snapshot)
		switch {
		case err != nil:
			logger.Error("Failed to roll back report transaction", "report_id", report.ID, "error", err)
		case !removed:
			logger.Warn("Report transaction not found, skipping rollback", "report_id", report.ID, "transaction_id", report.LinkedTransactionID)
		default:
			done = append(done, "transaksi terkait")
		}
	}

	if report.DuesPeriod != "" {
		deleted, err := s.configs.Delete(ctx, report.DuesPeriod)
		switch {
		case err != nil:
			logger.Error("Failed to roll back dues config", "report_id", report.ID, "period", report.DuesPeriod, "error", err)
		case !deleted:
			logger.Warn("Dues config not found, skipping rollback", "report_id", report.ID, "period", report.DuesPeriod)
		default:
			done = append(done, "konfigurasi iuran "+report.DuesPeriod)
		}
	}
	return done
}

// PDF renders the report through wkhtmltopdf
func (s *ReportService) PDF(ctx context.Context, id string) ([]byte, string, error) {
	report, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	html, err := renderReportHTML(report)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderPDF(html)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("laporan_%s_%s.pdf", report.PeriodStart, report.PeriodEnd)
	return pdf, filename, nil
}

func renderReportHTML(report *models.Report) ([]byte, error) {
	tmpl, err := template.ParseFS(reportTemplates, "templates/reports/financial_report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	type adjustmentRow struct {
		Label  string
		Amount string
	}
	rows := make([]adjustmentRow, 0, len(report.Adjustments))
	for _, a := range report.Adjustments {
		rows = append(rows, adjustmentRow{Label: a.Label, Amount: FormatRupiah(a.Amount)})
	}

	data := struct {
		Title           string
		PeriodStart     string
		PeriodEnd       string
		CreatedAt       string
		Income          string
		Expense         string
		Balance         string
		Count           int
		Adjustments     []adjustmentRow
		AdjustedBalance string
		BalanceWords    string
	}{
		Title:           report.Title,
		PeriodStart:     report.PeriodStart,
		PeriodEnd:       report.PeriodEnd,
		CreatedAt:       report.CreatedAt.Format("02/01/2006 15:04"),
		Income:          FormatRupiah(report.Totals.Income),
		Expense:         FormatRupiah(report.Totals.Expense),
		Balance:         FormatRupiah(report.Totals.Balance),
		Count:           report.Totals.Count,
		Adjustments:     rows,
		AdjustedBalance: FormatRupiah(report.AdjustedBalance()),
		BalanceWords:    Terbilang(report.AdjustedBalance()),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlToPDF(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
