package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/services"
	"github.com/sjperalta/komplek-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type testAPI struct {
	router *gin.Engine
	repos  *repository.Repositories
	svcs   *services.Services
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := repository.NewRepositories(storage.NewMemoryStore())
	cfg := &config.Config{ClosingPolicy: config.ClosingPolicySticky}
	svcs := services.NewServices(repos, nil, cfg, nil, func() time.Time { return testNow })

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), NewHandlers(svcs))
	return &testAPI{router: router, repos: repos, svcs: svcs}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (a *testAPI) seedResidents(t *testing.T, residents ...models.Resident) {
	t.Helper()
	require.NoError(t, a.repos.Resident.ReplaceAll(context.Background(), residents))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, models.DuesModeLocal, body["dues_mode"])
}

func TestLedgerHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"transaction": map[string]interface{}{
			"date": "2026-10-03", "type": "expense", "category": "Kebersihan", "description": "Angkut sampah", "amount": 75000,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Transaction models.Transaction `json:"transaction"`
	}
	decode(t, w, &created)
	id := created.Transaction.ID
	require.NotEmpty(t, id)

	w = api.do(http.MethodPut, "/api/v1/transactions/"+id, map[string]interface{}{
		"date": "2026-10-03", "type": "expense", "category": "Kebersihan", "amount": 80000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/transactions?type=expense", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Transactions []models.Transaction `json:"transactions"`
		Totals       models.Totals        `json:"totals"`
	}
	decode(t, w, &list)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, int64(80000), list.Totals.Expense)

	w = api.do(http.MethodDelete, "/api/v1/transactions/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/v1/transactions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerHandler_Rejections(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"zero amount", map[string]interface{}{"date": "2026-10-03", "type": "expense", "category": "Kebersihan", "amount": 0}, http.StatusBadRequest},
		{"bad type", map[string]interface{}{"date": "2026-10-03", "type": "transfer", "category": "Kebersihan", "amount": 10}, http.StatusBadRequest},
		{"dues entry", map[string]interface{}{"date": "2026-10-01", "type": "income", "category": "Iuran", "description": "[DUES:2026-10:7]", "amount": 10}, http.StatusConflict},
		{"broken json", `{"date":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/v1/transactions", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLedgerHandler_ImportAndExport(t *testing.T) {
	api := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "kas.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Tanggal,Jenis,Kategori,Keterangan,Jumlah\n" +
		"2026-10-01,Pemasukan,Iuran,Iuran 2026-10 - Budi [DUES:2026-10:7],150000\n" +
		"2026-10-02,Pengeluaran,Kebersihan,Sapu,25000\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.ImportResult
	decode(t, w, &result)
	assert.Equal(t, services.ImportResult{Imported: 2, Dues: 1}, result)

	payments, err := api.repos.DuesPayment.FindAll(context.Background())
	require.NoError(t, err)
	assert.True(t, payments.IsPaid("2026-10", "7"))

	w = api.do(http.MethodGet, "/api/v1/transactions/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=transaksi_2026-10-16.csv", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Body.String(), "Sapu")

	w = api.do(http.MethodGet, "/api/v1/transactions/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerHandler_ImportRequiresFile(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/transactions/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuesHandler_Flow(t *testing.T) {
	api := newTestAPI(t)
	api.seedResidents(t,
		models.Resident{ID: "7", Nama: "Budi", Status: models.ResidentStatusActive},
		models.Resident{ID: "8", Nama: "Sari"},
	)

	w := api.do(http.MethodPost, "/api/v1/dues/generate", map[string]interface{}{"amount": 150000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/dues/generate", map[string]interface{}{"amount": 200000})
	assert.Equal(t, http.StatusConflict, w.Code)

	// numeric ids are accepted as sent by older roster exports
	w = api.do(http.MethodPost, "/api/v1/dues/mark", `{"warga_id": 7, "paid": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var status models.DuesStatus
	decode(t, w, &status)
	assert.Equal(t, "2026-10", status.Period)
	assert.Equal(t, []models.ResidentRef{{ID: "7", Nama: "Budi"}}, status.Paid)
	assert.Equal(t, []models.ResidentRef{{ID: "8", Nama: "Sari"}}, status.Pending)
	assert.False(t, status.Closed)

	w = api.do(http.MethodPost, "/api/v1/dues/mark", map[string]interface{}{"warga_id": "8", "paid": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &status)
	assert.True(t, status.Closed)

	w = api.do(http.MethodPost, "/api/v1/dues/update-nominal", map[string]interface{}{"periode": "2026-10", "amount": 175000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, float64(2), updated["updated_entries"])

	w = api.do(http.MethodGet, "/api/v1/analytics/totals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var totals models.Totals
	decode(t, w, &totals)
	assert.Equal(t, int64(350000), totals.Income)

	w = api.do(http.MethodGet, "/api/v1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notices struct {
		Notifications []models.Notification `json:"notifications"`
	}
	decode(t, w, &notices)
	require.Len(t, notices.Notifications, 1)
	assert.Equal(t, models.NotificationTypeMonthClosed, notices.Notifications[0].Type)

	w = api.do(http.MethodPost, "/api/v1/notifications/"+notices.Notifications[0].ID+"/mark_as_read", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/v1/notifications/missing/mark_as_read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuesHandler_MarkValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/dues/mark", map[string]interface{}{"warga_id": "7"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "paid is required")

	w = api.do(http.MethodPost, "/api/v1/dues/mark", map[string]interface{}{"warga_id": "7", "paid": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/dues/status?periode=Oktober", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuesHandler_Mode(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/dues/mode", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode":"local"}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/dues/mode/reset", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"report": map[string]interface{}{
			"title":        "Laporan Oktober",
			"period_start": "2026-10-01",
			"period_end":   "2026-10-31",
			"snapshot": map[string]interface{}{
				"date": "2026-10-01", "type": "income", "category": "Saldo Awal", "amount": 1000000,
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Report models.Report `json:"report"`
	}
	decode(t, w, &created)
	assert.Equal(t, int64(1000000), created.Report.Totals.Income)

	w = api.do(http.MethodGet, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/reports/"+created.Report.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	txs, err := api.repos.Ledger.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)

	w = api.do(http.MethodGet, "/api/v1/reports/"+created.Report.ID+"/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResidentHandler_Replace(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPut, "/api/v1/residents", `[{"id":1,"nama":"Ani"},{"id":"2","nama":"Budi","status":"inactive"}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/residents?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Residents []models.Resident `json:"residents"`
	}
	decode(t, w, &body)
	require.Len(t, body.Residents, 1)
	assert.Equal(t, models.ResidentID("1"), body.Residents[0].ID)

	w = api.do(http.MethodPut, "/api/v1/residents", map[string]interface{}{
		"residents": []map[string]string{{"id": "1", "nama": "Ani"}, {"id": "1", "nama": "Ani lagi"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsHandler_Endpoints(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.repos.Ledger.SaveAll(context.Background(), []models.Transaction{
		{ID: "a", Date: "2026-10-05", Type: "income", Category: "Donasi", Amount: 100},
		{ID: "b", Date: "2026-10-05", Type: "expense", Category: "Perbaikan", Amount: 400},
	}))

	for _, path := range []string{"summary", "totals", "daily", "anomalies", "insights"} {
		w := api.do(http.MethodGet, "/api/v1/analytics/"+path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := api.do(http.MethodGet, "/api/v1/analytics/anomalies", nil)
	var body struct {
		Anomalies []models.Anomaly `json:"anomalies"`
	}
	decode(t, w, &body)
	require.Len(t, body.Anomalies, 1)
	assert.Equal(t, models.AnomalyWarning, body.Anomalies[0].Level)
}

func TestJobHandler_WithoutWorker(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/jobs/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"workers":0}`, w.Body.String())
}
