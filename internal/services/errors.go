package services

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a business rejection whose message is safe to show to the user
type AppError struct {
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a 400 Bad Request rejection
func NewAppError(format string, args ...any) *AppError {
	return &AppError{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

// Common service errors
var (
	ErrNotFound              = &AppError{Message: "data tidak ditemukan", StatusCode: http.StatusNotFound}
	ErrInvalidAmount         = &AppError{Message: "nominal harus lebih dari 0", StatusCode: http.StatusBadRequest}
	ErrInvalidPeriod         = &AppError{Message: "periode harus berformat YYYY-MM", StatusCode: http.StatusBadRequest}
	ErrPeriodNotCurrent      = &AppError{Message: "iuran hanya dapat dibuat untuk bulan berjalan", StatusCode: http.StatusBadRequest}
	ErrDuesAlreadyConfigured = &AppError{Message: "iuran untuk periode ini sudah dibuat, gunakan ubah nominal untuk mengganti jumlahnya", StatusCode: http.StatusConflict}
	ErrDuesNotConfigured     = &AppError{Message: "iuran untuk periode ini belum dibuat", StatusCode: http.StatusConflict}
	ErrResidentNotFound      = &AppError{Message: "warga tidak ditemukan", StatusCode: http.StatusNotFound}
	ErrResidentInactive      = &AppError{Message: "warga tidak aktif", StatusCode: http.StatusConflict}
	ErrLinkedTransaction     = &AppError{Message: "transaksi iuran hanya dapat diubah melalui menu iuran", StatusCode: http.StatusConflict}
)

// StatusCode maps an error to the HTTP status a handler should answer with
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
