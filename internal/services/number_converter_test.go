package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerbilang(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "NOL RUPIAH"},
		{11, "SEBELAS RUPIAH"},
		{15, "LIMA BELAS RUPIAH"},
		{105, "SERATUS LIMA RUPIAH"},
		{1000, "SERIBU RUPIAH"},
		{150000, "SERATUS LIMA PULUH RIBU RUPIAH"},
		{2500000, "DUA JUTA LIMA RATUS RIBU RUPIAH"},
		{1001001, "SATU JUTA SERIBU SATU RUPIAH"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Terbilang(tt.amount), "amount %d", tt.amount)
	}
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 999", FormatRupiah(999))
	assert.Equal(t, "Rp 150.000", FormatRupiah(150000))
	assert.Equal(t, "Rp 1.500.000", FormatRupiah(1500000))
	assert.Equal(t, "-Rp 25.000", FormatRupiah(-25000))
}
