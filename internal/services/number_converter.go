package services

import (
	"strconv"
	"strings"
)

// Terbilang spells a rupiah amount in Indonesian words, as printed on receipts and reports.
// Example: 150000 -> "SERATUS LIMA PULUH RIBU RUPIAH"
func Terbilang(amount int64) string {
	if amount == 0 {
		return "NOL RUPIAH"
	}
	return strings.ToUpper(spell(amount)) + " RUPIAH"
}

func spell(n int64) string {
	if n < 0 {
		return "minus " + spell(-n)
	}

	switch {
	case n < 10:
		return digits[n]
	case n == 10:
		return "sepuluh"
	case n == 11:
		return "sebelas"
	case n < 20:
		return digits[n-10] + " belas"
	case n < 100:
		return joinWords(digits[n/10]+" puluh", n%10)
	case n < 200:
		return joinWords("seratus", n-100)
	case n < 1000:
		return joinWords(digits[n/100]+" ratus", n%100)
	case n < 2000:
		return joinWords("seribu", n-1000)
	}

	for _, s := range scales {
		if n >= s.value {
			return joinWords(spell(n/s.value)+" "+s.name, n%s.value)
		}
	}
	return strconv.FormatInt(n, 10)
}

func joinWords(head string, rest int64) string {
	if rest == 0 {
		return head
	}
	return head + " " + spell(rest)
}

var digits = []string{
	"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan",
}

var scales = []struct {
	value int64
	name  string
}{
	{1_000_000_000_000, "triliun"},
	{1_000_000_000, "miliar"},
	{1_000_000, "juta"},
	{1_000, "ribu"},
}

// FormatRupiah renders an amount with dot thousand separators: 1500000 -> "Rp 1.500.000"
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}
