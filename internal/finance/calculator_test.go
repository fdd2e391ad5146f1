package finance

import (
	"math"
	"testing"
	"time"

	"microfin-backend/internal/domain/client"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestMonthlyPayment_ReferenceAmortization(t *testing.T) {
	// 100k at 12% over 12 months is the canonical reference value.
	got := Round2(MonthlyPayment(100000, 12, 12))
	if got != 8884.88 {
		t.Fatalf("MonthlyPayment(100000, 12, 12) = %v, want 8884.88", got)
	}
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	got := MonthlyPayment(100000, 0, 12)
	want := 100000.0 / 12
	if got != want {
		t.Fatalf("zero-rate payment = %v, want %v", got, want)
	}
}

func TestMonthlyPayment_ZeroTerm(t *testing.T) {
	if got := MonthlyPayment(100000, 12, 0); got != 0 {
		t.Fatalf("zero-term payment = %v, want 0", got)
	}
}

func TestTotalPayable_ConsistentWithInstallment(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{50000, 12, 12},
		{100000, 8.5, 24},
		{250000, 15, 36},
		{10000, 0, 10},
		{999999.99, 21.75, 60},
	}
	for _, tc := range cases {
		p := MonthlyPayment(tc.principal, tc.rate, tc.term)
		total := TotalPayable(tc.principal, tc.rate, tc.term)
		if !almostEqual(p*float64(tc.term), total, 0.01) {
			t.Errorf("(%v,%v,%d): installment*term=%v, total=%v", tc.principal, tc.rate, tc.term, p*float64(tc.term), total)
		}
		if tc.rate > 0 && total < tc.principal {
			t.Errorf("(%v,%v,%d): total payable %v below principal", tc.principal, tc.rate, tc.term, total)
		}
	}
}

func TestTotalInterest(t *testing.T) {
	got := Round2(TotalInterest(100000, 12, 12))
	if !almostEqual(got, 6618.55, 0.01) {
		t.Fatalf("TotalInterest(100000, 12, 12) = %v, want ~6618.55", got)
	}
	if got := TotalInterest(100000, 0, 12); !almostEqual(got, 0, 1e-9) {
		t.Fatalf("zero-rate interest = %v, want 0", got)
	}
}

func TestCommission(t *testing.T) {
	if got := Commission(50000); got != 1000 {
		t.Fatalf("Commission(50000) = %v, want 1000", got)
	}
}

func TestDebtToIncome(t *testing.T) {
	if got := DebtToIncome(4000, 10000); got != 40 {
		t.Fatalf("DTI(4000, 10000) = %v, want 40", got)
	}
	if got := DebtToIncome(4000, 0); !math.IsInf(got, 1) {
		t.Fatalf("DTI with zero income = %v, want +Inf", got)
	}
}

func TestMaxEligibleAmount(t *testing.T) {
	const absMax = 1_000_000
	tests := []struct {
		name       string
		income     float64
		employment client.EmploymentType
		years      int
		want       float64
	}{
		{"employed short tenure", 10000, client.Employed, 1, 150000},         // 10+5
		{"employed mid tenure", 10000, client.Employed, 3, 160000},           // 10+5+1
		{"employed long tenure", 10000, client.Employed, 6, 170000},          // 10+5+2
		{"self employed", 10000, client.SelfEmployed, 1, 100000},             // 10
		{"retired", 10000, client.Retired, 10, 70000},                        // 10-5+2
		{"unemployed", 10000, client.Unemployed, 10, 0},                      // hard zero
		{"capped at absolute max", 200000, client.Employed, 10, 1_000_000},   // 17x income > cap
		{"tenure boundary at 2y not counted", 10000, client.Employed, 2, 150000},
		{"tenure boundary at 5y counts mid", 10000, client.Employed, 5, 160000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MaxEligibleAmount(tc.income, tc.employment, tc.years, absMax)
			if got != tc.want {
				t.Fatalf("MaxEligibleAmount(%v, %s, %d) = %v, want %v", tc.income, tc.employment, tc.years, got, tc.want)
			}
		})
	}
}

func TestNextPaymentDate(t *testing.T) {
	from := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := NextPaymentDate(from); !got.Equal(want) {
		t.Fatalf("NextPaymentDate = %v, want %v", got, want)
	}
}

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysOverdue(due, due.AddDate(0, 0, -1)); got != 0 {
		t.Fatalf("not yet due: got %d, want 0", got)
	}
	if got := DaysOverdue(due, due.AddDate(0, 0, 5)); got != 5 {
		t.Fatalf("5 days late: got %d, want 5", got)
	}
	if got := DaysOverdue(time.Time{}, due); got != 0 {
		t.Fatalf("zero due date: got %d, want 0", got)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		8884.87626: 8884.88,
		1.005:      1.01,
		0:          0,
		-2.345:     -2.35,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}
