package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

func TestCalculatePricing(t *testing.T) {
	tests := []struct {
		name    string
		service Service
		want    Pricing
	}{
		{
			name:    "no deposit",
			service: Service{Price: 100},
			want:    Pricing{ServicePrice: 100, PlatformFee: 1, TotalAmount: 101},
		},
		{
			name:    "fee rounded to cents",
			service: Service{Price: 33.33},
			want:    Pricing{ServicePrice: 33.33, PlatformFee: 0.33, TotalAmount: 33.66},
		},
		{
			name:    "fixed deposit wins over percentage",
			service: Service{Price: 200, RequiresDeposit: true, DepositAmount: ptr.Ptr(50.0), DepositPercentage: ptr.Ptr(10.0)},
			want:    Pricing{ServicePrice: 200, PlatformFee: 2, TotalAmount: 202, DepositAmount: 50},
		},
		{
			name:    "percentage deposit",
			service: Service{Price: 80, RequiresDeposit: true, DepositPercentage: ptr.Ptr(25.0)},
			want:    Pricing{ServicePrice: 80, PlatformFee: 0.8, TotalAmount: 80.8, DepositAmount: 20},
		},
		{
			name:    "deposit configured but not required",
			service: Service{Price: 80, DepositAmount: ptr.Ptr(30.0)},
			want:    Pricing{ServicePrice: 80, PlatformFee: 0.8, TotalAmount: 80.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePricing(&tt.service)
			assert.InDelta(t, tt.want.ServicePrice, got.ServicePrice, 0.001)
			assert.InDelta(t, tt.want.PlatformFee, got.PlatformFee, 0.001)
			assert.InDelta(t, tt.want.TotalAmount, got.TotalAmount, 0.001)
			assert.InDelta(t, tt.want.DepositAmount, got.DepositAmount, 0.001)
		})
	}
}

func TestCalculateRefund_Tiers(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	business := &Business{CancellationHours: 24, RefundPercentage: 50}
	paid := &Appointment{TotalPaid: 120, PaidAt: ptr.Ptr(now.Add(-time.Hour))}

	tests := []struct {
		name       string
		hoursUntil int
		wantPct    int
		wantAmount float64
	}{
		{name: "48h full refund", hoursUntil: 48, wantPct: 100, wantAmount: 120},
		{name: "exactly cancellation threshold", hoursUntil: 24, wantPct: 100, wantAmount: 120},
		{name: "10h partial refund", hoursUntil: 10, wantPct: 50, wantAmount: 60},
		{name: "exactly 4h partial refund", hoursUntil: 4, wantPct: 50, wantAmount: 60},
		{name: "2h no refund", hoursUntil: 2, wantPct: 0, wantAmount: 0},
		{name: "already started", hoursUntil: -1, wantPct: 0, wantAmount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startsAt := now.Add(time.Duration(tt.hoursUntil) * time.Hour)
			got := CalculateRefund(paid, business, startsAt, now)

			assert.Equal(t, tt.wantPct, got.RefundPercentage)
			assert.InDelta(t, tt.wantAmount, got.RefundAmount, 0.001)
			assert.InDelta(t, float64(tt.hoursUntil), got.HoursUntil, 0.001)
			assert.Equal(t, tt.wantPct > 0, got.Eligible)
		})
	}
}

func TestCalculateRefund_UnpaidHasNoAmount(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	business := &Business{CancellationHours: 24, RefundPercentage: 50}

	got := CalculateRefund(&Appointment{TotalPaid: 0}, business, now.Add(48*time.Hour), now)

	assert.Equal(t, 100, got.RefundPercentage)
	assert.Zero(t, got.RefundAmount)
}
