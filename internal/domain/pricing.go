package domain

import "time"

// Pricing снимок цен записи
type Pricing struct {
	ServicePrice  float64
	PlatformFee   float64
	TotalAmount   float64
	DepositAmount float64
}

// CalculatePricing считает комиссию, итоговую сумму и депозит.
// Фиксированный депозит имеет приоритет над процентом от цены.
func CalculatePricing(s *Service) Pricing {
	fee := Round2(s.Price * PlatformFeeRate)
	p := Pricing{
		ServicePrice: s.Price,
		PlatformFee:  fee,
		TotalAmount:  Round2(s.Price + fee),
	}

	if !s.RequiresDeposit {
		return p
	}
	switch {
	case s.DepositAmount != nil:
		p.DepositAmount = Round2(*s.DepositAmount)
	case s.DepositPercentage != nil:
		p.DepositAmount = Round2(s.Price * *s.DepositPercentage / 100)
	}
	return p
}

// RefundBreakdown расчет возврата при отмене
type RefundBreakdown struct {
	HoursUntil       float64
	RefundPercentage int
	RefundAmount     float64
	Eligible         bool
}

// CalculateRefund считает возврат ступенчато по часам до визита:
// не меньше cancellationHours - полный возврат, не меньше PartialRefundMinHours - частичный, иначе ноль.
// Сумма считается только для оплаченных записей.
func CalculateRefund(a *Appointment, b *Business, startsAt, now time.Time) RefundBreakdown {
	hoursUntil := startsAt.Sub(now).Hours()

	var pct int
	switch {
	case hoursUntil >= float64(b.CancellationHours):
		pct = FullRefundPercentage
	case hoursUntil >= PartialRefundMinHours:
		pct = b.RefundPercentage
	default:
		pct = 0
	}

	var amount float64
	if a.IsPaid() {
		amount = Round2(a.TotalPaid * float64(pct) / 100)
	}

	return RefundBreakdown{
		HoursUntil:       hoursUntil,
		RefundPercentage: pct,
		RefundAmount:     amount,
		Eligible:         pct > 0,
	}
}
