package bond

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// yieldFlows times the flows paid after settle on the bond basis. Time
// accrues period by period, so ACT/ACT ICMA counts each full coupon period
// as exactly 1/frequency.
func yieldFlows(cfs []Cashflow, settle time.Time, bt *Type) []pricer.TimedFlow {
	var out []pricer.TimedFlow
	t := 0.0
	var lastEnd time.Time
	for _, cf := range cfs {
		if !cf.Date.After(settle) {
			continue
		}
		if !cf.AccrualEnd.Equal(lastEnd) {
			start := cf.AccrualStart
			if start.Before(settle) {
				start = settle
			}
			if cf.AccrualEnd.After(start) {
				t += dates.YearFractionInPeriod(start, cf.AccrualEnd, cf.RefStart, cf.RefEnd, bt.Frequency, bt.DayCount)
			}
			lastEnd = cf.AccrualEnd
		}
		if cf.Amount() == 0 {
			continue
		}
		out = append(out, pricer.TimedFlow{T: t, Amount: cf.Amount()})
	}
	return out
}

// irrFlows times the flows paid after settle on ACT/365F.
func irrFlows(cfs []Cashflow, settle time.Time) []pricer.TimedFlow {
	var out []pricer.TimedFlow
	for _, cf := range cfs {
		if cf.Date.After(settle) && cf.Amount() != 0 {
			out = append(out, pricer.TimedFlow{T: dates.YearFraction(settle, cf.Date, dates.ACT365F), Amount: cf.Amount()})
		}
	}
	return out
}

// accrued returns the interest accrued at settle per 100 face.
func accrued(b *Bond, cfs []Cashflow, settle time.Time) float64 {
	if b.Coupon == nil {
		return 0
	}
	bt := b.Type
	for _, cf := range cfs {
		if cf.Coupon == 0 {
			continue
		}
		if !cf.AccrualStart.After(settle) && settle.Before(cf.AccrualEnd) {
			return *b.Coupon * 100 * dates.YearFractionInPeriod(cf.AccrualStart, settle, cf.RefStart, cf.RefEnd, bt.Frequency, bt.accrualDayCount())
		}
	}
	return 0
}

// ForwardYieldResult is the output of ForwardYield. Prices are per 100.
type ForwardYieldResult struct {
	ForwardYield    float64
	InvoicePrice    float64
	AccruedInterest float64
}

// ForwardYield solves the bond yield at a futures delivery date from the
// futures price: the invoice price is futures price times conversion
// factor plus accrued interest at delivery.
func (p *Pricer) ForwardYield(delivery time.Time, futuresPrice, conversionFactor float64) (ForwardYieldResult, error) {
	if delivery.IsZero() {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: delivery date is required")
	}
	if conversionFactor <= 0 {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: conversion factor must be positive")
	}
	flows := yieldFlows(p.flows, delivery, p.bond.Type)
	if len(flows) == 0 {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: %s has no flows after %s", p.bond.Name, dates.Format(delivery))
	}
	ai := accrued(p.bond, p.flows, delivery)
	invoice := futuresPrice*conversionFactor + ai
	y, err := pricer.SolveYield(flows, invoice, int(p.bond.Type.Frequency))
	if err != nil {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: %w", err)
	}
	return ForwardYieldResult{ForwardYield: y, InvoicePrice: invoice, AccruedInterest: ai}, nil
}
