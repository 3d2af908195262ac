// Package fees derives shipping and insurance charges for a shipment.
package fees

import (
	"github.com/shopspring/decimal"

	"parcel-shipping-service/shipments/models"
)

var (
	BaseFee         = decimal.NewFromInt(95)
	RatePerKg       = decimal.NewFromInt(20)
	InsuranceAmount = decimal.NewFromInt(50)
)

var multipliers = map[models.ServiceType]decimal.Decimal{
	models.ServiceStandard:  decimal.RequireFromString("1.2"),
	models.ServiceExpress:   decimal.RequireFromString("1.7"),
	models.ServicePriority:  decimal.RequireFromString("2.5"),
	models.ServiceOvernight: decimal.RequireFromString("3.9"),
}

// Quote is the unrounded fee breakdown for one shipment.
type Quote struct {
	Weight          decimal.Decimal    `json:"weight"`
	ServiceType     models.ServiceType `json:"service_type"`
	Multiplier      decimal.Decimal    `json:"multiplier"`
	ShippingFee     decimal.Decimal    `json:"shipping_fee"`
	Insurance       bool               `json:"insurance"`
	InsuranceAmount decimal.Decimal    `json:"insurance_amount"`
	Total           decimal.Decimal    `json:"total"`
}

// Multiplier returns the rate multiplier for a service type, 1 when unrecognised.
func Multiplier(t models.ServiceType) decimal.Decimal {
	if m, ok := multipliers[t]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Calculate computes base + weight*rate*multiplier plus the flat insurance add-on.
// Negative weight counts as zero.
func Calculate(weight decimal.Decimal, serviceType models.ServiceType, insurance bool) Quote {
	if weight.IsNegative() {
		weight = decimal.Zero
	}
	m := Multiplier(serviceType)
	fee := BaseFee.Add(weight.Mul(RatePerKg).Mul(m))

	ins := decimal.Zero
	if insurance {
		ins = InsuranceAmount
	}

	return Quote{
		Weight:          weight,
		ServiceType:     serviceType,
		Multiplier:      m,
		ShippingFee:     fee,
		Insurance:       insurance,
		InsuranceAmount: ins,
		Total:           fee.Add(ins),
	}
}

// ParseWeight reads a user supplied weight, treating blanks and garbage as zero.
func ParseWeight(raw string) decimal.Decimal {
	w, err := decimal.NewFromString(raw)
	if err != nil || w.IsNegative() {
		return decimal.Zero
	}
	return w
}

// Apply stores the quote for s's current weight, service and insurance flag on s.
func Apply(s *models.Shipment) Quote {
	q := Calculate(s.Weight, s.ServiceType, s.Insurance)
	s.ShippingFee = q.ShippingFee
	s.InsuranceAmount = q.InsuranceAmount
	s.TotalAmount = q.Total
	return q
}

// Display renders an amount rounded to two decimals.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
