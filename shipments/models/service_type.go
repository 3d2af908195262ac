package models

// ServiceType is the delivery speed tier bought for a shipment.
type ServiceType string

const (
	ServiceStandard  ServiceType = "standard"
	ServiceExpress   ServiceType = "express"
	ServicePriority  ServiceType = "priority"
	ServiceOvernight ServiceType = "overnight"
)

// ServiceTypes lists the tiers in display order.
var ServiceTypes = []ServiceType{ServiceStandard, ServiceExpress, ServicePriority, ServiceOvernight}

func (t ServiceType) Valid() bool {
	for _, st := range ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)
