package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shipment is the single canonical shipment schema shared by tracking, admin, receipts and emails.
type Shipment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrackingNumber string    `gorm:"size:32;not null;uniqueIndex" json:"tracking_number"`

	SenderName     string `gorm:"size:120;not null" json:"sender_name"`
	SenderEmail    string `gorm:"size:254" json:"sender_email"`
	SenderPhone    string `gorm:"size:40" json:"sender_phone,omitempty"`
	SenderAddress  string `gorm:"type:text;not null" json:"sender_address"`

	ReceiverName    string `gorm:"size:120;not null" json:"receiver_name"`
	ReceiverEmail   string `gorm:"size:254" json:"receiver_email"`
	ReceiverPhone   string `gorm:"size:40" json:"receiver_phone,omitempty"`
	ReceiverAddress string `gorm:"type:text;not null" json:"receiver_address"`

	Description string          `gorm:"type:text" json:"description"`
	Weight      decimal.Decimal `gorm:"type:numeric;not null" json:"weight"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`

	ServiceType     ServiceType     `gorm:"size:20;not null" json:"service_type"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric;not null" json:"shipping_fee"`
	Insurance       bool            `gorm:"not null;default:false" json:"insurance"`
	InsuranceAmount decimal.Decimal `gorm:"type:numeric;not null" json:"insurance_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	PaymentMethod   PaymentMethod   `gorm:"size:20" json:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;not null;default:pending" json:"payment_status"`

	Status               ShipmentStatus `gorm:"size:20;not null;index" json:"status"`
	CurrentLocation      string         `gorm:"size:200" json:"current_location,omitempty"`
	SendingDate          *time.Time     `gorm:"type:date" json:"sending_date,omitempty"`
	ExpectedDeliveryDate *time.Time     `gorm:"type:date;index" json:"expected_delivery_date,omitempty"`
	SpecialInstructions  string         `gorm:"type:text" json:"special_instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `gorm:"size:100;index" json:"created_by"`

	Events []TrackingEvent `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Shipment) TableName() string {
	return "shipments"
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether an open shipment has passed its expected delivery date.
func (s *Shipment) IsOverdue(now time.Time) bool {
	if s.ExpectedDeliveryDate == nil || s.Status.IsFinal() {
		return false
	}
	due := s.ExpectedDeliveryDate.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
