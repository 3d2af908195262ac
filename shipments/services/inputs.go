package services

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"parcel-shipping-service/shipments/models"
)

// CreateShipmentInput is what an operator submits from the create-shipment form.
type CreateShipmentInput struct {
	SenderName      string `json:"sender_name" binding:"required,max=120"`
	SenderEmail     string `json:"sender_email" binding:"omitempty,email"`
	SenderPhone     string `json:"sender_phone" binding:"max=40"`
	SenderAddress   string `json:"sender_address" binding:"required"`
	ReceiverName    string `json:"receiver_name" binding:"required,max=120"`
	ReceiverEmail   string `json:"receiver_email" binding:"required,email"`
	ReceiverPhone   string `json:"receiver_phone" binding:"max=40"`
	ReceiverAddress string `json:"receiver_address" binding:"required"`

	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight"`
	Quantity    int             `json:"quantity" binding:"omitempty,min=1"`

	ServiceType   models.ServiceType   `json:"service_type" binding:"required,oneof=standard express priority overnight"`
	Insurance     bool                 `json:"insurance"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer card mobile_money"`
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"omitempty,oneof=pending paid partial"`

	Status               models.ShipmentStatus `json:"status" binding:"omitempty,oneof=pending processing in_transit out_for_delivery delivered cancelled on_hold"`
	CurrentLocation      string                `json:"current_location" binding:"max=200"`
	SendingDate          string                `json:"sending_date"`
	ExpectedDeliveryDate string                `json:"expected_delivery_date"`
	SpecialInstructions  string                `json:"special_instructions"`
}

// ShipmentPatch is a partial admin edit; nil fields are left alone.
type ShipmentPatch struct {
	SenderName      *string `json:"sender_name" binding:"omitempty,min=1,max=120"`
	SenderEmail     *string `json:"sender_email" binding:"omitempty,email"`
	SenderPhone     *string `json:"sender_phone" binding:"omitempty,max=40"`
	SenderAddress   *string `json:"sender_address" binding:"omitempty,min=1"`
	ReceiverName    *string `json:"receiver_name" binding:"omitempty,min=1,max=120"`
	ReceiverEmail   *string `json:"receiver_email" binding:"omitempty,email"`
	ReceiverPhone   *string `json:"receiver_phone" binding:"omitempty,max=40"`
	ReceiverAddress *string `json:"receiver_address" binding:"omitempty,min=1"`

	Description *string          `json:"description"`
	Weight      *decimal.Decimal `json:"weight"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=1"`

	ServiceType   *models.ServiceType   `json:"service_type" binding:"omitempty,oneof=standard express priority overnight"`
	Insurance     *bool                 `json:"insurance"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer card mobile_money"`
	PaymentStatus *models.PaymentStatus `json:"payment_status" binding:"omitempty,oneof=pending paid partial"`

	Status               *models.ShipmentStatus `json:"status" binding:"omitempty,oneof=pending processing in_transit out_for_delivery delivered cancelled on_hold"`
	CurrentLocation      *string                `json:"current_location" binding:"omitempty,max=200"`
	SendingDate          *string                `json:"sending_date"`
	ExpectedDeliveryDate *string                `json:"expected_delivery_date"`
	SpecialInstructions  *string                `json:"special_instructions"`

	// EventDescription replaces the generated tracking event text.
	EventDescription *string `json:"event_description"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(JSONFieldName)
	return v
}

// JSONFieldName reports struct fields by their json name in validation errors.
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// parseDate keeps only the calendar date of "2006-01-02" or an RFC 3339 timestamp, so the
// stored day never shifts with the caller's timezone.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
