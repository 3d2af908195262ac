// Package receipts renders the printable hand-off document for one shipment.
package receipts

import (
	"strconv"

	"github.com/shopspring/decimal"

	"parcel-shipping-service/shipments/models"
)

type Line struct {
	Label string
	Value string
}

type Block struct {
	Title string
	Lines []Line
}

// Receipt is the fully formatted text of a shipment receipt. Building it is deterministic.
type Receipt struct {
	TrackingNumber string
	Status         string
	IssuedOn       string
	Blocks         []Block
	Total          string
}

func Build(s *models.Shipment) Receipt {
	money := func(d decimal.Decimal) string {
		return FormatCurrency(decimal.NewNullDecimal(d))
	}
	insured := "No"
	if s.Insurance {
		insured = "Yes"
	}

	return Receipt{
		TrackingNumber: s.TrackingNumber,
		Status:         s.Status.Label(),
		IssuedOn:       FormatTimestamp(s.CreatedAt),
		Total:          money(s.TotalAmount),
		Blocks: []Block{
			{
				Title: "Sender",
				Lines: []Line{
					{"Name", orNA(s.SenderName)},
					{"Email", orNA(s.SenderEmail)},
					{"Phone", orNA(s.SenderPhone)},
					{"Address", orNA(s.SenderAddress)},
				},
			},
			{
				Title: "Receiver",
				Lines: []Line{
					{"Name", orNA(s.ReceiverName)},
					{"Email", orNA(s.ReceiverEmail)},
					{"Phone", orNA(s.ReceiverPhone)},
					{"Address", orNA(s.ReceiverAddress)},
				},
			},
			{
				Title: "Package",
				Lines: []Line{
					{"Description", orNA(s.Description)},
					{"Weight", s.Weight.String() + " kg"},
					{"Quantity", strconv.Itoa(s.Quantity)},
				},
			},
			{
				Title: "Shipping Information",
				Lines: []Line{
					{"Service Type", TitleCase(string(s.ServiceType))},
					{"Status", s.Status.Label()},
					{"Current Location", orNA(s.CurrentLocation)},
					{"Sending Date", FormatDate(s.SendingDate)},
					{"Expected Delivery", FormatDate(s.ExpectedDeliveryDate)},
					{"Insurance", insured},
					{"Special Instructions", orNA(s.SpecialInstructions)},
				},
			},
			{
				Title: "Payment",
				Lines: []Line{
					{"Shipping Fee", money(s.ShippingFee)},
					{"Insurance", money(s.InsuranceAmount)},
					{"Total", money(s.TotalAmount)},
					{"Payment Method", TitleCase(string(s.PaymentMethod))},
					{"Payment Status", TitleCase(string(s.PaymentStatus))},
				},
			},
		},
	}
}
