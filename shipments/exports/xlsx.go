// Package exports writes shipment listings as spreadsheets for back-office use.
package exports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/receipts"
)

const sheetName = "Shipments"

var header = []any{
	"Tracking Number", "Status", "Current Location", "Sender", "Receiver", "Receiver Email",
	"Service Type", "Weight (kg)", "Quantity", "Shipping Fee", "Insurance", "Total",
	"Payment Method", "Payment Status", "Sending Date", "Expected Delivery", "Created At", "Created By",
}

// WriteShipments writes one row per shipment below a bold header row.
func WriteShipments(w io.Writer, shipments []models.Shipment) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last+"1", bold); err != nil {
		return err
	}

	for i, s := range shipments {
		weight, _ := s.Weight.Float64()
		fee, _ := s.ShippingFee.Float64()
		insurance, _ := s.InsuranceAmount.Float64()
		total, _ := s.TotalAmount.Float64()

		row := []any{
			s.TrackingNumber,
			s.Status.Label(),
			s.CurrentLocation,
			s.SenderName,
			s.ReceiverName,
			s.ReceiverEmail,
			receipts.TitleCase(string(s.ServiceType)),
			weight,
			s.Quantity,
			fee,
			insurance,
			total,
			receipts.TitleCase(string(s.PaymentMethod)),
			receipts.TitleCase(string(s.PaymentStatus)),
			receipts.FormatDate(s.SendingDate),
			receipts.FormatDate(s.ExpectedDeliveryDate),
			s.CreatedAt.UTC().Format("2006-01-02 15:04"),
			s.CreatedBy,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
