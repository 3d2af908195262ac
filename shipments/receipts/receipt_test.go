package receipts

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-shipping-service/shipments/fees"
	"parcel-shipping-service/shipments/models"
)

func sampleShipment() *models.Shipment {
	sending := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	s := &models.Shipment{
		TrackingNumber:  "SL202412310001",
		SenderName:      "Ada Obi",
		SenderEmail:     "ada@example.com",
		SenderAddress:   "1 Marina, Lagos",
		ReceiverName:    "Kwame Mensah",
		ReceiverEmail:   "kwame@example.com",
		ReceiverAddress: "5 Oxford St, Accra",
		Description:     "Documents",
		Weight:          decimal.NewFromInt(10),
		Quantity:        2,
		ServiceType:     models.ServiceExpress,
		Insurance:       true,
		PaymentMethod:   models.PaymentBankTransfer,
		PaymentStatus:   models.PaymentPartial,
		Status:          models.StatusInTransit,
		CurrentLocation: "Accra",
		SendingDate:     &sending,
		CreatedAt:       time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
	}
	fees.Apply(s)
	return s
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, Undeclared, FormatCurrency(decimal.NullDecimal{}))
	assert.Equal(t, Undeclared, FormatCurrency(decimal.NewNullDecimal(decimal.Zero)))
	assert.Equal(t, "$435.00", FormatCurrency(decimal.NewNullDecimal(decimal.NewFromInt(435))))
	assert.Equal(t, "$1,234,567.89", FormatCurrency(decimal.NewNullDecimal(decimal.RequireFromString("1234567.891"))))
	assert.Equal(t, "$102.99", FormatCurrency(decimal.NewNullDecimal(decimal.RequireFromString("102.992"))))
	assert.Equal(t, "$1,000.00", FormatCurrency(decimal.NewNullDecimal(decimal.NewFromInt(1000))))
	assert.Equal(t, "-$2,500.50", FormatCurrency(decimal.NewNullDecimal(decimal.RequireFromString("-2500.5"))))
}

func TestFormatDateIgnoresViewerTimezone(t *testing.T) {
	assert.Equal(t, "Dec 31, 2024", FormatDateString("2024-12-31T10:00:00Z"))
	assert.Equal(t, "Dec 31, 2024", FormatDateString("2024-12-31T23:30:00-05:00"))
	assert.Equal(t, "Jan 1, 2025", FormatDateString("2025-01-01"))
	assert.Equal(t, NotApplicable, FormatDateString(""))
	assert.Equal(t, NotApplicable, FormatDateString("someday"))

	lagos := time.FixedZone("WAT", 3600)
	late := time.Date(2024, 12, 31, 23, 30, 0, 0, lagos)
	assert.Equal(t, "Dec 31, 2024", FormatDate(&late))
	assert.Equal(t, NotApplicable, FormatDate(nil))
}

func TestIssuedOnUsesUTCDay(t *testing.T) {
	s := sampleShipment()
	// 23:30 UTC on Dec 31, read back by a driver in a zone two hours ahead
	s.CreatedAt = time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC).In(time.FixedZone("EET", 2*3600))

	assert.Equal(t, "Dec 31, 2024", Build(s).IssuedOn)
	assert.Equal(t, NotApplicable, FormatTimestamp(time.Time{}))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Bank Transfer", TitleCase("bank_transfer"))
	assert.Equal(t, "Overnight", TitleCase("overnight"))
	assert.Equal(t, "Mobile Money", TitleCase("MOBILE_MONEY"))
	assert.Equal(t, NotApplicable, TitleCase(""))
}

func TestBuild(t *testing.T) {
	r := Build(sampleShipment())

	assert.Equal(t, "SL202412310001", r.TrackingNumber)
	assert.Equal(t, "In Transit", r.Status)
	assert.Equal(t, "Dec 31, 2024", r.IssuedOn)
	assert.Equal(t, "$485.00", r.Total)

	titles := make([]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Sender", "Receiver", "Package", "Shipping Information", "Payment"}, titles)

	payment := r.Blocks[4].Lines
	assert.Equal(t, Line{"Shipping Fee", "$435.00"}, payment[0])
	assert.Equal(t, Line{"Insurance", "$50.00"}, payment[1])
	assert.Equal(t, Line{"Payment Method", "Bank Transfer"}, payment[3])

	shipping := r.Blocks[3].Lines
	assert.Equal(t, Line{"Service Type", "Express"}, shipping[0])
	assert.Equal(t, Line{"Sending Date", "Dec 31, 2024"}, shipping[3])
	assert.Equal(t, Line{"Expected Delivery", NotApplicable}, shipping[4])
	assert.Equal(t, Line{"Phone", NotApplicable}, r.Blocks[0].Lines[2])
}

func TestBuildUninsuredShowsUndeclared(t *testing.T) {
	s := sampleShipment()
	s.Insurance = false
	fees.Apply(s)

	r := Build(s)
	assert.Equal(t, Line{"Insurance", Undeclared}, r.Blocks[4].Lines[1])
}

func TestRenderHTMLIsIdempotent(t *testing.T) {
	s := sampleShipment()

	var first, second bytes.Buffer
	require.NoError(t, RenderHTML(&first, Build(s)))
	require.NoError(t, RenderHTML(&second, Build(s)))

	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), `<div class="tracking" id="tracking-number">SL202412310001</div>`)
	assert.Contains(t, first.String(), "$485.00")
}

func TestRenderHTMLEscapes(t *testing.T) {
	s := sampleShipment()
	s.SpecialInstructions = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, Build(s)))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestRenderPDF(t *testing.T) {
	s := sampleShipment()
	s.ReceiverAddress = "Rue de l'Église, Cotonou"

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, Build(s), s.CreatedAt))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}
