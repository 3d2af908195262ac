package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"parcel-shipping-service/notifications"
	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/receipts"
)

// Theme is what varies between shipment emails.
type Theme struct {
	Color   string
	Icon    string
	Heading string
	Intro   string
}

var (
	createdTheme = Theme{
		Color:   "#2563eb",
		Icon:    "📦",
		Heading: "Shipment Created",
		Intro:   "A new shipment has been registered for you. Keep your tracking number to follow it.",
	}
	updatedTheme = Theme{
		Color:   "#0ea5e9",
		Icon:    "🔔",
		Heading: "Shipment Update",
		Intro:   "There is new information about your shipment.",
	}
	statusThemes = map[models.ShipmentStatus]Theme{
		models.StatusPending: {
			Color: "#f59e0b", Icon: "⏳", Heading: "Shipment Pending",
			Intro: "Your shipment is registered and waiting to be processed.",
		},
		models.StatusProcessing: {
			Color: "#3b82f6", Icon: "⚙️", Heading: "Shipment Processing",
			Intro: "Your shipment is being prepared for dispatch.",
		},
		models.StatusInTransit: {
			Color: "#6366f1", Icon: "🚚", Heading: "Shipment In Transit",
			Intro: "Your shipment is on its way.",
		},
		models.StatusOutForDelivery: {
			Color: "#8b5cf6", Icon: "🛵", Heading: "Out for Delivery",
			Intro: "Your shipment is out for delivery and should arrive soon.",
		},
		models.StatusDelivered: {
			Color: "#10b981", Icon: "✅", Heading: "Shipment Delivered",
			Intro: "Your shipment has been delivered. Thank you for shipping with us.",
		},
		models.StatusCancelled: {
			Color: "#ef4444", Icon: "❌", Heading: "Shipment Cancelled",
			Intro: "Your shipment has been cancelled. Contact support if this is unexpected.",
		},
		models.StatusOnHold: {
			Color: "#f97316", Icon: "⏸️", Heading: "Shipment On Hold",
			Intro: "Your shipment is on hold. We will let you know as soon as it moves again.",
		},
	}
)

// ThemeFor picks the status theme, falling back to the generic update theme.
func ThemeFor(status models.ShipmentStatus) Theme {
	if t, ok := statusThemes[status]; ok {
		return t
	}
	return updatedTheme
}

// Email is a rendered message ready to be addressed.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

type shipmentView struct {
	Theme            Theme
	TrackingNumber   string
	Status           string
	Location         string
	EventDescription string
	Description      string
	Weight           string
	Quantity         int
	ServiceType      string
	ExpectedDelivery string
	ReceiverName     string
	ReceiverAddress  string
	TrackURL         string
	SupportEmail     string
	Year             int
}

type contactView struct {
	Name     string
	Email    string
	Subject  string
	Message  string
	Received string
}

var layout = template.Must(template.New("shipment").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f3f4f6;font-family:Arial,Helvetica,sans-serif;color:#111827">
<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;margin:24px 0">
<tr><td id="banner" style="background:{{.Theme.Color}};color:#ffffff;padding:24px;text-align:center">
<div style="font-size:36px">{{.Theme.Icon}}</div>
<h1 style="margin:8px 0 0">{{.Theme.Heading}}</h1>
</td></tr>
<tr><td style="padding:24px">
<p>Hello {{.ReceiverName}},</p>
<p>{{.Theme.Intro}}</p>
<div style="border:2px dashed {{.Theme.Color}};padding:16px;text-align:center;margin:16px 0">
<div style="font-size:12px;text-transform:uppercase;color:#6b7280">Tracking Number</div>
<div id="tracking-number" style="font-size:26px;font-weight:bold;letter-spacing:2px">{{.TrackingNumber}}</div>
</div>
<table id="status" width="100%" cellpadding="4">
<tr><td>Status</td><td class="status-value" style="font-weight:bold;color:{{.Theme.Color}}">{{.Status}}</td></tr>
{{if .Location}}<tr><td>Current Location</td><td class="location-value">{{.Location}}</td></tr>{{end}}
{{if .EventDescription}}<tr><td>Latest Update</td><td class="event-value">{{.EventDescription}}</td></tr>{{end}}
</table>
<h3>Package</h3>
<table id="package" width="100%" cellpadding="4">
<tr><td>Description</td><td>{{.Description}}</td></tr>
<tr><td>Weight</td><td>{{.Weight}}</td></tr>
<tr><td>Quantity</td><td>{{.Quantity}}</td></tr>
<tr><td>Service</td><td>{{.ServiceType}}</td></tr>
<tr><td>Expected Delivery</td><td>{{.ExpectedDelivery}}</td></tr>
</table>
<h3>Delivery Address</h3>
<p id="receiver">{{.ReceiverName}}<br>{{.ReceiverAddress}}</p>
<p style="text-align:center"><a id="track-link" href="{{.TrackURL}}" style="background:{{.Theme.Color}};color:#ffffff;padding:12px 24px;text-decoration:none">Track your shipment</a></p>
</td></tr>
<tr><td id="footer" style="background:#f9fafb;padding:16px;font-size:12px;color:#6b7280;text-align:center">
Questions? Contact us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a><br>
&copy; {{.Year}} Parcel Shipping
</td></tr>
</table>
</td></tr></table>
</body>
</html>`))

var contactLayout = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#111827">
<h2>New contact form message</h2>
<table cellpadding="4">
<tr><td>Name</td><td id="name">{{.Name}}</td></tr>
<tr><td>Email</td><td id="email">{{.Email}}</td></tr>
<tr><td>Subject</td><td id="subject">{{.Subject}}</td></tr>
<tr><td>Received</td><td>{{.Received}}</td></tr>
</table>
<div id="message" style="white-space:pre-wrap;border-top:1px solid #e5e7eb;padding-top:12px">{{.Message}}</div>
</body>
</html>`))

// Composer renders the service's emails.
type Composer struct {
	siteURL      string
	supportEmail string
	now          func() time.Time
}

func NewComposer(siteURL, supportEmail string) *Composer {
	return &Composer{
		siteURL:      strings.TrimRight(siteURL, "/"),
		supportEmail: supportEmail,
		now:          time.Now,
	}
}

func (c *Composer) ShipmentCreated(s *models.Shipment) (Email, error) {
	subject := fmt.Sprintf("Your shipment %s has been created", s.TrackingNumber)
	return c.shipment(subject, createdTheme, s, nil)
}

// ShipmentUpdated uses the status theme when the status changed and the generic theme otherwise.
func (c *Composer) ShipmentUpdated(s *models.Shipment, event *models.TrackingEvent, statusChanged bool) (Email, error) {
	if statusChanged {
		subject := fmt.Sprintf("Shipment %s: %s", s.TrackingNumber, s.Status.Label())
		return c.shipment(subject, ThemeFor(s.Status), s, event)
	}
	subject := fmt.Sprintf("Update on shipment %s", s.TrackingNumber)
	return c.shipment(subject, updatedTheme, s, event)
}

func (c *Composer) Contact(req notifications.ContactRequest) (Email, error) {
	view := contactView{
		Name:     req.Name,
		Email:    req.Email,
		Subject:  req.Subject,
		Message:  req.Message,
		Received: c.now().UTC().Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := contactLayout.Execute(&buf, view); err != nil {
		return Email{}, err
	}

	text := fmt.Sprintf("New contact form message\n\nName: %s\nEmail: %s\nSubject: %s\n\n%s\n",
		req.Name, req.Email, req.Subject, req.Message)

	return Email{
		Subject: "Contact form: " + req.Subject,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

func (c *Composer) shipment(subject string, theme Theme, s *models.Shipment, event *models.TrackingEvent) (Email, error) {
	view := c.view(theme, s, event)

	var buf bytes.Buffer
	if err := layout.Execute(&buf, view); err != nil {
		return Email{}, err
	}

	return Email{Subject: subject, HTML: buf.String(), Text: plainText(view)}, nil
}

func (c *Composer) view(theme Theme, s *models.Shipment, event *models.TrackingEvent) shipmentView {
	v := shipmentView{
		Theme:            theme,
		TrackingNumber:   s.TrackingNumber,
		Status:           s.Status.Label(),
		Location:         s.CurrentLocation,
		Description:      s.Description,
		Weight:           s.Weight.String() + " kg",
		Quantity:         s.Quantity,
		ServiceType:      receipts.TitleCase(string(s.ServiceType)),
		ExpectedDelivery: receipts.FormatDate(s.ExpectedDeliveryDate),
		ReceiverName:     s.ReceiverName,
		ReceiverAddress:  s.ReceiverAddress,
		TrackURL:         c.siteURL + "/track?number=" + url.QueryEscape(s.TrackingNumber),
		SupportEmail:     c.supportEmail,
		Year:             c.now().Year(),
	}
	if event != nil {
		v.EventDescription = event.Description
		if event.Location != "" {
			v.Location = event.Location
		}
	}
	if v.Description == "" {
		v.Description = receipts.NotApplicable
	}
	return v
}

func plainText(v shipmentView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", v.Theme.Heading)
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n", v.ReceiverName, v.Theme.Intro)
	fmt.Fprintf(&b, "Tracking number: %s\n", v.TrackingNumber)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	if v.Location != "" {
		fmt.Fprintf(&b, "Current location: %s\n", v.Location)
	}
	if v.EventDescription != "" {
		fmt.Fprintf(&b, "Latest update: %s\n", v.EventDescription)
	}
	fmt.Fprintf(&b, "\nTrack your shipment: %s\n", v.TrackURL)
	fmt.Fprintf(&b, "Questions? %s\n", v.SupportEmail)
	return b.String()
}
