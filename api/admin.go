package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parcel-shipping-service/shipments/exports"
	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/receipts"
	"parcel-shipping-service/shipments/repositories"
	"parcel-shipping-service/shipments/services"
)

func (s *Server) createShipment(c *gin.Context) {
	var in services.CreateShipmentInput
	if !s.bind(c, &in) {
		return
	}

	res, err := s.service.Create(c.Request.Context(), operatorFrom(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listShipments(c *gin.Context) {
	f, ok := listFilter(c)
	if !ok {
		return
	}

	shipments, total, err := s.service.List(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"shipments": shipments,
		"total":     total,
		"offset":    f.Offset,
	})
}

func listFilter(c *gin.Context) (repositories.ListFilter, bool) {
	f := repositories.ListFilter{
		Status: models.ShipmentStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	if f.Status != "" && !f.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return f, false
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, true
}

func (s *Server) getShipment(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	shipment, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipment":    shipment,
		"phase_index": shipment.Status.PhaseIndex(),
	})
}

func (s *Server) updateShipment(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	var patch services.ShipmentPatch
	if !s.bind(c, &patch) {
		return
	}

	res, err := s.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) deleteShipment(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) shipmentEvents(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	events, err := s.service.Events(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if events == nil {
		events = []models.TrackingEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// receipt renders into a buffer first so a failed render never sends a partial document.
func (s *Server) receipt(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "html")
	if format != "html" && format != "pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be html or pdf"})
		return
	}

	shipment, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	r := receipts.Build(shipment)
	var buf bytes.Buffer

	if format == "pdf" {
		if err := receipts.RenderPDF(&buf, r, s.now()); err != nil {
			s.writeError(c, fmt.Errorf("failed to render pdf receipt: %w", err))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, shipment.TrackingNumber))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return
	}

	if err := receipts.RenderHTML(&buf, r); err != nil {
		s.writeError(c, fmt.Errorf("failed to render html receipt: %w", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) regenerateTrackingNumber(c *gin.Context) {
	id, ok := s.shipmentID(c)
	if !ok {
		return
	}

	shipment, err := s.service.RegenerateTrackingNumber(c.Request.Context(), id, operatorFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": shipment})
}

func (s *Server) recentEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := s.service.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if events == nil {
		events = []models.TrackingEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) stats(c *gin.Context) {
	counts, err := s.service.Stats(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	byStatus := make(map[models.ShipmentStatus]int64, len(models.Statuses))
	for _, st := range models.Statuses {
		byStatus[st] = 0
	}
	var total int64
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
		total += sc.Count
	}

	body := gin.H{"total": total, "by_status": byStatus}
	if s.sweeps != nil {
		body["overdue"] = s.sweeps.LastSweep()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) exportShipments(c *gin.Context) {
	f, ok := listFilter(c)
	if !ok {
		return
	}

	shipments, err := s.service.Export(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := exports.WriteShipments(&buf, shipments); err != nil {
		s.writeError(c, fmt.Errorf("failed to write export: %w", err))
		return
	}

	filename := fmt.Sprintf("shipments-%s.xlsx", s.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
