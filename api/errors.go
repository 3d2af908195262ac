package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcel-shipping-service/shipments/services"
)

func (s *Server) writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, services.ErrShipmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
	case errors.Is(err, services.ErrTrackingNumber):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking number could not be generated, try again"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bind decodes the JSON body, answering 400 itself when it cannot.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verr *services.ValidationError
		if errors.As(services.FromBinding(err), &verr) {
			s.writeError(c, verr)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *Server) shipmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return uuid.Nil, false
	}
	return id, true
}
