package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parcel-shipping-service/shipments/fees"
	"parcel-shipping-service/shipments/models"
)

func (s *Server) track(c *gin.Context) {
	view, err := s.service.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// quote prices a prospective shipment: ?weight=&service_type=&insurance=
func (s *Server) quote(c *gin.Context) {
	serviceType := models.ServiceType(c.DefaultQuery("service_type", string(models.ServiceStandard)))
	if !serviceType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service type"})
		return
	}

	insurance, _ := strconv.ParseBool(c.Query("insurance"))
	q := fees.Calculate(fees.ParseWeight(c.Query("weight")), serviceType, insurance)

	c.JSON(http.StatusOK, gin.H{
		"quote": q,
		"display": gin.H{
			"shipping_fee":     fees.Display(q.ShippingFee),
			"insurance_amount": fees.Display(q.InsuranceAmount),
			"total":            fees.Display(q.Total),
		},
	})
}
