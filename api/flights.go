package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type routesQuery struct {
	Origin        string `form:"origin"`
	Destination   string `form:"destination"`
	DepartureDate string `form:"departureDate"`
}

type createFlightRequest struct {
	FlightID          string    `json:"flightId"`
	FlightNumber      string    `json:"flightNumber"`
	AirlineName       string    `json:"airlineName"`
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	DepartureDateTime time.Time `json:"departureDateTime"`
	ArrivalDateTime   time.Time `json:"arrivalDateTime"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/routes", h.routes)
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:flightId", h.get)
}

func (h *FlightHandler) routes(c *gin.Context) {
	var q routesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date time.Time
	if q.DepartureDate != "" {
		var err error
		date, err = parseDate(q.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.FindRoutes(c.Request.Context(), q.Origin, q.Destination, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoutesResponse(result))
}

// parseDate accepts YYYY-MM-DD (interpreted in UTC) or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid departureDate %q: expected YYYY-MM-DD", s)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateFlight(c.Request.Context(), flights.CreateFlightInput{
		FlightID:      req.FlightID,
		FlightNumber:  req.FlightNumber,
		AirlineName:   req.AirlineName,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureDateTime,
		ArrivalTime:   req.ArrivalDateTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*created))
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.ListFlights(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetFlight(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}
