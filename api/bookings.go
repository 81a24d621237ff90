package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Pieces      int      `json:"pieces"`
	WeightKg    float64  `json:"weightKg"`
	FlightIDs   []string `json:"flightIds"`
}

type statusUpdateRequest struct {
	Location   string `json:"location"`
	FlightInfo string `json:"flightInfo"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:refId", h.get)
	router.PATCH("/:refId/depart", h.depart)
	router.PATCH("/:refId/arrive", h.arrive)
	router.PATCH("/:refId/deliver", h.deliver)
	router.PATCH("/:refId/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		Pieces:      req.Pieces,
		WeightKg:    req.WeightKg,
		FlightIDs:   req.FlightIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("refId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) depart(c *gin.Context) {
	h.update(c, h.service.Depart)
}

func (h *BookingHandler) arrive(c *gin.Context) {
	h.update(c, h.service.Arrive)
}

func (h *BookingHandler) deliver(c *gin.Context) {
	h.update(c, h.service.Deliver)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	h.update(c, func(ctx context.Context, refID string, _ booking.TransitionInput) (*domain.Booking, error) {
		return h.service.Cancel(ctx, refID)
	})
}

type transitionFunc func(ctx context.Context, refID string, input booking.TransitionInput) (*domain.Booking, error)

// update handles the status endpoints. The request body is optional.
func (h *BookingHandler) update(c *gin.Context, apply transitionFunc) {
	var req statusUpdateRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	updated, err := apply(c.Request.Context(), c.Param("refId"), booking.TransitionInput{
		Location:   req.Location,
		FlightInfo: req.FlightInfo,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}
