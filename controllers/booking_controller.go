package controllers

import (
	"errors"
	"net/http"

	"meeting-backend/middleware"
	"meeting-backend/services"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Service  *services.BookingService
	Notifier *services.Notifier
}

func NewBookingController(service *services.BookingService, notifier *services.Notifier) *BookingController {
	return &BookingController{Service: service, Notifier: notifier}
}

// bookingErrorResponse maps validator errors onto the HTTP taxonomy:
// conflicts are 409, verification is 403, bad input 400.
func bookingErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "account not verified; booking is not allowed yet"})
	case errors.Is(err, services.ErrOwnOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": "you already have an overlapping booking request"})
	case errors.Is(err, services.ErrRoomOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": "the room is already requested or booked in that time range"})
	case errors.Is(err, services.ErrScheduleConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "the room has a class scheduled in that slot"})
	case errors.Is(err, services.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, services.ErrRoomInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is inactive"})
	case errors.Is(err, services.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "start time must be before end time"})
	case errors.Is(err, services.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "attendees exceed room capacity"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// POST /api/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	booking, err := bc.Service.CreateBooking(user, input)
	if err != nil {
		bookingErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings
func (bc *BookingController) GetBookings(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bookings, err := bc.Service.ListForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GET /api/bookings/:id
func (bc *BookingController) GetBooking(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := bc.Service.Get(user, id)
	if err != nil {
		bookingErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// PUT /api/bookings/:id — owner edits their own pending booking. The
// conflict checks run again against the new time range.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	booking, err := bc.Service.UpdateOwn(user, id, input)
	if err != nil {
		bookingErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DELETE /api/bookings/:id — owner cancels their own pending booking.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := bc.Service.CancelOwn(user, id)
	if err != nil {
		bookingErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /api/admin/bookings
func (bc *BookingController) GetAllBookings(c *gin.Context) {
	bookings, err := bc.Service.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

type statusPayload struct {
	Status string `json:"status"`
}

// PUT /api/admin/bookings/:id — staff/admin confirms or cancels. The
// outbound webhook fires after the transition and never blocks it.
func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	booking, err := bc.Service.UpdateStatus(user, id, payload.Status)
	if err != nil {
		bookingErrorResponse(c, err)
		return
	}

	bc.Notifier.BookingStatusChanged(booking)
	c.JSON(http.StatusOK, booking)
}
