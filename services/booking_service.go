// services/booking_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"meeting-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Booking validation errors. Controllers map these to HTTP status codes.
var (
	ErrRoomNotFound      = errors.New("room_not_found")
	ErrRoomInactive      = errors.New("room_inactive")
	ErrInvalidTimeRange  = errors.New("invalid_time_range")
	ErrCapacityExceeded  = errors.New("capacity_exceeded")
	ErrNotVerified       = errors.New("user_not_verified")
	ErrOwnOverlap        = errors.New("own_booking_overlap")
	ErrRoomOverlap       = errors.New("room_already_booked")
	ErrScheduleConflict  = errors.New("class_schedule_conflict")
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotOwner          = errors.New("not_booking_owner")
)

// BookingService เป็น wrapper รอบ *gorm.DB เพื่อแยก logic ของ booking
type BookingService struct {
	DB *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db}
}

type CreateBookingInput struct {
	Title     string    `json:"title"`
	RoomID    uint      `json:"room_id"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Attendees int       `json:"attendees"`
	Notes     string    `json:"notes"`
}

// expireStalePending lazily cancels the user's own pending bookings whose
// end time has already passed. Runs before the conflict check on every
// create, so there is no background sweep to schedule.
func (s *BookingService) expireStalePending(tx *gorm.DB, userID uint, now time.Time) error {
	return tx.Model(&models.Booking{}).
		Where("user_id = ? AND status = ? AND end_time < ?", userID, models.BookingPending, now).
		Update("status", models.BookingCancelled).Error
}

// checkOverlaps enforces the half-open interval rule: [s1,e1) and [s2,e2)
// conflict iff s1 < e2 AND e1 > s2. Equal endpoints never conflict, so
// back-to-back bookings are allowed.
func (s *BookingService) checkOverlaps(tx *gorm.DB, userID, roomID uint, start, end time.Time, excludeID uint) error {
	activeStatuses := []string{models.BookingPending, models.BookingConfirmed}

	// The caller's own pending/confirmed bookings, on any room.
	var ownCount int64
	q := tx.Model(&models.Booking{}).
		Where("user_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			userID, activeStatuses, end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&ownCount).Error; err != nil {
		return fmt.Errorf("failed to check own bookings: %w", err)
	}
	if ownCount > 0 {
		return ErrOwnOverlap
	}

	// Anyone else's pending/confirmed bookings on the same room.
	var roomCount int64
	q = tx.Model(&models.Booking{}).
		Where("room_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			roomID, activeStatuses, end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&roomCount).Error; err != nil {
		return fmt.Errorf("failed to check room bookings: %w", err)
	}
	if roomCount > 0 {
		return ErrRoomOverlap
	}

	// Fixed class schedules on the same room and weekday. Times of day are
	// "HH:MM" strings, which order correctly under string comparison.
	weekday := int(start.Weekday())
	startOfDay := start.Format("15:04")
	endOfDay := end.Format("15:04")

	var scheduleCount int64
	if err := tx.Model(&models.RoomSchedule{}).
		Where("room_id = ? AND day_of_week = ? AND start_time < ? AND end_time > ?",
			roomID, weekday, endOfDay, startOfDay).
		Count(&scheduleCount).Error; err != nil {
		return fmt.Errorf("failed to check room schedules: %w", err)
	}
	if scheduleCount > 0 {
		return ErrScheduleConflict
	}

	return nil
}

// CreateBooking validates and creates a pending booking for the user.
func (s *BookingService) CreateBooking(user *models.User, input CreateBookingInput) (models.Booking, error) {
	if !user.IsVerified() {
		return models.Booking{}, ErrNotVerified
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.Booking{}, errors.New("title_required")
	}
	if !input.EndTime.After(input.StartTime) {
		return models.Booking{}, ErrInvalidTimeRange
	}

	now := time.Now()
	if err := s.expireStalePending(s.DB, user.ID, now); err != nil {
		return models.Booking{}, fmt.Errorf("failed to expire stale bookings: %w", err)
	}

	var room models.Room
	if err := s.DB.First(&room, input.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrRoomNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load room: %w", err)
	}
	if room.Status != models.RoomStatusActive {
		return models.Booking{}, ErrRoomInactive
	}
	if input.Attendees < 1 {
		input.Attendees = 1
	}
	if input.Attendees > room.Capacity {
		return models.Booking{}, ErrCapacityExceeded
	}

	if err := s.checkOverlaps(s.DB, user.ID, room.ID, input.StartTime, input.EndTime, 0); err != nil {
		return models.Booking{}, err
	}

	booking := models.Booking{
		Title:     strings.TrimSpace(input.Title),
		RoomID:    room.ID,
		UserID:    user.ID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    models.BookingPending,
		Attendees: input.Attendees,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.DB.Create(&booking).Error; err != nil {
		return models.Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.Room = room
	return booking, nil
}

// UpdateOwn edits the caller's own pending booking and re-runs every
// conflict check. The booking's current slot is excluded so shrinking or
// shifting within it does not conflict with itself.
func (s *BookingService) UpdateOwn(user *models.User, bookingID uint, input CreateBookingInput) (models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != user.ID {
		return models.Booking{}, ErrNotOwner
	}
	if booking.Status != models.BookingPending {
		return models.Booking{}, ErrInvalidTransition
	}
	if !input.EndTime.After(input.StartTime) {
		return models.Booking{}, ErrInvalidTimeRange
	}

	roomID := booking.RoomID
	if input.RoomID != 0 {
		roomID = input.RoomID
	}
	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrRoomNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load room: %w", err)
	}
	if room.Status != models.RoomStatusActive {
		return models.Booking{}, ErrRoomInactive
	}
	attendees := input.Attendees
	if attendees < 1 {
		attendees = booking.Attendees
	}
	if attendees > room.Capacity {
		return models.Booking{}, ErrCapacityExceeded
	}

	if err := s.checkOverlaps(s.DB, user.ID, room.ID, input.StartTime, input.EndTime, booking.ID); err != nil {
		return models.Booking{}, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		booking.Title = title
	}
	booking.RoomID = room.ID
	booking.StartTime = input.StartTime
	booking.EndTime = input.EndTime
	booking.Attendees = attendees
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		booking.Notes = notes
	}
	if err := s.DB.Save(&booking).Error; err != nil {
		return models.Booking{}, fmt.Errorf("failed to update booking: %w", err)
	}

	booking.Room = room
	return booking, nil
}

// UpdateStatus transitions a booking to confirmed or cancelled on behalf
// of staff/admin and records who did it. A notification row is written for
// the booking owner.
func (s *BookingService) UpdateStatus(actor *models.User, bookingID uint, status string) (models.Booking, error) {
	if status != models.BookingConfirmed && status != models.BookingCancelled {
		return models.Booking{}, ErrInvalidTransition
	}

	var booking models.Booking
	if err := s.DB.Preload("Room").Preload("User").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load booking: %w", err)
	}

	switch {
	case booking.Status == models.BookingPending && status == models.BookingConfirmed:
		booking.Status = models.BookingConfirmed
		booking.ConfirmedBy = &actor.ID
	case (booking.Status == models.BookingPending || booking.Status == models.BookingConfirmed) &&
		status == models.BookingCancelled:
		booking.Status = models.BookingCancelled
		booking.CancelledBy = &actor.ID
	default:
		return models.Booking{}, ErrInvalidTransition
	}

	if err := s.DB.Omit(clause.Associations).Save(&booking).Error; err != nil {
		return models.Booking{}, fmt.Errorf("failed to update booking: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"room":       booking.Room.Name,
		"start_time": booking.StartTime,
		"end_time":   booking.EndTime,
		"changed_by": actor.ID,
	})
	notification := models.Notification{
		UserID:    booking.UserID,
		BookingID: &booking.ID,
		Type:      "booking_" + booking.Status,
		Message:   fmt.Sprintf("Booking '%s' has been %s", booking.Title, booking.Status),
		Payload:   datatypes.JSON(payload),
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		// audit side channel only, never fails the transition
		log.Printf("warning: failed to create notification: %v", err)
	}

	return booking, nil
}

// CancelOwn lets the owner cancel their own pending booking.
func (s *BookingService) CancelOwn(user *models.User, bookingID uint) (models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != user.ID {
		return models.Booking{}, ErrNotOwner
	}
	if booking.Status != models.BookingPending {
		return models.Booking{}, ErrInvalidTransition
	}

	booking.Status = models.BookingCancelled
	booking.CancelledBy = &user.ID
	if err := s.DB.Save(&booking).Error; err != nil {
		return models.Booking{}, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return booking, nil
}

// ListForUser returns the user's own bookings, newest first.
func (s *BookingService) ListForUser(userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.Preload("Room").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListAll returns every booking with room and user preloads.
func (s *BookingService) ListAll() ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.Preload("Room").Preload("User").
		Order("start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// Get returns one booking visible to the user (owner, or staff/admin).
func (s *BookingService) Get(user *models.User, bookingID uint) (models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("Room").Preload("User").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != user.ID && !user.CanManageBookings() {
		return models.Booking{}, ErrNotOwner
	}
	return booking, nil
}
