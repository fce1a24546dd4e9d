package services

import (
	"testing"
	"time"

	"meeting-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestCreateBookingOverlapRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	owner := newTestUser(t, db, models.RoleUser, true)
	other := newTestUser(t, db, models.RoleUser, true)
	room := newTestRoom(t, db, "Room 5", "5", 10)
	otherRoom := newTestRoom(t, db, "Room 6", "6", 10)

	// Existing confirmed booking on room 5: [08:00, 12:00)
	existing := models.Booking{
		Title:     "Morning Workshop",
		RoomID:    room.ID,
		UserID:    owner.ID,
		StartTime: mustTime(t, "2030-01-10T08:00:00Z"),
		EndTime:   mustTime(t, "2030-01-10T12:00:00Z"),
		Status:    models.BookingConfirmed,
		Attendees: 4,
	}
	require.NoError(t, db.Create(&existing).Error)

	tests := []struct {
		name    string
		user    *models.User
		roomID  uint
		start   string
		end     string
		wantErr error
	}{
		{
			name:    "contained interval on same room conflicts",
			user:    other,
			roomID:  room.ID,
			start:   "2030-01-10T09:00:00Z",
			end:     "2030-01-10T11:00:00Z",
			wantErr: ErrRoomOverlap,
		},
		{
			name:    "straddling start conflicts",
			user:    other,
			roomID:  room.ID,
			start:   "2030-01-10T07:00:00Z",
			end:     "2030-01-10T08:30:00Z",
			wantErr: ErrRoomOverlap,
		},
		{
			name:   "back-to-back after is allowed",
			user:   other,
			roomID: room.ID,
			start:  "2030-01-10T12:00:00Z",
			end:    "2030-01-10T16:00:00Z",
		},
		{
			name:   "back-to-back before is allowed",
			user:   other,
			roomID: room.ID,
			start:  "2030-01-10T06:00:00Z",
			end:    "2030-01-10T08:00:00Z",
		},
		{
			name:    "owner gets own-overlap even on another room",
			user:    owner,
			roomID:  otherRoom.ID,
			start:   "2030-01-10T09:00:00Z",
			end:     "2030-01-10T10:00:00Z",
			wantErr: ErrOwnOverlap,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(tc.user, CreateBookingInput{
				Title:     "Meeting",
				RoomID:    tc.roomID,
				StartTime: mustTime(t, tc.start),
				EndTime:   mustTime(t, tc.end),
				Attendees: 2,
			})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateBookingScheduleConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	user := newTestUser(t, db, models.RoleStudent, true)
	room := newTestRoom(t, db, "Lecture Hall", "201", 40)

	// 2030-01-10 is a Thursday (weekday 4).
	require.NoError(t, db.Create(&models.RoomSchedule{
		RoomID:    room.ID,
		DayOfWeek: 4,
		StartTime: "09:00",
		EndTime:   "11:00",
		Subject:   "Data Structures",
	}).Error)

	_, err := svc.CreateBooking(user, CreateBookingInput{
		Title:     "Study Group",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-01-10T10:00:00Z"),
		EndTime:   mustTime(t, "2030-01-10T12:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrScheduleConflict)

	// Same times on a different weekday must pass (2030-01-11 is Friday).
	_, err = svc.CreateBooking(user, CreateBookingInput{
		Title:     "Study Group",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-01-11T10:00:00Z"),
		EndTime:   mustTime(t, "2030-01-11T12:00:00Z"),
	})
	assert.NoError(t, err)

	// Back-to-back with the class slot is allowed.
	_, err = svc.CreateBooking(user, CreateBookingInput{
		Title:     "Follow-up",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-01-10T11:00:00Z"),
		EndTime:   mustTime(t, "2030-01-10T12:00:00Z"),
	})
	assert.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	unverified := newTestUser(t, db, models.RoleUser, false)
	verified := newTestUser(t, db, models.RoleUser, true)
	room := newTestRoom(t, db, "Small Room", "101", 4)

	_, err := svc.CreateBooking(unverified, CreateBookingInput{
		Title:     "Meeting",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-03-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-03-01T10:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.CreateBooking(verified, CreateBookingInput{
		Title:     "Meeting",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-03-01T10:00:00Z"),
		EndTime:   mustTime(t, "2030-03-01T09:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.CreateBooking(verified, CreateBookingInput{
		Title:     "Big Meeting",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-03-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-03-01T10:00:00Z"),
		Attendees: 10,
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = svc.CreateBooking(verified, CreateBookingInput{
		Title:     "Meeting",
		RoomID:    999,
		StartTime: mustTime(t, "2030-03-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-03-01T10:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	require.NoError(t, db.Model(&models.Room{}).
		Where("id = ?", room.ID).
		Update("status", models.RoomStatusInactive).Error)
	_, err = svc.CreateBooking(verified, CreateBookingInput{
		Title:     "Meeting",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-03-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-03-01T10:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrRoomInactive)
}

func TestCreateBookingExpiresStalePending(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	user := newTestUser(t, db, models.RoleUser, true)
	room := newTestRoom(t, db, "Room A", "A1", 8)

	stale := models.Booking{
		Title:     "Old Request",
		RoomID:    room.ID,
		UserID:    user.ID,
		StartTime: time.Now().Add(-3 * time.Hour),
		EndTime:   time.Now().Add(-2 * time.Hour),
		Status:    models.BookingPending,
	}
	require.NoError(t, db.Create(&stale).Error)

	// The stale pending booking must not block a new one: it gets
	// auto-cancelled before the conflict check runs.
	_, err := svc.CreateBooking(user, CreateBookingInput{
		Title:     "New Request",
		RoomID:    room.ID,
		StartTime: time.Now().Add(1 * time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, stale.ID).Error)
	assert.Equal(t, models.BookingCancelled, reloaded.Status)
}

func TestUpdateOwnExcludesCurrentSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	owner := newTestUser(t, db, models.RoleUser, true)
	other := newTestUser(t, db, models.RoleUser, true)
	room := newTestRoom(t, db, "Edit Room", "E1", 8)

	booking, err := svc.CreateBooking(owner, CreateBookingInput{
		Title:     "Draft",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-04-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-04-01T11:00:00Z"),
	})
	require.NoError(t, err)

	// Shifting within the original slot must not conflict with itself.
	updated, err := svc.UpdateOwn(owner, booking.ID, CreateBookingInput{
		StartTime: mustTime(t, "2030-04-01T10:00:00Z"),
		EndTime:   mustTime(t, "2030-04-01T12:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2030-04-01T10:00:00Z"), updated.StartTime.UTC())

	// Moving onto someone else's slot still conflicts.
	_, err = svc.CreateBooking(other, CreateBookingInput{
		Title:     "Blocker",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-04-01T14:00:00Z"),
		EndTime:   mustTime(t, "2030-04-01T16:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateOwn(owner, booking.ID, CreateBookingInput{
		StartTime: mustTime(t, "2030-04-01T15:00:00Z"),
		EndTime:   mustTime(t, "2030-04-01T17:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrRoomOverlap)

	// Only the owner may edit, and only while pending.
	_, err = svc.UpdateOwn(other, booking.ID, CreateBookingInput{
		StartTime: mustTime(t, "2030-04-02T09:00:00Z"),
		EndTime:   mustTime(t, "2030-04-02T10:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	user := newTestUser(t, db, models.RoleUser, true)
	staff := newTestUser(t, db, models.RoleStaff, true)
	room := newTestRoom(t, db, "Room B", "B1", 8)

	booking, err := svc.CreateBooking(user, CreateBookingInput{
		Title:     "Planning",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-05-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-05-01T10:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)

	confirmed, err := svc.UpdateStatus(staff, booking.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, staff.ID, *confirmed.ConfirmedBy)

	// Owner gets a notification row.
	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "booking_confirmed", notifications[0].Type)

	// confirmed -> confirmed is invalid
	_, err = svc.UpdateStatus(staff, booking.ID, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// confirmed -> cancelled is allowed
	cancelled, err := svc.UpdateStatus(staff, booking.ID, models.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, staff.ID, *cancelled.CancelledBy)

	// cancelled is terminal
	_, err = svc.UpdateStatus(staff, booking.ID, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(staff, 999, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelOwn(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	owner := newTestUser(t, db, models.RoleUser, true)
	stranger := newTestUser(t, db, models.RoleUser, true)
	room := newTestRoom(t, db, "Room C", "C1", 8)

	booking, err := svc.CreateBooking(owner, CreateBookingInput{
		Title:     "Review",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-06-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-06-01T10:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.CancelOwn(stranger, booking.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	cancelled, err := svc.CancelOwn(owner, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	// Cancelling twice is an invalid transition.
	_, err = svc.CancelOwn(owner, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The freed slot can be booked again.
	_, err = svc.CreateBooking(stranger, CreateBookingInput{
		Title:     "Replacement",
		RoomID:    room.ID,
		StartTime: mustTime(t, "2030-06-01T09:00:00Z"),
		EndTime:   mustTime(t, "2030-06-01T10:00:00Z"),
	})
	assert.NoError(t, err)
}
