package availability

import (
	"context"
	"testing"
	"time"

	bookingRepo "homely/database/repository/booking"
	"homely/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) GetSchedule(ctx context.Context, providerID string) (*models.WeeklySchedule, error) {
	args := m.Called(ctx, providerID)
	if s := args.Get(0); s != nil {
		return s.(*models.WeeklySchedule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScheduleRepo) UpsertSchedule(ctx context.Context, schedule *models.WeeklySchedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *mockScheduleRepo) AddException(ctx context.Context, providerID string, entry models.ExceptionEntry) error {
	return m.Called(ctx, providerID, entry).Error(0)
}

func (m *mockScheduleRepo) RemoveException(ctx context.Context, providerID, date string) error {
	return m.Called(ctx, providerID, date).Error(0)
}

func (m *mockScheduleRepo) ListExceptions(ctx context.Context, providerID, from, to string) ([]models.ExceptionEntry, error) {
	args := m.Called(ctx, providerID, from, to)
	if e := args.Get(0); e != nil {
		return e.([]models.ExceptionEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScheduleRepo) EnsureIndexes() error {
	return m.Called().Error(0)
}

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingStore) ListForProviderDay(ctx context.Context, providerID, date string, statuses []string) ([]models.Booking, error) {
	args := m.Called(ctx, providerID, date, statuses)
	if b := args.Get(0); b != nil {
		return b.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingStore) CreateHoldingCapacity(ctx context.Context, booking *models.Booking, loc bookingRepo.WindowLocator) error {
	return m.Called(ctx, booking, loc).Error(0)
}

func (m *mockBookingStore) AppendStatus(ctx context.Context, bookingID, expectedStatus string, event models.StatusEvent, actualDuration int) error {
	return m.Called(ctx, bookingID, expectedStatus, event, actualDuration).Error(0)
}

func (m *mockBookingStore) ReleaseCapacity(ctx context.Context, loc bookingRepo.WindowLocator) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *mockBookingStore) ListPendingOlderThan(ctx context.Context, cutoffUnix int64) ([]models.Booking, error) {
	args := m.Called(ctx, cutoffUnix)
	if b := args.Get(0); b != nil {
		return b.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingStore) EnsureIndexes() error {
	return m.Called().Error(0)
}

// fixedClock pins "now" to a Monday evening so test dates are always in the
// near future.
var testNow = time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func scheduleWithWindows(providerID string, day time.Weekday, windows ...models.TimeWindow) *models.WeeklySchedule {
	s := &models.WeeklySchedule{ProviderID: providerID, MaxAdvanceBooking: 30}
	s.Days.SetDay(day, models.DaySchedule{IsAvailable: true, TimeSlots: windows})
	return s
}

func newTestService(repo *mockScheduleRepo, bookings *mockBookingStore) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{Repo: repo, BookingRepo: bookings, Clock: fixedClock}
}

func TestGetAvailabilityMaterializesDefault(t *testing.T) {
	repo := new(mockScheduleRepo)
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(nil, nil)
	repo.On("UpsertSchedule", mock.Anything, mock.AnythingOfType("*models.WeeklySchedule")).Return(nil)

	svc := newTestService(repo, new(mockBookingStore))
	schedule, err := svc.GetAvailability(context.Background(), "prov-1")

	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, "prov-1", schedule.ProviderID)
	assert.True(t, schedule.Days.Day(time.Monday).IsAvailable)
	assert.True(t, schedule.Days.Day(time.Friday).IsAvailable)
	assert.False(t, schedule.Days.Day(time.Saturday).IsAvailable)
	assert.False(t, schedule.Days.Day(time.Sunday).IsAvailable)
	repo.AssertCalled(t, "UpsertSchedule", mock.Anything, mock.AnythingOfType("*models.WeeklySchedule"))
}

func TestUpdateWeeklyScheduleRejectsOverlap(t *testing.T) {
	repo := new(mockScheduleRepo)
	existing := scheduleWithWindows("prov-1", time.Monday,
		models.TimeWindow{ID: "w1", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(existing, nil)

	var days models.WeekSchedule
	days.SetDay(time.Monday, models.DaySchedule{
		IsAvailable: true,
		TimeSlots: []models.TimeWindow{
			{StartTime: "09:00", EndTime: "12:00"},
			{StartTime: "11:00", EndTime: "15:00"},
		},
	})

	svc := newTestService(repo, new(mockBookingStore))
	_, err := svc.UpdateWeeklySchedule(context.Background(), "prov-1", ScheduleUpdate{Days: &days})

	var invalid *InvalidScheduleError
	require.ErrorAs(t, err, &invalid)
	repo.AssertNotCalled(t, "UpsertSchedule", mock.Anything, mock.Anything)
}

func TestUpdateWeeklyScheduleAcceptsLegacyPayload(t *testing.T) {
	repo := new(mockScheduleRepo)
	existing := scheduleWithWindows("prov-1", time.Monday,
		models.TimeWindow{ID: "w1", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(existing, nil)
	repo.On("UpsertSchedule", mock.Anything, mock.AnythingOfType("*models.WeeklySchedule")).Return(nil)

	svc := newTestService(repo, new(mockBookingStore))
	updated, err := svc.UpdateWeeklySchedule(context.Background(), "prov-1", ScheduleUpdate{
		LegacyDays: models.LegacyDaySchedule{
			"tuesday": {{Start: "10:00", End: "14:00", IsActive: true}},
		},
	})

	require.NoError(t, err)
	tuesday := updated.Days.Day(time.Tuesday)
	require.Len(t, tuesday.TimeSlots, 1)
	assert.True(t, tuesday.IsAvailable)
	assert.NotEmpty(t, tuesday.TimeSlots[0].ID)
	assert.False(t, updated.Days.Day(time.Monday).IsAvailable, "legacy payload replaces the whole week")
}

func TestResolveDayExceptionPrecedence(t *testing.T) {
	base := func() *models.WeeklySchedule {
		return scheduleWithWindows("prov-1", time.Tuesday,
			models.TimeWindow{ID: "w1", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
	}
	// 2026-09-08 is a Tuesday.
	const date = "2026-09-08"

	t.Run("unavailable exception blocks the day", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		s := base()
		s.Exceptions = []models.ExceptionEntry{{Date: date, Type: models.ExceptionUnavailable, Reason: "holiday"}}
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

		resolved, err := newTestService(repo, new(mockBookingStore)).ResolveDay(context.Background(), "prov-1", date)
		require.NoError(t, err)
		assert.True(t, resolved.Unavailable)
		assert.Empty(t, resolved.Windows)
	})

	t.Run("custom hours replace weekly windows entirely", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		s := base()
		s.Exceptions = []models.ExceptionEntry{{
			Date: date, Type: models.ExceptionCustomHours,
			CustomHours: []models.TimeWindow{{ID: "x1", StartTime: "12:00", EndTime: "15:00", MaxConcurrentBookings: 1}},
		}}
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

		resolved, err := newTestService(repo, new(mockBookingStore)).ResolveDay(context.Background(), "prov-1", date)
		require.NoError(t, err)
		assert.False(t, resolved.Unavailable)
		require.Len(t, resolved.Windows, 1)
		assert.Equal(t, "x1", resolved.Windows[0].ID)
		assert.Equal(t, date, resolved.ExceptionDate)
	})

	t.Run("special pricing leaves availability untouched", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		s := base()
		s.Exceptions = []models.ExceptionEntry{{Date: date, Type: models.ExceptionSpecialPricing}}
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

		resolved, err := newTestService(repo, new(mockBookingStore)).ResolveDay(context.Background(), "prov-1", date)
		require.NoError(t, err)
		assert.False(t, resolved.Unavailable)
		require.Len(t, resolved.Windows, 1)
		assert.Equal(t, "w1", resolved.Windows[0].ID)
		assert.Empty(t, resolved.ExceptionDate)
	})

	t.Run("weekly unavailable day without exception", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(base(), nil)

		// 2026-09-09 is a Wednesday, not configured.
		resolved, err := newTestService(repo, new(mockBookingStore)).ResolveDay(context.Background(), "prov-1", "2026-09-09")
		require.NoError(t, err)
		assert.True(t, resolved.Unavailable)
	})
}

func TestGetAvailableSlotsFiltersBookedTimes(t *testing.T) {
	repo := new(mockScheduleRepo)
	s := scheduleWithWindows("prov-1", time.Tuesday,
		models.TimeWindow{ID: "m", StartTime: "09:00", EndTime: "12:00", MaxConcurrentBookings: 1},
		models.TimeWindow{ID: "a", StartTime: "13:00", EndTime: "17:00", MaxConcurrentBookings: 1},
	)
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

	bookings := new(mockBookingStore)
	bookings.On("ListForProviderDay", mock.Anything, "prov-1", "2026-09-08", models.ActiveStatuses()).
		Return([]models.Booking{
			{ID: "b1", Start: 600, End: 660, Status: models.BookingConfirmed}, // 10:00-11:00
		}, nil)

	svc := newTestService(repo, bookings)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 60)

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00", "13:00", "14:00", "15:00", "16:00"}, slots)
}

func TestGetAvailableSlotsOffersSlotRightAfterBooking(t *testing.T) {
	repo := new(mockScheduleRepo)
	// CurrentBookings reflects the hold taken by the existing booking.
	s := scheduleWithWindows("prov-1", time.Tuesday,
		models.TimeWindow{ID: "d", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1, CurrentBookings: 1})
	s.BufferTime = 15 // policy metadata, not applied between offered slots
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

	bookings := new(mockBookingStore)
	bookings.On("ListForProviderDay", mock.Anything, "prov-1", "2026-09-08", models.ActiveStatuses()).
		Return([]models.Booking{
			{ID: "b1", Start: 540, End: 600, Status: models.BookingConfirmed}, // 09:00-10:00
		}, nil)

	svc := newTestService(repo, bookings)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 60)

	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "10:00", slots[0])
}

func TestGetAvailableSlotsWideWindowWithHeldBooking(t *testing.T) {
	repo := new(mockScheduleRepo)
	// One booking in a two-hour window increments the occupancy counter to
	// the concurrency limit; the remaining hour must still be offered.
	s := scheduleWithWindows("prov-1", time.Tuesday,
		models.TimeWindow{ID: "w", StartTime: "09:00", EndTime: "11:00", MaxConcurrentBookings: 1, CurrentBookings: 1})
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

	bookings := new(mockBookingStore)
	bookings.On("ListForProviderDay", mock.Anything, "prov-1", "2026-09-08", models.ActiveStatuses()).
		Return([]models.Booking{
			{ID: "b1", Start: 540, End: 600, Status: models.BookingConfirmed}, // 09:00-10:00
		}, nil)

	svc := newTestService(repo, bookings)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 60)

	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, slots)
}

func TestGetAvailableSlotsEmptyCases(t *testing.T) {
	t.Run("exception-blocked date yields empty list, not error", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		s := scheduleWithWindows("prov-1", time.Tuesday,
			models.TimeWindow{ID: "w", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
		s.Exceptions = []models.ExceptionEntry{{Date: "2026-09-08", Type: models.ExceptionUnavailable}}
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

		slots, err := newTestService(repo, new(mockBookingStore)).
			GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 60)
		require.NoError(t, err)
		assert.Equal(t, []string{}, slots)
	})

	t.Run("date beyond the advance horizon yields empty list", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		s := scheduleWithWindows("prov-1", time.Tuesday,
			models.TimeWindow{ID: "w", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
		s.MaxAdvanceBooking = 7
		repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

		// A Tuesday more than 7 days past testNow.
		slots, err := newTestService(repo, new(mockBookingStore)).
			GetAvailableSlots(context.Background(), "prov-1", "2026-10-06", 60)
		require.NoError(t, err)
		assert.Equal(t, []string{}, slots)
	})

	t.Run("non-positive duration yields empty list", func(t *testing.T) {
		slots, err := newTestService(new(mockScheduleRepo), new(mockBookingStore)).
			GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{}, slots)
	})
}

func TestGetAvailableSlotsHonorsMinNotice(t *testing.T) {
	repo := new(mockScheduleRepo)
	s := scheduleWithWindows("prov-1", time.Tuesday,
		models.TimeWindow{ID: "w", StartTime: "09:00", EndTime: "17:00", MaxConcurrentBookings: 1})
	s.MinNoticeTime = 18 // hours; testNow is Monday 18:00, so Tuesday before 12:00 is too soon
	repo.On("GetSchedule", mock.Anything, "prov-1").Return(s, nil)

	bookings := new(mockBookingStore)
	bookings.On("ListForProviderDay", mock.Anything, "prov-1", "2026-09-08", models.ActiveStatuses()).
		Return([]models.Booking{}, nil)

	svc := newTestService(repo, bookings)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", "2026-09-08", 60)

	require.NoError(t, err)
	assert.Equal(t, []string{"12:00", "13:00", "14:00", "15:00", "16:00"}, slots)
}

func TestCheckSlotAvailability(t *testing.T) {
	repo := new(mockScheduleRepo)
	bookings := new(mockBookingStore)
	bookings.On("ListForProviderDay", mock.Anything, "prov-1", "2026-09-08", models.ActiveStatuses()).
		Return([]models.Booking{
			{ID: "b1", Start: 600, End: 660, Status: models.BookingConfirmed},
			{ID: "b2", Start: 630, End: 690, Status: models.BookingPending},
		}, nil)

	svc := newTestService(repo, bookings)

	t.Run("overlapping interval reports conflicts", func(t *testing.T) {
		result, err := svc.CheckSlotAvailability(context.Background(), "prov-1", "2026-09-08", "10:30", "11:30")
		require.NoError(t, err)
		assert.False(t, result.IsAvailable)
		assert.Equal(t, 2, result.ConflictingBookings)
	})

	t.Run("touching interval is free", func(t *testing.T) {
		result, err := svc.CheckSlotAvailability(context.Background(), "prov-1", "2026-09-08", "11:30", "12:30")
		require.NoError(t, err)
		assert.True(t, result.IsAvailable)
		assert.Zero(t, result.ConflictingBookings)
	})

	t.Run("inverted interval is rejected", func(t *testing.T) {
		_, err := svc.CheckSlotAvailability(context.Background(), "prov-1", "2026-09-08", "12:00", "11:00")
		assert.Error(t, err)
	})
}

func TestAddExceptionValidatesFirst(t *testing.T) {
	repo := new(mockScheduleRepo)
	svc := newTestService(repo, new(mockBookingStore))

	err := svc.AddException(context.Background(), "prov-1", models.ExceptionEntry{
		Date: "2026-09-08", Type: "long_weekend",
	})

	var invalid *InvalidScheduleError
	require.ErrorAs(t, err, &invalid)
	repo.AssertNotCalled(t, "AddException", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyNoticeFilterMovesWithTheClock(t *testing.T) {
	// Same slot list, two read times. A cached list computed in the morning
	// must not resurface near slots when read again later in the day.
	day := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	slots := []string{"09:00", "11:00", "13:00", "15:00"}

	morning := time.Date(2026, 9, 8, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"09:00", "11:00", "13:00", "15:00"},
		applyNoticeFilter(slots, day, 2, morning))

	noon := time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"15:00"}, applyNoticeFilter(slots, day, 2, noon))

	t.Run("zero notice keeps future slots only", func(t *testing.T) {
		got := applyNoticeFilter(slots, day, 0, noon)
		assert.Equal(t, []string{"13:00", "15:00"}, got)
	})

	t.Run("empty list stays empty", func(t *testing.T) {
		assert.Empty(t, applyNoticeFilter(nil, day, 2, noon))
	})
}
