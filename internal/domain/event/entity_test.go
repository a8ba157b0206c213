package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	// Arrange
	date := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	path := "/qr-codes/abc-ticket.png"

	// Act
	e := NewEvent("Launch", "HQ", "g1", "rocket", date, "10:00:00", &path)

	// Assert
	assert.Equal(t, "Launch", e.Title)
	assert.Equal(t, "HQ", e.Place)
	assert.Equal(t, "g1", e.Gradient)
	assert.Equal(t, "rocket", e.Icon)
	assert.Equal(t, date, e.Date)
	assert.Equal(t, "10:00:00", e.Time)
	assert.Equal(t, StatusPending, e.Status)
	require.NotNil(t, e.QRCodePath)
	assert.Equal(t, path, *e.QRCodePath)
	assert.Nil(t, e.PhotoPath)
	assert.Zero(t, e.ID)
	assert.NotZero(t, e.CreatedAt)
}

func TestEvent_Validate(t *testing.T) {
	date := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := func() *Event { return NewEvent("Launch", "HQ", "g1", "rocket", date, "10:00:00", nil) }

	tests := []struct {
		name        string
		mutate      func(e *Event)
		expectedErr error
	}{
		{name: "有効なイベント", mutate: func(e *Event) {}},
		{name: "タイトルが空", mutate: func(e *Event) { e.Title = "" }, expectedErr: ErrMissingFields},
		{name: "場所が空", mutate: func(e *Event) { e.Place = "" }, expectedErr: ErrMissingFields},
		{name: "グラデーションが空", mutate: func(e *Event) { e.Gradient = "" }, expectedErr: ErrMissingFields},
		{name: "アイコンが空", mutate: func(e *Event) { e.Icon = "" }, expectedErr: ErrMissingFields},
		{name: "日付が未設定", mutate: func(e *Event) { e.Date = time.Time{} }, expectedErr: ErrMissingFields},
		{name: "時刻が空", mutate: func(e *Event) { e.Time = "" }, expectedErr: ErrMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_Classify(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want Filter
	}{
		{name: "昨日はprevious", date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), want: FilterPrevious},
		{name: "今日はupcoming", date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), want: FilterUpcoming},
		{name: "明日はupcoming", date: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), want: FilterUpcoming},
		{name: "遠い過去はprevious", date: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), want: FilterPrevious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{Date: tt.date}
			assert.Equal(t, tt.want, e.Classify(now))
		})
	}
}

func TestEvent_Classify_EveryDateBelongsToExactlyOneFilter(t *testing.T) {
	now := time.Date(2026, 10, 16, 23, 59, 59, 0, time.UTC)
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 31; i++ {
		e := &Event{Date: start.AddDate(0, 0, i)}
		got := e.Classify(now)
		assert.Contains(t, Filters, got)
		if e.Date.Before(Today(now)) {
			assert.Equal(t, FilterPrevious, got, e.DateString())
		} else {
			assert.Equal(t, FilterUpcoming, got, e.DateString())
		}
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("upcoming")
	require.NoError(t, err)
	assert.Equal(t, FilterUpcoming, f)

	f, err = ParseFilter("previous")
	require.NoError(t, err)
	assert.Equal(t, FilterPrevious, f)

	for _, in := range []string{"", "UPCOMING", "all", "past"} {
		_, err := ParseFilter(in)
		assert.ErrorIs(t, err, ErrInvalidFilter, in)
	}
}

func TestValidateStatusChange(t *testing.T) {
	assert.NoError(t, ValidateStatusChange(StatusAccepted))
	assert.NoError(t, ValidateStatusChange(StatusDeclined))

	// pending へ戻す経路は提供しない
	assert.ErrorIs(t, ValidateStatusChange(StatusPending), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateStatusChange("archived"), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateStatusChange(""), ErrInvalidStatus)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2099-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/01/2099")
	assert.ErrorIs(t, err, ErrInvalidDateTime)

	_, err = ParseDate("2099-02-30")
	assert.ErrorIs(t, err, ErrInvalidDateTime)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10:00", want: "10:00:00"},
		{in: "23:59:30", want: "23:59:30"},
		{in: "25:00", wantErr: true},
		{in: "10am", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
