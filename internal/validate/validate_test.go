package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"timeful/internal/dow"
	"timeful/internal/model"
)

func status(s string) *string { return &s }

func TestValidateDOWPayload(t *testing.T) {
	tests := []struct {
		name     string
		slots    []model.Slot
		skip     bool
		wantErr  string
		wantSlot int
	}{
		{
			name: "1. end of day sentinel",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T24:00:00"},
			},
		},
		{
			name:  "2. empty clears availability",
			slots: []model.Slot{},
		},
		{
			name: "3. statuses",
			slots: []model.Slot{
				{Start: "2018-06-17T00:00:00", End: "2018-06-17T01:00:00", Status: status("available")},
				{Start: "2018-06-23T22:00:00", End: "2018-06-23T23:59:59", Status: status("if-needed")},
			},
		},
		{
			name: "4. missing end",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00"},
			},
			wantErr: "Slot at index 0 is missing required 'start' or 'end' field",
		},
		{
			name: "5. bad format",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T10:00:00"},
				{Start: "2018-06-18 09:00:00", End: "2018-06-18T10:00:00"},
			},
			wantErr:  "Slot at index 1 has invalid time format. Expected format: YYYY-MM-DDTHH:mm:ss (e.g., \"2018-06-18T09:00:00\")",
			wantSlot: 1,
		},
		{
			name: "6. start hour out of range",
			slots: []model.Slot{
				{Start: "2018-06-18T24:00:00", End: "2018-06-18T24:00:00"},
			},
			wantErr: "Slot at index 0 has invalid start time: hours must be 0-23, minutes and seconds must be 0-59",
		},
		{
			name: "7. end hour out of range",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T25:00:00"},
			},
			wantErr: "Slot at index 0 has invalid end time: hours must be 0-24",
		},
		{
			name: "8. sentinel with minutes",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T24:30:00"},
			},
			wantErr: "Slot at index 0 has invalid end time: if hour is 24, minutes and seconds must be 00:00",
		},
		{
			name: "9. end seconds out of range",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T10:00:60"},
			},
			wantErr: "Slot at index 0 has invalid end time: minutes and seconds must be 0-59",
		},
		{
			name: "10. start date outside canonical week",
			slots: []model.Slot{
				{Start: "2024-01-08T09:00:00", End: "2018-06-18T10:00:00"},
			},
			wantErr: "Slot at index 0 has invalid start date: 2024-01-08. Must be one of the hardcoded DOW dates: " +
				"2018-06-17, 2018-06-18, 2018-06-19, 2018-06-20, 2018-06-21, 2018-06-22, 2018-06-23",
		},
		{
			name: "11. end date outside canonical week",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-24T10:00:00"},
			},
			wantErr: "Slot at index 0 has invalid end date: 2018-06-24. Must be one of the hardcoded DOW dates: " +
				"2018-06-17, 2018-06-18, 2018-06-19, 2018-06-20, 2018-06-21, 2018-06-22, 2018-06-23",
		},
		{
			name: "12. different days",
			slots: []model.Slot{
				{Start: "2018-06-19T09:00:00", End: "2018-06-18T10:00:00"},
			},
			wantErr: "Slot at index 0 has start and end times on different days (2018-06-19 vs 2018-06-18). Start and end must be on the same day of the week.",
		},
		{
			name: "13. different days allowed, end before start",
			slots: []model.Slot{
				{Start: "2018-06-19T09:00:00", End: "2018-06-18T10:00:00"},
			},
			skip:    true,
			wantErr: "Slot at index 0 has end time that is before or equal to start time",
		},
		{
			name: "14. different days allowed",
			slots: []model.Slot{
				{Start: "2018-06-18T22:00:00", End: "2018-06-19T02:00:00"},
			},
			skip: true,
		},
		{
			name: "15. equal start and end",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T09:00:00"},
			},
			wantErr: "Slot at index 0 has end time that is before or equal to start time",
		},
		{
			name: "16. unknown status",
			slots: []model.Slot{
				{Start: "2018-06-18T09:00:00", End: "2018-06-18T10:00:00", Status: status("busy")},
			},
			wantErr: "Slot at index 0 has invalid status 'busy'. Must be 'available' or 'if-needed'",
		},
	}

	week := dow.DefaultCanonicalWeek()

	for _, tt := range tests {
		t.Run(
			tt.name,
			func(t *testing.T) {
				got := ValidateDOWPayload(tt.slots, week, tt.skip)

				if tt.wantErr == "" {
					require.Nil(t, got)

					return
				}

				require.NotNil(t, got)
				require.False(t, got.Valid)
				require.Equal(t, tt.wantErr, got.Error)
				require.Equal(t, tt.wantSlot, got.Index)
			},
		)
	}
}

func TestAlternateWeek(t *testing.T) {
	week, err := dow.NewCanonicalWeek([]string{
		"2024-01-07", "2024-01-08", "2024-01-09", "2024-01-10",
		"2024-01-11", "2024-01-12", "2024-01-13",
	})
	require.NoError(t, err)

	got := ValidateDOWPayload(
		[]model.Slot{
			{Start: "2018-06-19T09:00:00", End: "2018-06-18T10:00:00"},
		},
		week,
		false,
	)
	require.NotNil(t, got)
	require.Contains(t, got.Error, "invalid start date: 2018-06-19")

	require.Nil(t,
		ValidateDOWPayload(
			[]model.Slot{
				{Start: "2024-01-08T09:00:00", End: "2024-01-08T24:00:00"},
			},
			week,
			false,
		),
	)
}

func TestValidateDOWPayloadJSON(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   string
		wantIndex int
	}{
		{
			name: "1. valid",
			raw:  `[{"start":"2018-06-18T09:00:00","end":"2018-06-18T24:00:00","status":"if-needed"}]`,
		},
		{
			name: "2. empty",
			raw:  `[]`,
		},
		{
			name:      "3. object instead of array",
			raw:       `{"start":"2018-06-18T09:00:00"}`,
			wantErr:   "Slots must be an array",
			wantIndex: -1,
		},
		{
			name:      "4. null",
			raw:       `null`,
			wantErr:   "Slots must be an array",
			wantIndex: -1,
		},
		{
			name:    "5. missing start",
			raw:     `[{"end":"2018-06-18T10:00:00"}]`,
			wantErr: "Slot at index 0 is missing required 'start' or 'end' field",
		},
		{
			name:      "6. numeric start",
			raw:       `[{"start":"2018-06-18T09:00:00","end":"2018-06-18T10:00:00"},{"start":900,"end":"2018-06-18T10:00:00"}]`,
			wantErr:   "Slot at index 1 has invalid 'start' or 'end' type (must be strings)",
			wantIndex: 1,
		},
		{
			name:    "7. non string status",
			raw:     `[{"start":"2018-06-18T09:00:00","end":"2018-06-18T10:00:00","status":3}]`,
			wantErr: "Slot at index 0 has invalid status '3'. Must be 'available' or 'if-needed'",
		},
		{
			name:    "8. slot is not an object",
			raw:     `["2018-06-18T09:00:00"]`,
			wantErr: "Slot at index 0 is missing required 'start' or 'end' field",
		},
		{
			name:    "9. time format is checked before a non string status",
			raw:     `[{"start":"bad","end":"bad","status":5}]`,
			wantErr: "Slot at index 0 has invalid time format. Expected format: YYYY-MM-DDTHH:mm:ss (e.g., \"2018-06-18T09:00:00\")",
		},
		{
			name:    "10. ordering is checked before a non string status",
			raw:     `[{"start":"2018-06-18T10:00:00","end":"2018-06-18T09:00:00","status":true}]`,
			wantErr: "Slot at index 0 has end time that is before or equal to start time",
		},
		{
			name:    "11. null status",
			raw:     `[{"start":"2018-06-18T09:00:00","end":"2018-06-18T10:00:00","status":null}]`,
			wantErr: "Slot at index 0 has invalid status 'null'. Must be 'available' or 'if-needed'",
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name,
			func(t *testing.T) {
				got := ValidateDOWPayloadJSON([]byte(tt.raw), nil, false)

				if tt.wantErr == "" {
					require.Nil(t, got)

					return
				}

				require.NotNil(t, got)
				require.Equal(t, tt.wantErr, got.Error)
				require.Equal(t, tt.wantIndex, got.Index)
			},
		)
	}
}

func TestDeterministic(t *testing.T) {
	slots := []model.Slot{
		{Start: "2018-06-18T09:00:00", End: "2018-06-18T10:00:00"},
		{Start: "2018-06-20T11:00:00", End: "2018-06-19T10:00:00"},
	}

	first := ValidateDOWPayload(slots, nil, false)
	require.NotNil(t, first)

	for range 5 {
		require.Equal(t, first, ValidateDOWPayload(slots, nil, false))
	}
}
