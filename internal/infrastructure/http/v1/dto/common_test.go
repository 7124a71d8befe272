package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2026, 1, 15, 22, 30, 0, 0, time.UTC))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-15"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.Time, back.Time)
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: `"2026-02-28"`, want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{name: "empty is zero", input: `""`},
		{name: "null is zero", input: `null`},
		{name: "time component rejected", input: `"2026-02-28T10:00:00Z"`, wantErr: true},
		{name: "wrong order rejected", input: `"28-02-2026"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Time)
		})
	}
}

func TestDate_MarshalZero(t *testing.T) {
	data, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("03/01/2026")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestParseID(t *testing.T) {
	valid := "018f2f6a-7a89-7b5e-b9d4-3f1a2b3c4d5e"
	got, err := ParseID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, got.String())

	_, err = ParseID("not-a-uuid")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSuccessEnvelope(t *testing.T) {
	data, err := json.Marshal(Success(map[string]string{"hello": "world"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","data":{"hello":"world"}}`, string(data))
}
