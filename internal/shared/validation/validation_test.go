package validation

import (
	"errors"
	"testing"

	"gymflow/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ScheduleID    string  `json:"schedule_id" validate:"required,uuid"`
	PriorityScore *int    `json:"priority_score,omitempty" validate:"omitempty,min=0"`
	Status        *string `form:"status" validate:"omitempty,oneof=waiting converted expired"`
}

func TestStructReportsFieldDetails(t *testing.T) {
	negative := -3
	status := "pending"

	err := Struct(&sampleRequest{ScheduleID: "not-a-uuid", PriorityScore: &negative, Status: &status})
	require.Error(t, err)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)

	details, ok := appErr.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, details, 3)

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Rule
	}
	assert.Equal(t, "uuid", fields["schedule_id"])
	assert.Equal(t, "min", fields["priority_score"])
	assert.Equal(t, "oneof", fields["status"])
}

func TestStructAcceptsValidRequest(t *testing.T) {
	zero := 0
	err := Struct(&sampleRequest{
		ScheduleID:    "9b2e7a52-3c1f-4d8e-9f6a-1c2d3e4f5a6b",
		PriorityScore: &zero,
	})
	assert.NoError(t, err)
}

func TestMalformed(t *testing.T) {
	err := Malformed(errors.New("parsing time \"tomorrow\""))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
