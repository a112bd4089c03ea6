package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Color    string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Priority string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(signup{Email: "a@b.co", Password: "secret"}))

	err := Validate(signup{Email: "nope", Password: "123", Color: "red", Priority: "URGENT"})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	byField := map[string]string{}
	for _, f := range verr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be at least 6 characters", byField["password"])
	assert.Equal(t, "must be a hex color like #RRGGBB", byField["color"])
	assert.Equal(t, "must be one of LOW, MEDIUM, HIGH", byField["priority"])
}
