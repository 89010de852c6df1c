package request

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestRegisterValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	tests := []struct {
		name    string
		param   Register
		wantErr bool
	}{
		{
			name:    "given valid request should pass",
			param:   Register{Name: "Test Customer", Email: "customer@example.com", Password: "secret1"},
			wantErr: false,
		},
		{
			name:    "given invalid email should fail",
			param:   Register{Name: "Test Customer", Email: "not-an-email", Password: "secret1"},
			wantErr: true,
		},
		{
			name:    "given short password should fail",
			param:   Register{Name: "Test Customer", Email: "customer@example.com", Password: "short"},
			wantErr: true,
		},
		{
			name:    "given short name should fail",
			param:   Register{Name: "T", Email: "customer@example.com", Password: "secret1"},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validate.StructCtx(context.Background(), test.param)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResetPasswordValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	assert.Error(t, validate.StructCtx(context.Background(), ResetPassword{Token: "", NewPassword: "secret1"}))
	assert.Error(t, validate.StructCtx(context.Background(), ResetPassword{Token: "token", NewPassword: "short"}))
	assert.NoError(t, validate.StructCtx(context.Background(), ResetPassword{Token: "token", NewPassword: "secret1"}))
}
