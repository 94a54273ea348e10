package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateSweetRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateSweetRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: CreateSweetRequest{
				Name:     "Gummy Bears",
				Category: "Gummies",
				Price:    decimal.RequireFromString("2.50"),
				Quantity: 5,
			},
		},
		{
			name: "missing name",
			req: CreateSweetRequest{
				Category: "Gummies",
				Price:    decimal.RequireFromString("2.50"),
			},
			wantErr: true,
		},
		{
			name: "negative price",
			req: CreateSweetRequest{
				Name:     "Gummy Bears",
				Category: "Gummies",
				Price:    decimal.RequireFromString("-1.00"),
			},
			wantErr: true,
		},
		{
			name: "price with sub-cent precision",
			req: CreateSweetRequest{
				Name:     "Gummy Bears",
				Category: "Gummies",
				Price:    decimal.RequireFromString("2.505"),
			},
			wantErr: true,
		},
		{
			name: "negative quantity",
			req: CreateSweetRequest{
				Name:     "Gummy Bears",
				Category: "Gummies",
				Price:    decimal.RequireFromString("2.50"),
				Quantity: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateSweetRequest_Validate(t *testing.T) {
	name := "Sour Gummy Bears"
	empty := ""
	price := decimal.RequireFromString("3.00")

	assert.Error(t, (&UpdateSweetRequest{}).Validate())
	assert.Error(t, (&UpdateSweetRequest{Name: &empty}).Validate())
	assert.NoError(t, (&UpdateSweetRequest{Name: &name}).Validate())
	assert.NoError(t, (&UpdateSweetRequest{Price: &price}).Validate())
}

func TestQuantityActionRequest_Validate(t *testing.T) {
	assert.Error(t, (&QuantityActionRequest{Amount: 0}).Validate())
	assert.Error(t, (&QuantityActionRequest{Amount: -2}).Validate())
	assert.NoError(t, (&QuantityActionRequest{Amount: 1}).Validate())
}

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{Email: "user@example.com", Password: "password123", Name: "User"}
	assert.NoError(t, valid.Validate())

	noDigit := valid
	noDigit.Password = "passwords"
	assert.ErrorIs(t, noDigit.Validate(), errInvalidPassword)

	tooShort := valid
	tooShort.Password = "pass1"
	assert.ErrorIs(t, tooShort.Validate(), errInvalidPassword)

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())
}
