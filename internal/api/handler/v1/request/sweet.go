package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var errInvalidPrice = errors.New("price must be non-negative with at most two decimal places")

func validPrice(value interface{}) error {
	var price decimal.Decimal

	switch v := value.(type) {
	case decimal.Decimal:
		price = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		price = *v
	default:
		return errInvalidPrice
	}

	if price.IsNegative() || price.Exponent() < -2 {
		return errInvalidPrice
	}

	return nil
}

type CreateSweetRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (req *CreateSweetRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&req.Category, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Price, validation.By(validPrice)),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
}

// UpdateSweetRequest is a partial edit; nil fields stay untouched.
type UpdateSweetRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

func (req *UpdateSweetRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 150)),
		validation.Field(&req.Category, validation.NilOrNotEmpty, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Price, validation.By(validPrice)),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if req.Name == nil && req.Category == nil && req.Description == nil &&
		req.Price == nil && req.Quantity == nil {
		return errors.New("at least one field must be provided")
	}

	return nil
}

type QuantityActionRequest struct {
	Amount int `json:"amount"`
}

func (req *QuantityActionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Required, validation.Min(1)),
	)
}
