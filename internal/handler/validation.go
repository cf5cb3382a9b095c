package handler

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
)

// RegisterValidators teaches gin's validator to compare decimal amounts, so
// tags like gt=0 work on decimal.Decimal fields, and to check the value
// inside an Optional patch field. An absent or null Optional counts as empty.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterCustomTypeFunc(optionalStringValue, dto.Optional[string]{})
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func optionalStringValue(field reflect.Value) interface{} {
	if o, ok := field.Interface().(dto.Optional[string]); ok && o.Valid {
		return o.Value
	}
	return nil
}
