package dto

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
)

// Domain-aware binding validators. Registered once against gin's shared
// binding engine so request DTOs can reject bad enum values before they
// reach a service.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("paymentmethod", validPaymentMethod)
	_ = v.RegisterValidation("itemtype", validItemType)
}

// validPaymentMethod accepts any casing; services normalize to uppercase.
func validPaymentMethod(fl validator.FieldLevel) bool {
	return sales.PaymentMethod(strings.ToUpper(fl.Field().String())).IsValid()
}

// validItemType accepts any casing; option items are still rejected later by
// trackability rules where they apply.
func validItemType(fl validator.FieldLevel) bool {
	return catalog.ItemType(strings.ToUpper(fl.Field().String())).IsValid()
}
