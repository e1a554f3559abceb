package ordering

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/models"
)

// BuyerInput is the buyer section of order and payment requests.
type BuyerInput struct {
	UserFirstName   string `json:"user_first_name" validate:"max=100"`
	UserLastName    string `json:"user_last_name" validate:"max=100"`
	UserEmail       string `json:"user_email" validate:"required,email,max=254"`
	UserPhoneNumber string `json:"user_phone_number" validate:"max=30"`
	UserAddress     string `json:"user_address" validate:"max=255"`
	UserCity        string `json:"user_city" validate:"max=100"`
	UserState       string `json:"user_state" validate:"max=100"`
	UserZipcode     string `json:"user_zipcode" validate:"max=20"`
}

func (b BuyerInput) normalized() BuyerInput {
	b.UserFirstName = strings.TrimSpace(b.UserFirstName)
	b.UserLastName = strings.TrimSpace(b.UserLastName)
	b.UserEmail = strings.ToLower(strings.TrimSpace(b.UserEmail))
	b.UserPhoneNumber = strings.TrimSpace(b.UserPhoneNumber)
	b.UserAddress = strings.TrimSpace(b.UserAddress)
	b.UserCity = strings.TrimSpace(b.UserCity)
	b.UserState = strings.TrimSpace(b.UserState)
	b.UserZipcode = strings.TrimSpace(b.UserZipcode)
	return b
}

// presentFields names the struct fields that carry a value.
func (b BuyerInput) presentFields() []string {
	var fields []string
	v := reflect.ValueOf(b)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).String() != "" {
			fields = append(fields, v.Type().Field(i).Name)
		}
	}
	return fields
}

func (b BuyerInput) details() models.BuyerDetails {
	return models.BuyerDetails{
		UserFirstName:   b.UserFirstName,
		UserLastName:    b.UserLastName,
		UserEmail:       b.UserEmail,
		UserPhoneNumber: b.UserPhoneNumber,
		UserAddress:     b.UserAddress,
		UserCity:        b.UserCity,
		UserState:       b.UserState,
		UserZipcode:     b.UserZipcode,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// invalid converts validator output to a models.ValidationError.
func invalid(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.Invalid("%v", err)
	}

	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			reasons = append(reasons, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			reasons = append(reasons, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			reasons = append(reasons, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return models.Invalid("%s", strings.Join(reasons, "; "))
}

func validateBuyer(b BuyerInput) error {
	if err := validate.Struct(b); err != nil {
		return invalid(err)
	}
	return nil
}

func validateBuyerPatch(b BuyerInput) error {
	fields := b.presentFields()
	if len(fields) == 0 {
		return nil
	}
	if err := validate.StructPartial(b, fields...); err != nil {
		return invalid(err)
	}
	return nil
}

func validateCard(card payments.Card) error {
	if err := validate.Var(card.Number, "required,numeric,min=12,max=19"); err != nil {
		return models.Invalid("card_num must be 12 to 19 digits")
	}
	if month, err := strconv.Atoi(card.ExpMonth); err != nil || month < 1 || month > 12 {
		return models.Invalid("exp_month must be between 1 and 12")
	}
	if err := validate.Var(card.ExpYear, "required,numeric,min=2,max=4"); err != nil {
		return models.Invalid("exp_year must be a 2 or 4 digit year")
	}
	if err := validate.Var(card.CVC, "required,numeric,min=3,max=4"); err != nil {
		return models.Invalid("cvc must be 3 or 4 digits")
	}
	return nil
}
