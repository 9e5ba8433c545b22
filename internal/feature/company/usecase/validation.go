package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"company_backend/internal/feature/company/domain/entity"
)

// companyRules mirrors the stored column limits. Field names come from the json tags so
// problems are reported under the same keys the API uses.
type companyRules struct {
	ID    string `json:"id" validate:"required,max=50"`
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"max=15"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalize はAPIの文字列フィールドの前後の空白を除去します。
func normalize(c *entity.Company) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Address != nil {
		a := strings.TrimSpace(*c.Address)
		c.Address = &a
	}
}

// validateFields checks required-field presence and field format.
// A field that fails "required" is not checked further, so presence is always reported
// before format.
func validateFields(c *entity.Company) FieldErrors {
	problems := FieldErrors{}
	err := validate.Struct(companyRules{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	})
	if err == nil {
		return problems
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		problems.Add("non_field_errors", err.Error())
		return problems
	}
	for _, fe := range ve {
		problems.Add(fe.Field(), problemMessage(fe))
	}
	return problems
}

func problemMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return "Invalid value provided."
	}
}

// userSlotName returns the API field name for user slot i (0-based).
func userSlotName(i int) string {
	return fmt.Sprintf("user%d", i+1)
}
