package validation

import (
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// basic local@domain shape; intentionally loose.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// struct-level validation for CheckoutRequest: the required tags
	// catch absent fields, this catches whitespace-only values and a
	// malformed email.
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)
	d := req.UserDetails

	if strings.TrimSpace(d.Name) == "" {
		sl.ReportError(d.Name, "userDetails.name", "Name", "required", "")
	}
	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		sl.ReportError(d.Email, "userDetails.email", "Email", "email_shape", "must match local@domain")
	}
	if strings.TrimSpace(d.Address) == "" {
		sl.ReportError(d.Address, "userDetails.address", "Address", "required", "")
	}
}
