// Package validation checks widget construction arguments.
//
// Struct tag validation (go-playground/validator) covers the structured
// options; the fluent Validator covers loose arguments:
//
//	err := validation.New().
//	    Required("clientID", clientID).
//	    Required("domain", domain).
//	    Custom(login != nil, "loginCallback", "is required").
//	    Validate()
//
// Both report INVALID_ARGUMENT AppErrors with a "fields" detail.
package validation
