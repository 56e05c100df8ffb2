// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RosterRequestSchema describes the query of signup and unregister. Only the
// presence of email is checked; any string, empty included, is a roster entry
// and everything else is decided by the registry.
var RosterRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"email": map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"email"},
}

var rosterSchemaLoader = gojsonschema.NewGoLoader(RosterRequestSchema)

// ValidateRosterRequest checks the query parameters of a roster mutation.
func ValidateRosterRequest(query url.Values) *ValidationResult {
	input := map[string]interface{}{}
	if query.Has("email") {
		input["email"] = query.Get("email")
	}
	return ValidateInput(rosterSchemaLoader, input)
}

// ValidateInput validates data against a schema loader.
func ValidateInput(schema gojsonschema.JSONLoader, data map[string]interface{}) *ValidationResult {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(data))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: fmt.Sprintf("validation error: %v", err),
			Code:    "SCHEMA_ERROR",
		}}}
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		vr.Errors = append(vr.Errors, toValidationError(desc))
	}
	return vr
}

func toValidationError(desc gojsonschema.ResultError) ValidationError {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			field = prop
		}
		return ValidationError{Field: field, Message: "required field missing", Code: "REQUIRED_FIELD_MISSING"}
	}
	return ValidationError{
		Field:   field,
		Message: desc.Description(),
		Code:    strings.ToUpper(desc.Type()),
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Error joins all messages; it is only meaningful when Valid is false.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether email looks deliverable. Roster entries are
// not required to pass it; only outgoing mail is gated on it.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
