package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	datePattern  = regexp.MustCompile(`^[0-9]{8}$`)
	monthPattern = regexp.MustCompile(`^[0-9]{2}$`)
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("yyyymmdd", patternValidation(datePattern))
	_ = validate.RegisterValidation("mm", patternValidation(monthPattern))
	_ = validate.RegisterValidation("yyyy", patternValidation(yearPattern))
	validate.RegisterAlias("not_empty", "required")
	return validate
}

func patternValidation(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// IsDate reports whether value is a YYYYMMDD date.
func IsDate(value string) bool {
	return datePattern.MatchString(value)
}

// IsMonth reports whether value is a two digit MM month.
func IsMonth(value string) bool {
	return monthPattern.MatchString(value)
}

// IsYear reports whether value is a four digit YYYY year.
func IsYear(value string) bool {
	return yearPattern.MatchString(value)
}

func ParseValidationError(errors validator.ValidationErrors) map[string]interface{} {
	fieldErrors := make(map[string]interface{})
	for _, err := range errors {
		fieldErrors[getFieldName(err)] = msgForFieldError(err)
	}
	return fieldErrors
}

// msgForFieldError gets the message for the given validation error (tag).
func msgForFieldError(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "not_empty":
		return "This field cannot be empty"
	case "yyyymmdd":
		return fmt.Sprintf("Invalid date %q. Expected YYYYMMDD", fieldError.Value())
	case "mm":
		return fmt.Sprintf("Invalid month %q. Expected MM", fieldError.Value())
	case "yyyy":
		return fmt.Sprintf("Invalid year %q. Expected YYYY", fieldError.Value())
	case "oneof":
		params := strings.Join(strings.Split(fieldError.Param(), " "), ", ")
		return fmt.Sprintf("Unexpected value %q. Expected one of the following values: %s", fieldError.Value(), params)
	case "gt":
		if fieldError.Kind() == reflect.Slice || fieldError.Kind() == reflect.Array {
			return "Should have at least 1 element"
		}
		return fmt.Sprintf("Should be greater than %s", fieldError.Param())
	case "gte":
		return fmt.Sprintf("Should be greater than or equal %s", fieldError.Param())
	default:
		return "Invalid value"
	}
}

func getFieldName(fieldError validator.FieldError) string {
	// Ex.: structName.FieldName, structName.nestedStructName.nestedStructFieldName, structName.nestedStructName.nestedStructName....
	namespace := strings.Split(fieldError.StructNamespace(), ".")
	length := len(namespace)
	if length == 2 {
		return lcFirst(namespace[1])
	}

	if length > 2 {
		return fmt.Sprintf("%s.%s", lcFirst(namespace[length-2]), lcFirst(namespace[length-1]))
	}

	return lcFirst(namespace[0])
}

// lcFirst lowers the case of the first letter of the given string.
//
//	Example: TransactionDate -> transactionDate
func lcFirst(str string) string {
	for index, letter := range str {
		return string(unicode.ToLower(letter)) + str[index+1:]
	}
	return ""
}
