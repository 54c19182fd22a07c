package netpie

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/relabs-tech/netpie/core/pointers"
)

// Defaults for optional parameters
const (
	DefaultTimeout     = 15000 * time.Millisecond
	ContentTypeText    = "text/plain"
	ContentTypeJSON    = "application/json"
	defaultContentType = ContentTypeText
)

// Parameters are the resolved and validated parameters of one item
type Parameters struct {
	Alias       string
	Topic       string
	Payload     string
	Simplify    bool
	Timeout     time.Duration
	ContentType string
}

type optionParameters struct {
	Timeout     *float64 `mapstructure:"timeout" validate:"omitempty,gt=0"`
	ContentType string   `mapstructure:"contentType" validate:"omitempty,oneof=text/plain application/json"`
}

type shadowParameters struct {
	Alias    string           `mapstructure:"alias" validate:"required"`
	Simplify *bool            `mapstructure:"simplify"`
	Options  optionParameters `mapstructure:"options"`
}

type messageParameters struct {
	Topic    string           `mapstructure:"topic" validate:"required"`
	Payload  *string          `mapstructure:"payload" validate:"required"`
	Simplify *bool            `mapstructure:"simplify"`
	Options  optionParameters `mapstructure:"options"`
}

var parameterValidator = newParameterValidator()

func newParameterValidator() *validator.Validate {
	v := validator.New()
	// report parameter names as the host knows them
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func resolveShadowParameters(item Item, index int) (Parameters, error) {
	var raw shadowParameters
	if err := decodeParameters(item.Parameters, &raw, index); err != nil {
		return Parameters{}, err
	}
	raw.Alias = strings.TrimSpace(raw.Alias)
	if err := validateParameters(&raw, index); err != nil {
		return Parameters{}, err
	}
	timeout, err := resolveTimeout(raw.Options, index)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		Alias:    raw.Alias,
		Simplify: pointers.SafeBool(raw.Simplify, true),
		Timeout:  timeout,
	}, nil
}

func resolveMessageParameters(item Item, index int) (Parameters, error) {
	var raw messageParameters
	if err := decodeParameters(item.Parameters, &raw, index); err != nil {
		return Parameters{}, err
	}
	raw.Topic = strings.TrimSpace(raw.Topic)
	if err := validateParameters(&raw, index); err != nil {
		return Parameters{}, err
	}
	timeout, err := resolveTimeout(raw.Options, index)
	if err != nil {
		return Parameters{}, err
	}
	contentType := raw.Options.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	return Parameters{
		Topic:       raw.Topic,
		Payload:     *raw.Payload,
		Simplify:    pointers.SafeBool(raw.Simplify, true),
		Timeout:     timeout,
		ContentType: contentType,
	}, nil
}

func decodeParameters(input map[string]interface{}, result interface{}, index int) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  result,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return &ParameterError{ItemIndex: index, Reason: decodeReason(err)}
	}
	return nil
}

func decodeReason(err error) string {
	var merr *mapstructure.Error
	if errors.As(err, &merr) {
		return strings.Join(merr.Errors, "; ")
	}
	return err.Error()
}

func validateParameters(raw interface{}, index int) error {
	err := parameterValidator.Struct(raw)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &ParameterError{ItemIndex: index, Reason: err.Error()}
	}
	e := fieldErrors[0]
	return &ParameterError{
		ItemIndex: index,
		Parameter: parameterName(e),
		Reason:    validationReason(e),
	}
}

// parameterName strips the struct name from the field namespace, e.g.
// "shadowParameters.options.timeout" becomes "options.timeout"
func parameterName(e validator.FieldError) string {
	namespace := e.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationReason(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

func resolveTimeout(options optionParameters, index int) (time.Duration, error) {
	if options.Timeout == nil {
		return DefaultTimeout, nil
	}
	ms := *options.Timeout
	if ms != math.Trunc(ms) || ms > math.MaxInt32 {
		return 0, &ParameterError{ItemIndex: index, Parameter: "options.timeout", Reason: "must be an integer number of milliseconds"}
	}
	return time.Duration(ms) * time.Millisecond, nil
}
