package logging

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var validator *validatorV10.Validate

// FileMode is an octal file mode written as a string, "0640". An unquoted
// YAML 0640 reaches the decoder as the integer 416 and is taken as that mode.
type FileMode string

var fileModeType = reflect.TypeOf(FileMode(""))

func fileModeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != fileModeType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FileMode(strconv.FormatInt(reflect.ValueOf(data).Int(), 8)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FileMode(strconv.FormatUint(reflect.ValueOf(data).Uint(), 8)), nil
	case reflect.Float32, reflect.Float64:
		return FileMode(strconv.FormatInt(int64(reflect.ValueOf(data).Float()), 8)), nil
	}
	return data, nil
}

func init() {
	validator = validatorV10.New()
	_ = validator.RegisterValidation("loglevel", func(fl validatorV10.FieldLevel) bool {
		return IsLevel(fl.Field().String())
	})
}

// decodeParams fills out from a constructor parameter map. Defaults are set
// first so that explicit zero values in params (bubble: false) survive.
// Unknown keys are rejected.
func decodeParams(params map[string]any, out any) error {
	if err := defaults.Set(out); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}

	if len(params) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           out,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.DecodeHookFuncType(fileModeHook),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(params); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
	}

	if err := validator.Struct(out); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
