package config

import (
	"encoding"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// DecodeAttributes builds a Config from a loosely typed attribute map, as a host application
// embedding a rig would pass it. Numbers given as strings are accepted.
func DecodeAttributes(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       textUnmarshalerHook,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode attributes")
	}
	return processConfig(&cfg)
}

// textUnmarshalerHook decodes strings into types implementing encoding.TextUnmarshaler, so
// names like axes are checked the same way they are when read from JSON.
func textUnmarshalerHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	target := reflect.New(to)
	u, ok := target.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return data, nil
	}
	if err := u.UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}
