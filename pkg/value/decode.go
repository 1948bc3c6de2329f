package value

import (
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode copies v into out, which must be a pointer. Objects decode into
// structs through `mapstructure` field tags (falling back to field names);
// strings decode into time.Duration and time.Time fields.
//
//	var cfg struct {
//	    URL     string        `mapstructure:"url"`
//	    Retries int           `mapstructure:"retries"`
//	    Timeout time.Duration `mapstructure:"timeout"`
//	}
//	err := value.Decode(v, &cfg)
func Decode(v Value, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		ErrorUnused: false,
	})
	if err != nil {
		return wrapError(ErrorTypeConversion, err, "cannot decode into %T", out)
	}
	if err := dec.Decode(v.ToNative()); err != nil {
		return wrapError(ErrorTypeConversion, err, "cannot decode %s into %T", v.Kind(), out)
	}
	return nil
}
