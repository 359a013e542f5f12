package logger

import (
	"time"

	"go.uber.org/zap"
)

// String creates a field with a string value.
// Example: logger.Info("newsletter created", String("newsletter_id", id))
func String(key, val string) Field {
	return zap.String(key, val)
}

// Int creates a field with an int value.
// Example: logger.Info("items processed", Int("count", 42))
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Int64 creates a field with an int64 value.
func Int64(key string, val int64) Field {
	return zap.Int64(key, val)
}

// Float64 creates a field with a float64 value.
// Example: logger.Info("item ranked", Float64("score", 63.0))
func Float64(key string, val float64) Field {
	return zap.Float64(key, val)
}

// Bool creates a field with a boolean value.
// Example: logger.Info("send requested", Bool("test_mode", true))
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Duration creates a field with a time.Duration value.
// The duration is formatted as a string (e.g., "1s", "100ms").
func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

// Time creates a field with a time.Time value.
// The time is formatted according to the logger's time encoding.
func Time(key string, val time.Time) Field {
	return zap.Time(key, val)
}

// Error creates a field for an error value.
// The error is logged with the key "error" and includes the error message.
// Example: logger.Error("operation failed", Error(err))
func Error(err error) Field {
	return zap.Error(err)
}

// NamedError creates a field for an error value with a custom key.
// Use this when you want to log multiple errors or use a custom field name.
func NamedError(key string, err error) Field {
	return zap.NamedError(key, err)
}

// Any creates a field with an arbitrary value.
// The value is serialized using reflection, which may be slower than typed fields.
// Prefer typed field constructors (String, Int, etc.) when possible.
func Any(key string, val any) Field {
	return zap.Any(key, val)
}

// Strings creates a field with a slice of strings.
// Example: logger.Info("delivery errors", Strings("errors", errs))
func Strings(key string, val []string) Field {
	return zap.Strings(key, val)
}
