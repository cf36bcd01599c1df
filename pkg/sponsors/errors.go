package sponsors

import "fmt"

// ConfigError reports an invalid classifier or renderer setting, such as
// thresholds that are out of order. It is fatal and always raised before any
// record is looked at.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// ValidationError reports a malformed sponsor record. ProfileURL identifies
// the offending record and may be empty when that is the field at fault.
type ValidationError struct {
	ProfileURL string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.ProfileURL == "" {
		return fmt.Sprintf("invalid sponsor record: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid sponsor record %q: %s %s", e.ProfileURL, e.Field, e.Reason)
}
