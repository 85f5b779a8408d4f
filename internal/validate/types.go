// SPDX-License-Identifier: MIT
package validate

// LogLevel is a level name accepted in the logLevel setting.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

func (l LogLevel) String() string {
	return string(l)
}

// LogLevel validates an optional log level; empty means "use default".
func (v *Validator) LogLevel(field, value string) {
	if value == "" {
		return
	}
	if !LogLevel(value).IsValid() {
		v.AddError(field, "must be one of debug, info, warn, error", value)
	}
}
