//go:build rp2040 || rp2350

package logger

import "habitat-go/x/strconvx"

type level uint8

const (
	lvlDebug level = iota
	lvlInfo
	lvlWarn
	lvlError
)

// Logger prints key/value lines to the USB console.
type Logger struct {
	min  level
	name string
}

func newLogger(levelStr string) *Logger {
	l := &Logger{min: lvlInfo}
	switch levelStr {
	case DebugLevel:
		l.min = lvlDebug
	case WarnLevel:
		l.min = lvlWarn
	case ErrorLevel:
		l.min = lvlError
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{min: lvlError + 1} }

func (l *Logger) Named(name string) *Logger {
	n := name
	if l.name != "" {
		n = l.name + "." + name
	}
	return &Logger{min: l.min, name: n}
}

func (l *Logger) Sync() {}

func (l *Logger) Debugw(msg string, kv ...any) { l.emit(lvlDebug, "DEBUG", msg, kv) }
func (l *Logger) Infow(msg string, kv ...any)  { l.emit(lvlInfo, "INFO", msg, kv) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.emit(lvlWarn, "WARN", msg, kv) }
func (l *Logger) Errorw(msg string, kv ...any) { l.emit(lvlError, "ERROR", msg, kv) }

func (l *Logger) emit(lv level, tag, msg string, kv []any) {
	if lv < l.min {
		return
	}
	line := tag + " "
	if l.name != "" {
		line += l.name + " "
	}
	line += msg
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		line += " " + k + "=" + valueString(kv[i+1])
	}
	println(line)
}

func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconvx.Itoa(x)
	case int32:
		return strconvx.FormatInt(int64(x), 10)
	case int64:
		return strconvx.FormatInt(x, 10)
	case uint8:
		return strconvx.FormatInt(int64(x), 10)
	case uint32:
		return strconvx.FormatInt(int64(x), 10)
	case float32:
		return strconvx.FormatFloat(float64(x), 'f', 2, 32)
	case float64:
		return strconvx.FormatFloat(x, 'f', 2, 64)
	case error:
		return x.Error()
	case interface{ String() string }:
		return x.String()
	}
	return "?"
}
