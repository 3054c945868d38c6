package logger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// consoleFormatter renders entries as "[time] [LEVEL] [prefix]: message k=v".
type consoleFormatter struct {
	colors bool
}

// Format implements logrus.Formatter
func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := levelOf(entry)
	prefix, _ := entry.Data[fieldPrefix].(string)

	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString("] [")
	if f.colors {
		b.WriteString(level.Color())
		b.WriteString(level.String())
		b.WriteString(colorReset)
	} else {
		b.WriteString(level.String())
	}
	fmt.Fprintf(&b, "] [%s]: %s", prefix, entry.Message)
	writeFields(&b, entry.Data)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// writeFields appends the caller supplied fields in key order.
func writeFields(b *bytes.Buffer, data logrus.Fields) {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == fieldLevel || k == fieldPrefix {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, data[k])
	}
}

// levelOf recovers the LogLevel of an entry. Entries produced outside of
// Logger.log fall back to the logrus level.
func levelOf(entry *logrus.Entry) LogLevel {
	if level, ok := entry.Data[fieldLevel].(LogLevel); ok {
		return level
	}
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}
