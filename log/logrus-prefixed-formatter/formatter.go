// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

// Package prefixed is an in-tree logrus.Formatter that renders a log entry
// as plain "time=... level=... msg=... prefix=... key=value ..." pairs, or,
// with ForceColors set, as "LEVL[TIMESTAMP] [PREFIX] message key=value ..."
// with the level and prefix colorized. Kept in-tree rather than pulled in as a
// module dependency, the same way the rest of this package's logging
// plumbing avoids reaching outside the tree for formatting.
package prefixed

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimestampFormat = time.RFC3339

// ANSI SGR codes for the handful of colors this formatter needs. Kept as
// raw escape sequences rather than pulled from a color library, since the
// whole point of this package is formatting with nothing beyond logrus
// itself.
const (
	ansiReset      = "\033[0m"
	ansiGray       = "\033[90m"
	ansiYellow     = "\033[33m"
	ansiRed        = "\033[31m"
	ansiBlue       = "\033[34m"
	ansiCyanBold   = "\033[1;36m"
)

// TextFormatter formats logrus entries into a single line of plain text,
// with an optional bracketed prefix pulled from entry.Data["prefix"].
type TextFormatter struct {
	// ForceColors forces colorized output even when not writing to a TTY.
	ForceColors bool
	// DisableColors strips all ANSI color codes from the output.
	DisableColors bool
	// ForceFormatting forces formatting even when not writing to a TTY.
	ForceFormatting bool
	// DisableTimestamp omits the timestamp field entirely.
	DisableTimestamp bool
	// FullTimestamp prints the full timestamp instead of the elapsed time
	// since the formatter was created.
	FullTimestamp bool
	// TimestampFormat sets the timestamp layout of plain output, and of
	// colored output when FullTimestamp is set; defaults to time.RFC3339.
	TimestampFormat string
	// DisableSorting stops the formatter from sorting field keys.
	DisableSorting bool
	// QuoteEmptyFields wraps empty string field values in quotes.
	QuoteEmptyFields bool

	sync.Once
	startTime time.Time
}

func (f *TextFormatter) init(entry *logrus.Entry) {
	f.startTime = time.Now()
}

// Format renders entry as a single terminated line.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	if !f.DisableSorting {
		sort.Strings(keys)
	}
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	prefixFieldClashes(entry.Data)

	isColored := (f.ForceColors || f.isTerminal()) && !f.DisableColors
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}

	f.Do(func() { f.init(entry) })

	if isColored {
		f.printColored(b, entry, keys, timestampFormat)
	} else {
		f.appendKeyValue(b, "time", entry.Time.Format(timestampFormat))
		f.appendKeyValue(b, "level", entry.Level.String())
		if entry.Message != "" {
			f.appendKeyValue(b, "msg", entry.Message)
		}
		if prefix, ok := entry.Data["prefix"]; ok {
			f.appendKeyValue(b, "prefix", fmt.Sprint(prefix))
		}
		for _, key := range keys {
			if key == "prefix" {
				continue
			}
			f.appendKeyValue(b, key, entry.Data[key])
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *TextFormatter) isTerminal() bool {
	return false
}

func (f *TextFormatter) printColored(b *bytes.Buffer, entry *logrus.Entry, keys []string, timestampFormat string) {
	var levelColor string
	switch entry.Level {
	case logrus.DebugLevel:
		levelColor = ansiGray
	case logrus.WarnLevel:
		levelColor = ansiYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = ansiRed
	default:
		levelColor = ansiBlue
	}

	levelText := strings.ToUpper(entry.Level.String())[0:4]

	prefix := ""
	if prefixValue, ok := entry.Data["prefix"]; ok {
		prefix = fmt.Sprintf("%s[%s]%s ", ansiCyanBold, prefixValue, ansiReset)
	}

	if f.DisableTimestamp {
		fmt.Fprintf(b, "%s%s%s %s", levelColor, levelText, ansiReset, prefix)
	} else if !f.FullTimestamp {
		fmt.Fprintf(b, "%s%s%s[%04d] %s", levelColor, levelText, ansiReset, int(time.Since(f.startTime)/time.Second), prefix)
	} else {
		fmt.Fprintf(b, "%s%s%s[%s] %s", levelColor, levelText, ansiReset, entry.Time.Format(timestampFormat), prefix)
	}
	fmt.Fprintf(b, "%s%s ", levelColor, entry.Message)
	for _, k := range keys {
		if k == "prefix" {
			continue
		}
		v := entry.Data[k]
		fmt.Fprintf(b, " %s%s%s=%+v", levelColor, k, ansiReset, v)
	}
}

func (f *TextFormatter) needsQuoting(text string) bool {
	if f.QuoteEmptyFields && len(text) == 0 {
		return true
	}
	for _, ch := range text {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.' || ch == '_' || ch == '/' || ch == '@' || ch == '^' || ch == '+') {
			return true
		}
	}
	return false
}

func (f *TextFormatter) appendKeyValue(b *bytes.Buffer, key string, value interface{}) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')

	switch value := value.(type) {
	case string:
		if !f.needsQuoting(value) {
			b.WriteString(value)
		} else {
			fmt.Fprintf(b, "%q", value)
		}
	case error:
		errmsg := value.Error()
		if !f.needsQuoting(errmsg) {
			b.WriteString(errmsg)
		} else {
			fmt.Fprintf(b, "%q", errmsg)
		}
	default:
		fmt.Fprint(b, value)
	}
}

// prefixFieldClashes renames logrus's own reserved keys (time, msg, level)
// if the caller's log fields happen to collide with them.
func prefixFieldClashes(data logrus.Fields) {
	for _, reserved := range []string{"time", "msg", "level"} {
		if v, ok := data[reserved]; ok {
			delete(data, reserved)
			data["fields."+reserved] = v
		}
	}
}
