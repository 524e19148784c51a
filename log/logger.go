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

package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Ctx is a map of key/value pairs to pass as context during log calls.
// Use this instead of a raw map to prevent ambiguous printing.
type Ctx map[string]interface{}

// toArray flattens the map into the same key, value, key, value... slice
// that the variadic logging calls accept. Order is not significant since
// it only ever feeds normalize/write.
func (c Ctx) toArray() []interface{} {
	arr := make([]interface{}, 0, len(c)*2)
	for k, v := range c {
		arr = append(arr, k, v)
	}
	return arr
}

// normalize pads an odd-length context slice with a trailing nil so that
// every key always has a paired value.
func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil)
	}
	return ctx
}

// logger implements Logger on top of the package's shared logrus output.
type logger struct {
	ctx     []interface{}
	mapPool sync.Pool
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{mapPool: l.mapPool}
	child.ctx = make([]interface{}, 0, len(l.ctx)+len(ctx))
	child.ctx = append(child.ctx, l.ctx...)
	child.ctx = append(child.ctx, normalize(ctx)...)
	return child
}

func (l *logger) fields(ctx []interface{}) logrus.Fields {
	fields, _ := l.mapPool.Get().(map[string]interface{})
	for k := range fields {
		delete(fields, k)
	}
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", ctx[i])
		}
		fields[key] = ctx[i+1]
	}
	defer l.mapPool.Put(fields)
	out := make(logrus.Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, skip int) {
	all := make([]interface{}, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, normalize(ctx)...)

	entry := terminal.WithFields(l.fields(all))
	switch lvl {
	case LvlCrit:
		entry.Error(msg)
	case LvlFatal:
		entry.Error(msg)
	case LvlError:
		entry.Error(msg)
	case LvlWarn:
		entry.Warn(msg)
	case LvlInfo:
		entry.Info(msg)
	case LvlDebug:
		entry.Debug(msg)
	case LvlTrace:
		entry.Trace(msg)
	}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, skipLevel) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, skipLevel) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, skipLevel) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, skipLevel) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, skipLevel) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx, skipLevel)
	os.Exit(1)
}
