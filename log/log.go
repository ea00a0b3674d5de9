/*
 * Mirage - A Redirecting OpenFlow Controller
 *
 * Copyright (C) 2026 The Mirage Authors. All rights reserved.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package log provides the go-logging backends of the daemon.
package log

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"runtime"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const (
	Format = `%{level}: %{shortpkg}.%{shortfunc}: %{message}`
)

type writer interface {
	Crit(m string) error
	Err(m string) error
	Warning(m string) error
	Notice(m string) error
	Info(m string) error
	Debug(m string) error
}

// Syslog is a backend that sends each record to the local syslog daemon with the ID of the
// goroutine that produced it.
type Syslog struct {
	writer writer
}

func NewSyslog(prefix string) (*Syslog, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to syslog")
	}

	return &Syslog{writer: w}, nil
}

func (r *Syslog) Log(level logging.Level, calldepth int, record *logging.Record) error {
	line := fmt.Sprintf("%v (TID=%v)", record.Formatted(calldepth+1), goroutineID())
	switch level {
	case logging.CRITICAL:
		return r.writer.Crit(line)
	case logging.ERROR:
		return r.writer.Err(line)
	case logging.WARNING:
		return r.writer.Warning(line)
	case logging.NOTICE:
		return r.writer.Notice(line)
	case logging.INFO:
		return r.writer.Info(line)
	case logging.DEBUG:
		return r.writer.Debug(line)
	default:
		return fmt.Errorf("unexpected log level: %v", level)
	}
}

func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
}

// NewBackend returns a leveled backend of the named kind (syslog or stderr) formatted with Format.
func NewBackend(kind, prefix string, level logging.Level) (logging.LeveledBackend, error) {
	var backend logging.Backend
	switch strings.ToLower(kind) {
	case "", "syslog":
		s, err := NewSyslog(prefix)
		if err != nil {
			return nil, err
		}
		backend = s
	case "stderr":
		backend = newWriterBackend(os.Stderr, prefix)
	default:
		return nil, fmt.Errorf("unknown log backend: %v", kind)
	}

	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, logging.MustStringFormatter(Format)))
	// Set log level for all modules
	leveled.SetLevel(level, "")

	return leveled, nil
}

func newWriterBackend(w io.Writer, prefix string) logging.Backend {
	return logging.NewLogBackend(w, prefix+": ", 0)
}

// ParseLevel returns the level named by s, or def if s is not a valid level name.
func ParseLevel(s string, def logging.Level) (logging.Level, error) {
	level, err := logging.LogLevel(strings.ToUpper(s))
	if err != nil {
		return def, errors.Wrapf(err, "invalid log level %q", s)
	}

	return level, nil
}
