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

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/op/go-logging"
)

type fakeWriter struct {
	lines map[string][]string
}

func (r *fakeWriter) add(level, m string) error {
	if r.lines == nil {
		r.lines = make(map[string][]string)
	}
	r.lines[level] = append(r.lines[level], m)
	return nil
}

func (r *fakeWriter) Crit(m string) error    { return r.add("crit", m) }
func (r *fakeWriter) Err(m string) error     { return r.add("err", m) }
func (r *fakeWriter) Warning(m string) error { return r.add("warning", m) }
func (r *fakeWriter) Notice(m string) error  { return r.add("notice", m) }
func (r *fakeWriter) Info(m string) error    { return r.add("info", m) }
func (r *fakeWriter) Debug(m string) error   { return r.add("debug", m) }

func TestSyslogLevels(t *testing.T) {
	w := &fakeWriter{}
	backend := logging.AddModuleLevel(logging.NewBackendFormatter(&Syslog{writer: w}, logging.MustStringFormatter(Format)))
	backend.SetLevel(logging.INFO, "")
	logger := logging.MustGetLogger("test")
	logger.SetBackend(backend)

	logger.Debug("hidden")
	logger.Info("hello")
	logger.Warningf("port %v is down", 3)
	logger.Error("failure")

	src := []struct {
		level string
		count int
		text  string
	}{
		{"debug", 0, ""},
		{"info", 1, "INFO: log.TestSyslogLevels: hello (TID="},
		{"warning", 1, "WARNING: log.TestSyslogLevels: port 3 is down"},
		{"err", 1, "ERROR: log.TestSyslogLevels: failure"},
	}
	for _, v := range src {
		lines := w.lines[v.level]
		if len(lines) != v.count {
			t.Fatalf("unexpected number of %v lines: expected=%v, actual=%v", v.level, v.count, len(lines))
		}
		if v.count > 0 && !strings.HasPrefix(lines[0], v.text) {
			t.Fatalf("unexpected %v line: expected prefix=%q, actual=%q", v.level, v.text, lines[0])
		}
	}
}

func TestWriterBackend(t *testing.T) {
	buf := &bytes.Buffer{}
	backend := logging.AddModuleLevel(logging.NewBackendFormatter(newWriterBackend(buf, "mirage"), logging.MustStringFormatter(Format)))
	backend.SetLevel(logging.WARNING, "")
	logger := logging.MustGetLogger("test")
	logger.SetBackend(backend)

	logger.Info("hidden")
	logger.Warning("visible")

	expected := "mirage: WARNING: log.TestWriterBackend: visible\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output: expected=%q, actual=%q", expected, buf.String())
	}
}

func TestNewBackendUnknown(t *testing.T) {
	if _, err := NewBackend("kafka", "mirage", logging.INFO); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestParseLevel(t *testing.T) {
	src := []struct {
		name     string
		expected logging.Level
		err      bool
	}{
		{"debug", logging.DEBUG, false},
		{"WARNING", logging.WARNING, false},
		{"Critical", logging.CRITICAL, false},
		{"verbose", logging.INFO, true},
		{"", logging.INFO, true},
	}

	for _, v := range src {
		level, err := ParseLevel(v.name, logging.INFO)
		if (err != nil) != v.err {
			t.Fatalf("unexpected error for %q: %v", v.name, err)
		}
		if level != v.expected {
			t.Fatalf("unexpected level for %q: expected=%v, actual=%v", v.name, v.expected, level)
		}
	}
}
