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

package transceiver

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// Length of the common OpenFlow header.
	headerLength = 8
)

// Stream is a buffered OpenFlow channel that reads one framed message at a time.
type Stream struct {
	channel io.ReadWriteCloser

	reader struct {
		mutex   sync.Mutex
		rd      *bufio.Reader
		timeout time.Duration
	}

	writer struct {
		mutex   sync.Mutex
		timeout time.Duration
	}
}

type deadline interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// NewStream returns a new buffered OpenFlow channel on top of channel.
func NewStream(channel io.ReadWriteCloser, bufSize int) *Stream {
	c := new(Stream)
	c.channel = channel
	c.reader.rd = bufio.NewReaderSize(channel, bufSize)

	return c
}

type dummyAddr struct{}

func (r dummyAddr) Network() string {
	return "DummyAddress"
}

func (r dummyAddr) String() string {
	return ""
}

func (r *Stream) RemoteAddr() net.Addr {
	v, ok := r.channel.(interface {
		RemoteAddr() net.Addr
	})
	if !ok {
		return dummyAddr{}
	}

	return v.RemoteAddr()
}

func (r *Stream) SetReadTimeout(t time.Duration) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	r.reader.timeout = t
}

func (r *Stream) SetWriteTimeout(t time.Duration) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	r.writer.timeout = t
}

// ReadMessage reads exactly one OpenFlow message. A timeout error leaves the partially
// received message in the buffer, so the caller can simply retry.
func (r *Stream) ReadMessage() ([]byte, error) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	r.setDeadline(func(d deadline, t time.Time) error { return d.SetReadDeadline(t) }, r.reader.timeout)
	header, err := r.reader.rd.Peek(headerLength)
	if err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(header[2:4]))
	if length < headerLength {
		return nil, errors.Wrapf(ErrInvalidPacketLength, "length=%v", length)
	}
	// Wait until we have the whole message in the reader.
	if _, err := r.reader.rd.Peek(length); err != nil {
		return nil, err
	}

	packet := make([]byte, length)
	if _, err := io.ReadFull(r.reader.rd, packet); err != nil {
		return nil, err
	}

	return packet, nil
}

func (r *Stream) setDeadline(set func(deadline, time.Time) error, timeout time.Duration) {
	d, ok := r.channel.(deadline)
	if !ok {
		return
	}

	t := time.Time{}
	if timeout > 0 {
		t = time.Now().Add(timeout)
	}
	if err := set(d, t); err != nil {
		logger.Debugf("failed to set the I/O deadline: %v", err)
	}
}

func (r *Stream) Write(p []byte) (n int, err error) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	r.setDeadline(func(d deadline, t time.Time) error { return d.SetWriteDeadline(t) }, r.writer.timeout)
	return r.channel.Write(p)
}

func (r *Stream) Close() error {
	return r.channel.Close()
}
