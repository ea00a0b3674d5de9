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
	"context"
	"encoding"
	"sync"
	"time"

	"github.com/mirage-sdn/mirage/openflow/of13"

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("transceiver")
)

const (
	// Allowed idle time before we send an echo request to a switch.
	maxIdleTime = 10 * time.Second
	// I/O timeouts (These timeouts should be less than maxIdleTime).
	readTimeout  = 1 * time.Second
	writeTimeout = readTimeout * 2
	// A switch should send its HELLO within this time.
	helloTimeout = 30 * time.Second
	// Number of unanswered echo requests before we give up the switch.
	maxPendingEcho = 3
)

var (
	ErrUnsupportedVersion  = errors.New("unsupported OpenFlow version")
	ErrInvalidPacketLength = errors.New("invalid OpenFlow packet length")
	ErrMissingHello        = errors.New("missing HELLO message")
)

type Writer interface {
	Write(msg encoding.BinaryMarshaler) error
}

type Handler interface {
	OnHello(Writer, *common.Hello) error
	OnError(Writer, *openflow13.ErrorMsg) error
	OnFeaturesReply(Writer, *openflow13.SwitchFeatures) error
	OnPacketIn(Writer, *of13.PacketIn) error
}

// Transceiver runs the OpenFlow 1.3 message loop of a single switch connection.
type Transceiver struct {
	stream   *Stream
	observer Handler

	mutex       sync.Mutex
	pingCounter uint
	closed      bool
}

func NewTransceiver(stream *Stream, handler Handler) *Transceiver {
	if stream == nil {
		panic("stream is nil")
	}
	if handler == nil {
		panic("handler is nil")
	}

	return &Transceiver{
		stream:   stream,
		observer: handler,
	}
}

func isTimeout(err error) bool {
	v, ok := errors.Cause(err).(interface {
		Timeout() bool
	})

	return ok && v.Timeout()
}

// Run sends our HELLO, negotiates the protocol version, and then dispatches the incoming
// messages to the handler until ctx is canceled or the connection is closed.
func (r *Transceiver) Run(ctx context.Context) error {
	defer logger.Info("transceiver is closed")
	defer r.Close()

	r.stream.SetReadTimeout(readTimeout)
	r.stream.SetWriteTimeout(writeTimeout)

	hello, err := common.NewHello(int(openflow13.VERSION))
	if err != nil {
		return err
	}
	if err := r.Write(hello); err != nil {
		return errors.Wrap(err, "failed to send HELLO message")
	}

	readerCtx, cancelReader := context.WithCancel(ctx)
	defer cancelReader()
	reader := r.runReader(readerCtx)

	packet, err := r.negotiate(ctx, reader)
	if err != nil {
		return errors.Wrap(err, "failed to negotiate the protocol version")
	}

	for {
		if err := r.dispatch(packet); err != nil {
			return err
		}

		var ok bool
		select {
		case <-ctx.Done():
			logger.Info("context done")
			return nil
		case packet, ok = <-reader:
			if !ok {
				logger.Info("the reader channel is closed")
				return nil
			}
		}
	}
}

func (r *Transceiver) negotiate(ctx context.Context, reader <-chan []byte) (packet []byte, err error) {
	select {
	case <-ctx.Done():
		return nil, errors.New("context done")
	case <-time.After(helloTimeout):
		return nil, errors.New("inactive for too long")
	case packet, ok := <-reader:
		if !ok {
			return nil, errors.New("the reader channel is closed")
		}
		// The first message should be HELLO.
		if packet[1] != openflow13.Type_Hello {
			return nil, ErrMissingHello
		}
		// We only speak OpenFlow 1.3.
		if packet[0] < openflow13.VERSION {
			return nil, errors.Wrapf(ErrUnsupportedVersion, "version=%v", packet[0])
		}
		logger.Info("negotiated to openflow version 1.3")

		// Return the initial packet to dispatch it.
		return packet, nil
	}
}

func (r *Transceiver) runReader(ctx context.Context) <-chan []byte {
	c := make(chan []byte, 4096)
	go func() {
		// Closing c notifies the dispatcher that the connection has been closed.
		defer close(c)
		defer logger.Info("transceiver reader is closed")

		lastActivated := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			packet, err := r.stream.ReadMessage()
			if err != nil {
				if !isTimeout(err) {
					logger.Errorf("failed to read the next packet: %v", err)
					return
				}
				if time.Since(lastActivated) > maxIdleTime {
					if err := r.sendEchoRequest(); err != nil {
						logger.Errorf("failed to send an echo request: %v", err)
						return
					}
					lastActivated = time.Now()
				}
				continue
			}
			lastActivated = time.Now()

			ok, err := r.handleEcho(packet)
			if err != nil {
				logger.Errorf("failed to handle the echo request or response: %v", err)
				return
			}
			if ok {
				continue
			}

			select {
			case c <- packet:
			default:
				logger.Error("transceiver buffer full: drop the incoming packet!")
			}
		}
	}()

	return c
}

func (r *Transceiver) sendEchoRequest() error {
	r.mutex.Lock()
	if r.pingCounter >= maxPendingEcho {
		r.mutex.Unlock()
		return errors.New("device does not respond to our echo request")
	}
	r.pingCounter++
	r.mutex.Unlock()

	if err := r.Write(openflow13.NewEchoRequest()); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REQUEST message")
	}

	return nil
}

// handleEcho answers an echo request by echoing the message back with the reply type, which keeps
// its transaction ID and data.
func (r *Transceiver) handleEcho(packet []byte) (handled bool, err error) {
	switch packet[1] {
	case openflow13.Type_EchoRequest:
		logger.Debug("received an ECHO_REQUEST packet")
		reply := make([]byte, len(packet))
		copy(reply, packet)
		reply[1] = openflow13.Type_EchoReply
		if _, err := r.stream.Write(reply); err != nil {
			return true, errors.Wrap(err, "failed to send ECHO_REPLY message")
		}
		return true, nil
	case openflow13.Type_EchoReply:
		logger.Debug("received an ECHO_REPLY packet")
		r.mutex.Lock()
		r.pingCounter = 0
		r.mutex.Unlock()
		return true, nil
	default:
		return false, nil
	}
}

func (r *Transceiver) dispatch(packet []byte) error {
	if packet[0] != openflow13.VERSION && packet[1] != openflow13.Type_Hello {
		logger.Errorf("mis-matched OpenFlow version: negotiated=%v, packet=%v", openflow13.VERSION, packet[0])
		return nil
	}

	switch packet[1] {
	case openflow13.Type_Hello:
		return r.handleHello(packet)
	case openflow13.Type_PacketIn:
		msg, err := of13.ParsePacketIn(packet)
		if err != nil {
			logger.Errorf("failed to decode PACKET_IN: %v", err)
			return nil
		}
		return r.observer.OnPacketIn(r, msg)
	case openflow13.Type_Error, openflow13.Type_FeaturesReply:
		msg, err := openflow13.Parse(packet)
		if err != nil {
			// A broken message is not a reason to disconnect the switch.
			logger.Errorf("failed to decode the OpenFlow message (type=%v): %v", packet[1], err)
			return nil
		}
		return r.handleMessage(msg)
	default:
		logger.Debugf("ignoring the unsupported OpenFlow message: type=%v", packet[1])
		return nil
	}
}

func (r *Transceiver) handleHello(packet []byte) error {
	// Only the common header is needed; version bitmap elements are ignored.
	msg := new(common.Hello)
	if err := msg.Header.UnmarshalBinary(packet[:headerLength]); err != nil {
		return err
	}

	return r.observer.OnHello(r, msg)
}

func (r *Transceiver) handleMessage(msg util.Message) error {
	switch v := msg.(type) {
	case *openflow13.ErrorMsg:
		return r.observer.OnError(r, v)
	case *openflow13.SwitchFeatures:
		return r.observer.OnFeaturesReply(r, v)
	default:
		logger.Debugf("ignoring the unexpected OpenFlow message: %T", msg)
		return nil
	}
}

func (r *Transceiver) Write(msg encoding.BinaryMarshaler) error {
	packet, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := r.stream.Write(packet); err != nil {
		return err
	}

	return nil
}

func (r *Transceiver) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil
	}
	if err := r.stream.Close(); err != nil {
		return err
	}
	r.closed = true

	return nil
}
