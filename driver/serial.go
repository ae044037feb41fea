/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package driver

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// BaudRate is the fixed DMX512/RDM line rate, ANSI E1.11 §3.1.
const BaudRate = 250000

// BreakDuration and MarkAfterBreak approximate the timings of ANSI E1.11
// Table 2 closely enough for software-generated breaks; real fixtures may
// need tuning per adapter.
const (
	BreakDuration  = 200 * time.Microsecond
	MarkAfterBreak = 48 * time.Microsecond
)

// Serial is the default Driver implementation, built on top of
// go.bug.st/serial the same way sa53fw/mac.Mac opens and drives its
// upgrade port: serial.Open with an explicit Mode, then plain Read/Write
// against the returned serial.Port.
type Serial struct {
	port serial.Port
}

// Open opens device at the fixed DMX512 line rate with 8 data bits, 2 stop
// bits, no parity (ANSI E1.11 §3.1's wire framing).
func Open(device string) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &Serial{port: port}, nil
}

// Close closes the underlying serial port.
func (s *Serial) Close() error {
	return s.port.Close()
}

func (s *Serial) writeBreak() error {
	if err := s.port.Break(BreakDuration); err != nil {
		return err
	}
	time.Sleep(MarkAfterBreak)
	return nil
}

// WriteFrames implements Driver.
func (s *Serial) WriteFrames(b []byte) (int, error) {
	if err := s.writeBreak(); err != nil {
		return 0, err
	}
	return s.WriteFramesNoBreak(b)
}

// WriteFramesNoBreak implements Driver.
func (s *Serial) WriteFramesNoBreak(b []byte) (int, error) {
	n, err := s.port.Write(b)
	if err != nil {
		return n, err
	}
	if n != len(b) {
		log.Warnf("rdm: short write, wrote %d of %d bytes", n, len(b))
		return n, ErrOverflow
	}
	return n, nil
}

// ReadFrames implements Driver. go.bug.st/serial has no break-detection
// API, so the break itself is not distinguished from line idle; callers
// rely on the timeout and the codec's start-code check instead.
func (s *Serial) ReadFrames(buf []byte, timeout time.Duration) (int, error) {
	return s.readWithTimeout(buf, timeout)
}

// ReadFramesNoBreak implements Driver.
func (s *Serial) ReadFramesNoBreak(buf []byte, timeout time.Duration) (int, error) {
	return s.readWithTimeout(buf, timeout)
}

func (s *Serial) readWithTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	n, err := s.port.Read(buf)
	if err != nil {
		if err == io.EOF {
			return n, ErrTimeout
		}
		return n, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}
