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

package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
)

// fakeDriver scripts a fixed sequence of frames, mirroring the bus from the
// controller's point of view: ReadFrames starts the next frame and
// ReadFramesNoBreak continues the one in progress. It's simpler to script a
// multi-call scenario with than with driver.MockDriver's
// one-expectation-per-call style.
type fakeDriver struct {
	writes   [][]byte
	toRead   [][]byte
	readIdx  int
	pending  []byte
	reads    int
}

func (f *fakeDriver) WriteFrames(b []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (f *fakeDriver) WriteFramesNoBreak(b []byte) (int, error) {
	return f.WriteFrames(b)
}

func (f *fakeDriver) ReadFrames(buf []byte, _ time.Duration) (int, error) {
	f.reads++
	if f.readIdx >= len(f.toRead) {
		return 0, driver.ErrTimeout
	}
	frame := f.toRead[f.readIdx]
	f.readIdx++
	n := copy(buf, frame)
	f.pending = frame[n:]
	return n, nil
}

func (f *fakeDriver) ReadFramesNoBreak(buf []byte, _ time.Duration) (int, error) {
	f.reads++
	if len(f.pending) == 0 {
		return 0, driver.ErrTimeout
	}
	n := copy(buf, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func controllerUID() protocol.UID {
	return protocol.UID{ManufacturerID: 0x1234, DeviceID: 0x00000001}
}

func responderUID() protocol.UID {
	return protocol.UID{ManufacturerID: 0x1234, DeviceID: 0x56789ABC}
}

// ackResponse builds a well-formed Get-class Ack response addressed back to
// ctrlUID with the given transaction number and payload.
func ackResponse(t *testing.T, transaction uint8, pid protocol.ParameterID, payload []byte) []byte {
	t.Helper()
	return ackResponseCC(t, protocol.CommandClassGetResponse, transaction, pid, payload)
}

// ackResponseCC is ackResponse with an explicit response command class, for
// scenarios (like discovery) that aren't Get/Set.
func ackResponseCC(t *testing.T, commandClass protocol.CommandClass, transaction uint8, pid protocol.ParameterID, payload []byte) []byte {
	t.Helper()
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(controllerUID()),
		Source:            protocol.Device(responderUID()),
		TransactionNumber: transaction,
		CommandClass:      commandClass,
		ParameterID:       pid,
		ParameterData:     payload,
		IsResponse:        true,
		ResponseType:      protocol.ResponseTypeAck,
	})
	require.NoError(t, err)
	return raw
}

func Test_GetDeviceInfo(t *testing.T) {
	info := protocol.DeviceInfo{
		DeviceModelID:     1,
		ProductCategory:   0x0100,
		SoftwareVersionID: 42,
		DMXFootprint:      4,
		DMXPersonality:    1,
		DMXStartAddress:   protocol.NoDmxStartAddress(),
		SubDeviceCount:    0,
		SensorCount:       0,
	}
	fd := &fakeDriver{toRead: [][]byte{ackResponse(t, 1, protocol.PIDDeviceInfo, info.Bytes())}}
	c := New(controllerUID(), fd)

	got, err := c.GetDeviceInfo(responderUID())
	require.NoError(t, err)
	assert.Equal(t, info.DeviceModelID, got.DeviceModelID)
	assert.Equal(t, info.SoftwareVersionID, got.SoftwareVersionID)
	require.Len(t, fd.writes, 1)
}

func Test_RequestWasBroadcastSkipsRead(t *testing.T) {
	fd := &fakeDriver{}
	c := New(controllerUID(), fd)

	err := c.SetIdentifyDevice(protocol.BroadcastUID, true)
	require.ErrorIs(t, err, ErrRequestWasBroadcast)
	assert.Equal(t, 0, fd.reads) // never attempted a read
}

func Test_StaleTransactionIsDropped(t *testing.T) {
	stale := ackResponse(t, 200, protocol.PIDIdentifyDevice, []byte{1})
	fresh := ackResponse(t, 1, protocol.PIDIdentifyDevice, []byte{1})
	fd := &fakeDriver{toRead: [][]byte{stale, fresh}}
	c := New(controllerUID(), fd)

	on, err := c.GetIdentifyDevice(responderUID())
	require.NoError(t, err)
	assert.True(t, on)
}

func Test_NotAcknowledged(t *testing.T) {
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(controllerUID()),
		Source:            protocol.Device(responderUID()),
		TransactionNumber: 1,
		CommandClass:      protocol.CommandClassGetResponse,
		ParameterID:       protocol.PIDDeviceInfo,
		ParameterData:     []byte{0x00, byte(protocol.NackDataOutOfRange)},
		IsResponse:        true,
		ResponseType:      protocol.ResponseTypeNackReason,
	})
	require.NoError(t, err)
	fd := &fakeDriver{toRead: [][]byte{raw}}
	c := New(controllerUID(), fd)

	_, err = c.GetDeviceInfo(responderUID())
	var nack *NotAcknowledgedError
	require.ErrorAs(t, err, &nack)
	assert.Equal(t, protocol.NackDataOutOfRange, nack.Reason)
}

func Test_DiscMuteDecodesResponse(t *testing.T) {
	fd := &fakeDriver{toRead: [][]byte{ackResponseCC(t, protocol.CommandClassDiscoveryResponse, 1, protocol.PIDDiscMute, []byte{0x00, 0x00})}}
	c := New(controllerUID(), fd)

	resp, err := c.DiscMute(responderUID())
	require.NoError(t, err)
	assert.False(t, resp.ManagedProxy)

	require.Len(t, fd.writes, 1)
	sent, err := protocol.Deserialize(fd.writes[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.CommandClassDiscoveryRequest, sent.CommandClass)
}

func Test_DiscUnMuteUsesDiscoveryClass(t *testing.T) {
	fd := &fakeDriver{toRead: [][]byte{ackResponseCC(t, protocol.CommandClassDiscoveryResponse, 1, protocol.PIDDiscUnMute, []byte{0x00, 0x00})}}
	c := New(controllerUID(), fd)

	_, err := c.DiscUnMute(responderUID())
	require.NoError(t, err)

	require.Len(t, fd.writes, 1)
	sent, err := protocol.Deserialize(fd.writes[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.CommandClassDiscoveryRequest, sent.CommandClass)
}
