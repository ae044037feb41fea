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

package responder

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
)

// queueDriver hands back one scripted inbound frame per ReadFrames call and
// records every WriteFrames payload, enough to drive the responder through
// a request/response cycle without a real bus.
type queueDriver struct {
	inbound  [][]byte
	idx      int
	outbound [][]byte
}

func (q *queueDriver) WriteFrames(b []byte) (int, error) {
	q.outbound = append(q.outbound, append([]byte(nil), b...))
	return len(b), nil
}

func (q *queueDriver) WriteFramesNoBreak(b []byte) (int, error) { return q.WriteFrames(b) }

func (q *queueDriver) ReadFrames(buf []byte, _ time.Duration) (int, error) {
	if q.idx >= len(q.inbound) {
		return 0, driver.ErrTimeout
	}
	frame := q.inbound[q.idx]
	q.idx++
	return copy(buf, frame), nil
}

func (q *queueDriver) ReadFramesNoBreak(buf []byte, timeout time.Duration) (int, error) {
	return q.ReadFrames(buf, timeout)
}

func respUID() protocol.UID    { return protocol.UID{ManufacturerID: 0x1234, DeviceID: 0x56789ABC} }
func ctrlUID() protocol.UID    { return protocol.UID{ManufacturerID: 0x1234, DeviceID: 0x00000001} }

func getRequest(t *testing.T, pid protocol.ParameterID, payload []byte) []byte {
	t.Helper()
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(respUID()),
		Source:            protocol.Device(ctrlUID()),
		TransactionNumber: 7,
		CommandClass:      protocol.CommandClassGetRequest,
		ParameterID:       pid,
		ParameterData:     payload,
	})
	require.NoError(t, err)
	return raw
}

func setRequest(t *testing.T, pid protocol.ParameterID, payload []byte) []byte {
	t.Helper()
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(respUID()),
		Source:            protocol.Device(ctrlUID()),
		TransactionNumber: 9,
		CommandClass:      protocol.CommandClassSetRequest,
		ParameterID:       pid,
		ParameterData:     payload,
	})
	require.NoError(t, err)
	return raw
}

func discRequest(t *testing.T, pid protocol.ParameterID, payload []byte) []byte {
	t.Helper()
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(respUID()),
		Source:            protocol.Device(ctrlUID()),
		TransactionNumber: 3,
		CommandClass:      protocol.CommandClassDiscoveryRequest,
		ParameterID:       pid,
		ParameterData:     payload,
	})
	require.NoError(t, err)
	return raw
}

// S3 — overflow continuation.
func Test_S3_SupportedParametersOverflow(t *testing.T) {
	extra := make([]protocol.ParameterID, 200)
	for i := range extra {
		extra[i] = protocol.ParameterID(0x8000 + i)
	}
	q := &queueDriver{inbound: [][]byte{
		getRequest(t, protocol.PIDSupportedParameters, nil),
		getRequest(t, protocol.PIDSupportedParameters, nil),
	}}
	s := New(respUID(), q, nil, DeviceInfo{})
	s.SupportedParameters = extra

	_, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 1)
	first, err := protocol.Deserialize(q.outbound[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseTypeAckOverflow, first.ResponseType)
	assert.True(t, s.paging.active)

	_, err = s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 2)
	second, err := protocol.Deserialize(q.outbound[1])
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseTypeAck, second.ResponseType)
	assert.False(t, s.paging.active)
}

// S4 — queued message pop, then empty-queue fallback to STATUS_MESSAGES.
func Test_S4_QueuedMessage(t *testing.T) {
	q := &queueDriver{inbound: [][]byte{
		getRequest(t, protocol.PIDQueuedMessage, []byte{byte(protocol.StatusError)}),
		getRequest(t, protocol.PIDQueuedMessage, []byte{byte(protocol.StatusError)}),
	}}
	s := New(respUID(), q, nil, DeviceInfo{})
	s.PushQueuedMessage(protocol.RdmData{
		CommandClass:  protocol.CommandClassGetResponse,
		ParameterID:   protocol.PIDDeviceInfo,
		ParameterData: []byte{0xAA},
		IsResponse:    true,
		ResponseType:  protocol.ResponseTypeAck,
	})

	_, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 1)
	first, err := protocol.Deserialize(q.outbound[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.PIDDeviceInfo, first.ParameterID)
	assert.Equal(t, uint8(7), first.TransactionNumber)
	assert.Equal(t, uint8(0), first.MessageCount)

	_, err = s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 2)
	second, err := protocol.Deserialize(q.outbound[1])
	require.NoError(t, err)
	assert.Equal(t, protocol.PIDStatusMessages, second.ParameterID)
	assert.Empty(t, second.ParameterData)
}

// S5 — out-of-range DMX start address set is rejected and state unchanged.
func Test_S5_SetStartAddressOutOfRange(t *testing.T) {
	q := &queueDriver{inbound: [][]byte{
		setRequest(t, protocol.PIDDMXStartAddress, []byte{0x02, 0x01}), // 513
	}}
	s := New(respUID(), q, nil, DeviceInfo{})
	before := s.dmxStartAddress

	_, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 1)
	resp, err := protocol.Deserialize(q.outbound[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseTypeNackReason, resp.ResponseType)
	assert.Equal(t, protocol.NackDataOutOfRange, protocol.NackReason(binary.BigEndian.Uint16(resp.ParameterData)))
	assert.Equal(t, before, s.dmxStartAddress)
}

// S6 — DISC_MUTE reply and subsequent silenced DISC_UNIQUE_BRANCH.
func Test_S6_DiscMuteSilencesDiscovery(t *testing.T) {
	branch := make([]byte, 12)
	lo := protocol.UIDFromUint64(0).Bytes()
	hi := protocol.UIDFromUint64(0xFFFFFFFFFFFE).Bytes()
	copy(branch[0:6], lo[:])
	copy(branch[6:12], hi[:])

	q := &queueDriver{inbound: [][]byte{
		discRequest(t, protocol.PIDDiscMute, nil),
		discRequest(t, protocol.PIDDiscUniqueBranch, branch),
	}}
	s := New(respUID(), q, nil, DeviceInfo{})

	_, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, q.outbound, 1)
	resp, err := protocol.Deserialize(q.outbound[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, resp.ParameterData)
	assert.True(t, s.discoveryMuted)

	_, err = s.Poll()
	require.NoError(t, err)
	assert.Len(t, q.outbound, 1) // still just the mute reply; branch was silenced
}

func Test_AddressFilterRejectsForeignUID(t *testing.T) {
	foreign := protocol.UID{ManufacturerID: 0x9999, DeviceID: 1}
	raw, err := protocol.Serialize(protocol.RdmData{
		Destination:       protocol.Device(foreign),
		Source:            protocol.Device(ctrlUID()),
		TransactionNumber: 1,
		CommandClass:      protocol.CommandClassGetRequest,
		ParameterID:       protocol.PIDDeviceInfo,
	})
	require.NoError(t, err)
	q := &queueDriver{inbound: [][]byte{raw}}
	s := New(respUID(), q, nil, DeviceInfo{})

	_, err = s.Poll()
	require.NoError(t, err)
	assert.Empty(t, q.outbound)
}
