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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DmxStartAddressWire(t *testing.T) {
	none := NoDmxStartAddress()
	assert.Equal(t, uint16(0xFFFF), none.ToWire())

	addr, err := NewDmxStartAddress(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), addr.ToWire())

	addr512, err := NewDmxStartAddress(512)
	require.NoError(t, err)
	assert.Equal(t, uint16(512), addr512.ToWire())

	_, err = NewDmxStartAddress(513)
	require.Error(t, err)

	_, err = NewDmxStartAddress(0)
	require.Error(t, err)

	decodedNone, err := DmxStartAddressFromWire(0xFFFF)
	require.NoError(t, err)
	assert.Equal(t, none, decodedNone)

	_, err = DmxStartAddressFromWire(513)
	require.Error(t, err)
}

func Test_StatusTypeFromByte(t *testing.T) {
	st, ok := StatusTypeFromByte(0x14)
	require.True(t, ok)
	assert.Equal(t, StatusErrorCleared, st, "0x14 must map to ErrorCleared, not the source's WarningCleared typo")

	_, ok = StatusTypeFromByte(0x99)
	assert.False(t, ok)
}

func Test_StatusMessageRoundTrip(t *testing.T) {
	m := StatusMessage{
		SubDeviceID:     0,
		StatusType:      StatusError,
		StatusMessageID: 0x0001,
		DataValue1:      0x1234,
		DataValue2:      0x5678,
	}
	b := m.Bytes()
	assert.Len(t, b, StatusMessageWireSize)
	got, err := StatusMessageFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func Test_DiscoveryMuteResponseRoundTrip(t *testing.T) {
	noBinding := DiscoveryMuteResponse{}
	b := noBinding.Bytes()
	assert.Len(t, b, 2)
	got, err := DiscoveryMuteResponseFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, noBinding, got)

	uid := UID{ManufacturerID: 0x1234, DeviceID: 0x1}
	withBinding := DiscoveryMuteResponse{ManagedProxy: true, ProxyDevice: true, BindingUID: &uid}
	b2 := withBinding.Bytes()
	assert.Len(t, b2, 8)
	got2, err := DiscoveryMuteResponseFromBytes(b2)
	require.NoError(t, err)
	require.NotNil(t, got2.BindingUID)
	assert.Equal(t, uid, *got2.BindingUID)
	assert.True(t, got2.ManagedProxy)
	assert.True(t, got2.ProxyDevice)
}

func Test_DiscoveryMuteResponseS6Vector(t *testing.T) {
	// S6: all flags false, no binding UID.
	d := DiscoveryMuteResponse{}
	assert.Equal(t, []byte{0x00, 0x00}, d.Bytes())
}
