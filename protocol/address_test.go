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
)

func Test_PackageAddressFromBytes(t *testing.T) {
	broadcast := [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, Broadcast(), PackageAddressFromBytes(broadcast[:]))

	mfrBroadcast := [6]byte{0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, ManufacturerBroadcast(0x1234), PackageAddressFromBytes(mfrBroadcast[:]))

	device := [6]byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x01}
	want := Device(UID{ManufacturerID: 0x1234, DeviceID: 0x00000001})
	assert.Equal(t, want, PackageAddressFromBytes(device[:]))
}

func Test_PackageAddressFromUint64DecodesRealUID(t *testing.T) {
	uid := UID{ManufacturerID: 0x1234, DeviceID: 0x00000001}
	addr := PackageAddressFromUint64(uid.ToUint64())
	assert.Equal(t, AddressDevice, addr.Kind)
	assert.Equal(t, uid, addr.UID)
	assert.NotEqual(t, UID{}, addr.UID, "must decode the real UID, not a zeroed placeholder")
}

func Test_IsBroadcast(t *testing.T) {
	assert.True(t, Broadcast().IsBroadcast())
	assert.True(t, ManufacturerBroadcast(0x1234).IsBroadcast())
	assert.False(t, Device(UID{ManufacturerID: 1, DeviceID: 1}).IsBroadcast())
}

func Test_UIDBytesRoundTrip(t *testing.T) {
	uid := UID{ManufacturerID: 0xABCD, DeviceID: 0x12345678}
	b := uid.Bytes()
	assert.Equal(t, uid, UIDFromBytes(b[:]))

	v := uid.ToUint64()
	assert.Equal(t, uid, UIDFromUint64(v))
}

func Test_BroadcastAddressBytes(t *testing.T) {
	b := Broadcast().Bytes()
	assert.Equal(t, [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, b)

	mb := ManufacturerBroadcast(0x1234).Bytes()
	assert.Equal(t, [6]byte{0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF}, mb)
}
