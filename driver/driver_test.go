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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_MockDriverSatisfiesInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := NewMockDriver(ctrl)
	var d Driver = m

	m.EXPECT().WriteFrames(gomock.Any()).Return(4, nil)
	n, err := d.WriteFrames([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	m.EXPECT().ReadFrames(gomock.Any(), gomock.Any()).Return(0, ErrTimeout)
	_, err = d.ReadFrames(make([]byte, 8), 2800*time.Microsecond)
	assert.ErrorIs(t, err, ErrTimeout)
}
