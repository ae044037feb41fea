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

// Mock of the Driver interface in driver.go.

package driver

import (
	reflect "reflect"
	time "time"

	gomock "go.uber.org/mock/gomock"
)

// MockDriver is a mock of the Driver interface, maintained by hand in the
// shape mockgen produces (see calnex/firmware and sptp/client's *_mock_test.go
// for the pattern this follows).
type MockDriver struct {
	ctrl     *gomock.Controller
	recorder *MockDriverMockRecorder
}

// MockDriverMockRecorder is the mock recorder for MockDriver.
type MockDriverMockRecorder struct {
	mock *MockDriver
}

// NewMockDriver creates a new mock instance.
func NewMockDriver(ctrl *gomock.Controller) *MockDriver {
	mock := &MockDriver{ctrl: ctrl}
	mock.recorder = &MockDriverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDriver) EXPECT() *MockDriverMockRecorder {
	return m.recorder
}

// WriteFrames mocks base method.
func (m *MockDriver) WriteFrames(b []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteFrames", b)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// WriteFrames indicates an expected call of WriteFrames.
func (mr *MockDriverMockRecorder) WriteFrames(b any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteFrames", reflect.TypeOf((*MockDriver)(nil).WriteFrames), b)
}

// WriteFramesNoBreak mocks base method.
func (m *MockDriver) WriteFramesNoBreak(b []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteFramesNoBreak", b)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// WriteFramesNoBreak indicates an expected call of WriteFramesNoBreak.
func (mr *MockDriverMockRecorder) WriteFramesNoBreak(b any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteFramesNoBreak", reflect.TypeOf((*MockDriver)(nil).WriteFramesNoBreak), b)
}

// ReadFrames mocks base method.
func (m *MockDriver) ReadFrames(buf []byte, timeout time.Duration) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadFrames", buf, timeout)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadFrames indicates an expected call of ReadFrames.
func (mr *MockDriverMockRecorder) ReadFrames(buf, timeout any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadFrames", reflect.TypeOf((*MockDriver)(nil).ReadFrames), buf, timeout)
}

// ReadFramesNoBreak mocks base method.
func (m *MockDriver) ReadFramesNoBreak(buf []byte, timeout time.Duration) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadFramesNoBreak", buf, timeout)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadFramesNoBreak indicates an expected call of ReadFramesNoBreak.
func (mr *MockDriverMockRecorder) ReadFramesNoBreak(buf, timeout any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadFramesNoBreak", reflect.TypeOf((*MockDriver)(nil).ReadFramesNoBreak), buf, timeout)
}
