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

// Package config loads the rdmctl CLI's YAML session profile: which serial
// device to open, the controller's own UID, and -- for `serve` -- the
// static device identity and parameter list a responder should advertise.
// The protocol engines themselves stay config-file-free; only this CLI layer
// reads a profile.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/go-rdm/protocol"
)

// ResponderConfig is the static device identity used only by `rdmctl serve`.
type ResponderConfig struct {
	DeviceModelID       uint16   `yaml:"device_model_id"`
	ProductCategory     uint16   `yaml:"product_category"`
	SoftwareVersionID   uint32   `yaml:"software_version_id"`
	SoftwareVersion     string   `yaml:"software_version"`
	DMXFootprint        uint16   `yaml:"dmx_footprint"`
	SupportedParameters []uint16 `yaml:"supported_parameters"`
}

// Profile is the root of an rdmctl session's YAML configuration.
type Profile struct {
	Port           string           `yaml:"port"`
	Baud           int              `yaml:"baud"`
	LogLevel       string           `yaml:"log_level"`
	ControllerUID  string           `yaml:"controller_uid"` // "MMMM:DDDDDDDD" hex
	MetricsPort    int              `yaml:"metrics_port"`
	Responder      ResponderConfig  `yaml:"responder"`
}

// DefaultProfile returns a Profile initialized with sane defaults, mirroring
// sptp/client.DefaultConfig's role: a usable starting point before
// overrides from file or CLI flags.
func DefaultProfile() *Profile {
	return &Profile{
		Port:          "/dev/ttyUSB0",
		Baud:          250000,
		LogLevel:      "info",
		ControllerUID: "7FF0:00000001",
		MetricsPort:   8080,
	}
}

// Load reads and parses a YAML profile from path, applying it on top of
// DefaultProfile.
func Load(path string) (*Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %q: %w", path, err)
	}
	return p, nil
}

// Validate checks the profile is sane enough to open a session with.
func (p *Profile) Validate() error {
	if p.Port == "" {
		return fmt.Errorf("port must be specified")
	}
	if p.Baud <= 0 {
		return fmt.Errorf("baud must be positive")
	}
	if _, err := p.ParsedControllerUID(); err != nil {
		return fmt.Errorf("invalid controller_uid: %w", err)
	}
	if p.MetricsPort < 0 {
		return fmt.Errorf("metrics_port must be 0 or positive")
	}
	return nil
}

// ParsedControllerUID parses ControllerUID's "MMMM:DDDDDDDD" hex form.
func (p *Profile) ParsedControllerUID() (protocol.UID, error) {
	var mfr uint16
	var dev uint32
	n, err := fmt.Sscanf(p.ControllerUID, "%04X:%08X", &mfr, &dev)
	if err != nil || n != 2 {
		return protocol.UID{}, fmt.Errorf("expected MMMM:DDDDDDDD hex, got %q", p.ControllerUID)
	}
	return protocol.UID{ManufacturerID: mfr, DeviceID: dev}, nil
}
