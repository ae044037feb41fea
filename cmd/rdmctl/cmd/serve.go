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

package cmd

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
	"github.com/facebook/go-rdm/responder"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a responder, answering requests from the configured serial port",
		RunE:  runServeCmd,
	}
	RootCmd.AddCommand(cmd)
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	ConfigureVerbosity()

	profile, err := loadProfile()
	if err != nil {
		return err
	}
	uid, err := profile.ParsedControllerUID()
	if err != nil {
		return err
	}

	port, err := driver.Open(profile.Port)
	if err != nil {
		return fmt.Errorf("opening %s: %w", profile.Port, err)
	}
	defer port.Close()

	metrics := responder.NewMetrics()
	info := responder.DeviceInfo{
		DeviceModelID:     profile.Responder.DeviceModelID,
		ProductCategory:   profile.Responder.ProductCategory,
		SoftwareVersionID: profile.Responder.SoftwareVersionID,
		SoftwareVersion:   profile.Responder.SoftwareVersion,
		DMXFootprint:      profile.Responder.DMXFootprint,
	}
	state := responder.New(uid, port, responder.NopHandler{}, info)
	state.Metrics = metrics
	for _, pid := range profile.Responder.SupportedParameters {
		state.SupportedParameters = append(state.SupportedParameters, protocol.ParameterID(pid))
	}

	if profile.MetricsPort > 0 {
		addr := fmt.Sprintf(":%d", profile.MetricsPort)
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
			log.Warnf("serving prometheus metrics on %s", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Errorf("metrics server stopped: %v", err)
			}
		}()
	}

	log.Infof("responder listening on %s as %s", profile.Port, uid)
	for {
		if _, err := state.Poll(); err != nil {
			log.Errorf("poll error: %v", err)
		}
	}
}
