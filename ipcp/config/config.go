// Copyright 2024 The RINA Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the configuration of an IPC process: its identity
// within the DIF, the EFCP configuration assigned to the DIF, and the
// tuning of the flow allocator.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rinaproto/rina/ipcp/flowalloc"
	"github.com/rinaproto/rina/pkg/log"
	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
)

// Duration is a time.Duration with TOML text marshaling.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the root configuration of an IPCP.
type Config struct {
	Logging       log.Config     `toml:"log,omitempty"`
	Metrics       Metrics        `toml:"metrics,omitempty"`
	IPCP          IPCP           `toml:"ipcp,omitempty"`
	FlowAllocator FlowAllocator  `toml:"flow_allocator,omitempty"`
	EFCP          EFCP           `toml:"efcp,omitempty"`
	QoSCubes      []QoSCube      `toml:"qos_cube,omitempty"`
}

// InitDefaults populates unset fields with default values.
func (cfg *Config) InitDefaults() {
	cfg.Logging.InitDefaults()
	cfg.FlowAllocator.InitDefaults()
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.IPCP.DIFName == "" {
		return serrors.New("dif_name must be set")
	}
	if cfg.IPCP.Address == 0 {
		return serrors.New("address must not be zero")
	}
	if cfg.IPCP.ProcessName == "" {
		return serrors.New("process_name must be set")
	}
	seen := make(map[string]struct{}, len(cfg.QoSCubes))
	for _, cube := range cfg.QoSCubes {
		if cube.Name == "" {
			return serrors.New("qos_cube name must be set")
		}
		if _, ok := seen[cube.Name]; ok {
			return serrors.New("duplicate qos_cube name", "name", cube.Name)
		}
		seen[cube.Name] = struct{}{}
	}
	return nil
}

// Metrics configures the metrics endpoint.
type Metrics struct {
	// Prometheus is the address to serve the prometheus metrics on.
	// Metrics are disabled if empty.
	Prometheus string `toml:"prometheus,omitempty"`
}

// IPCP identifies the IPC process within its DIF.
type IPCP struct {
	ProcessName     string `toml:"process_name,omitempty"`
	ProcessInstance string `toml:"process_instance,omitempty"`
	DIFName         string `toml:"dif_name,omitempty"`
	Address         uint32 `toml:"address,omitempty"`
}

// AppName returns the naming information of the IPCP.
func (i IPCP) AppName() rina.AppName {
	return rina.AppName{
		ProcessName:     i.ProcessName,
		ProcessInstance: i.ProcessInstance,
	}
}

// FlowAllocator tunes the flow allocator.
type FlowAllocator struct {
	HopCount             int32    `toml:"hop_count,omitempty"`
	MaxCreateFlowRetries int32    `toml:"max_create_flow_retries,omitempty"`
	TeardownDelay        Duration `toml:"teardown_delay,omitempty"`
	PeerResponseTimeout  Duration `toml:"peer_response_timeout,omitempty"`
	// DirectoryTTL is the lifetime of directory entries learned from
	// peers. Zero disables expiry.
	DirectoryTTL Duration `toml:"directory_ttl,omitempty"`
}

// InitDefaults populates unset fields with default values.
func (cfg *FlowAllocator) InitDefaults() {
	if cfg.HopCount == 0 {
		cfg.HopCount = flowalloc.DefaultHopCount
	}
	if cfg.MaxCreateFlowRetries == 0 {
		cfg.MaxCreateFlowRetries = flowalloc.DefaultMaxCreateFlowRetries
	}
	if cfg.TeardownDelay == 0 {
		cfg.TeardownDelay = Duration(flowalloc.DefaultTeardownDelay)
	}
}

// EFCP carries the data-transfer constants of the DIF.
type EFCP struct {
	AddressLength        uint16 `toml:"address_length,omitempty"`
	CEPIDLength          uint16 `toml:"cep_id_length,omitempty"`
	LengthLength         uint16 `toml:"length_length,omitempty"`
	PortIDLength         uint16 `toml:"port_id_length,omitempty"`
	QoSIDLength          uint16 `toml:"qos_id_length,omitempty"`
	SequenceNumberLength uint16 `toml:"sequence_number_length,omitempty"`
	MaxPDUSize           uint32 `toml:"max_pdu_size,omitempty"`
	MaxPDULifetime       uint32 `toml:"max_pdu_lifetime,omitempty"`
	DIFIntegrity         bool   `toml:"dif_integrity,omitempty"`
}

// QoSCube configures one cube of the DIF.
type QoSCube struct {
	ID                     uint32  `toml:"id,omitempty"`
	Name                   string  `toml:"name,omitempty"`
	AverageBandwidth       uint32  `toml:"average_bandwidth,omitempty"`
	AverageSDUBandwidth    uint32  `toml:"average_sdu_bandwidth,omitempty"`
	UndetectedBitErrorRate float64 `toml:"undetected_bit_error_rate,omitempty"`
	PartialDelivery        bool    `toml:"partial_delivery,omitempty"`
	OrderedDelivery        bool    `toml:"ordered_delivery,omitempty"`
	MaxAllowableGap        int32   `toml:"max_allowable_gap,omitempty"`
	Delay                  uint32  `toml:"delay,omitempty"`
	Jitter                 uint32  `toml:"jitter,omitempty"`
	DTCPPresent            bool    `toml:"dtcp_present,omitempty"`
	RtxControl             bool    `toml:"rtx_control,omitempty"`
	FlowControl            bool    `toml:"flow_control,omitempty"`
	InitialATimer          uint32  `toml:"initial_a_timer,omitempty"`
}

// Load reads and validates the configuration from a TOML file.
func Load(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, serrors.Wrap("reading config file", err, "path", path)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, serrors.Wrap("parsing config file", err, "path", path)
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, serrors.Wrap("validating config", err, "path", path)
	}
	return cfg, nil
}

// DIFConfig maps the configuration to the DIF configuration handed to the
// flow allocator.
func (cfg Config) DIFConfig() rina.DIFConfig {
	cubes := make([]*rina.QoSCube, 0, len(cfg.QoSCubes))
	for _, c := range cfg.QoSCubes {
		cubes = append(cubes, &rina.QoSCube{
			ID:                     c.ID,
			Name:                   c.Name,
			AverageBandwidth:       c.AverageBandwidth,
			AverageSDUBandwidth:    c.AverageSDUBandwidth,
			UndetectedBitErrorRate: c.UndetectedBitErrorRate,
			PartialDelivery:        c.PartialDelivery,
			OrderedDelivery:        c.OrderedDelivery,
			MaxAllowableGap:        c.MaxAllowableGap,
			Delay:                  c.Delay,
			Jitter:                 c.Jitter,
			EFCPPolicies: rina.ConnPolicies{
				DTCPPresent: c.DTCPPresent,
				DTCP: rina.DTCPConfig{
					FlowControl:   c.FlowControl,
					RtxControl:    c.RtxControl,
					InitialATimer: c.InitialATimer,
				},
				InOrderDelivery: c.OrderedDelivery,
				PartialDelivery: c.PartialDelivery,
				MaxSDUGap:       c.MaxAllowableGap,
			},
		})
	}
	return rina.DIFConfig{
		EFCP: rina.EFCPConfig{
			QoSCubes: cubes,
			DataTransferConstants: rina.DataTransferConstants{
				AddressLength:        cfg.EFCP.AddressLength,
				CEPIDLength:          cfg.EFCP.CEPIDLength,
				LengthLength:         cfg.EFCP.LengthLength,
				PortIDLength:         cfg.EFCP.PortIDLength,
				QoSIDLength:          cfg.EFCP.QoSIDLength,
				SequenceNumberLength: cfg.EFCP.SequenceNumberLength,
				MaxPDUSize:           cfg.EFCP.MaxPDUSize,
				MaxPDULifetime:       cfg.EFCP.MaxPDULifetime,
				DIFIntegrity:         cfg.EFCP.DIFIntegrity,
			},
		},
	}
}

// FlowAllocatorConfig maps the configuration to the flow allocator tuning.
func (cfg Config) FlowAllocatorConfig() flowalloc.Config {
	return flowalloc.Config{
		DIFName:              cfg.IPCP.DIFName,
		Address:              cfg.IPCP.Address,
		TeardownDelay:        time.Duration(cfg.FlowAllocator.TeardownDelay),
		PeerResponseTimeout:  time.Duration(cfg.FlowAllocator.PeerResponseTimeout),
		HopCount:             cfg.FlowAllocator.HopCount,
		MaxCreateFlowRetries: cfg.FlowAllocator.MaxCreateFlowRetries,
	}
}
