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

// Command ipcpd runs the management shell of an IPC process: it loads the
// DIF configuration, populates the RIB and serves diagnostics and metrics.
// The kernel, IPC-Manager and CDAP bindings are provided by the embedding
// environment; the standalone binary wires loopback stubs.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rinaproto/rina/ipcp/config"
	"github.com/rinaproto/rina/ipcp/dft"
	"github.com/rinaproto/rina/ipcp/flowalloc"
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/log"
	"github.com/rinaproto/rina/pkg/metrics"
	"github.com/rinaproto/rina/pkg/rina"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "ipcpd",
		Short:         "RINA IPC process daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "ipcpd.toml",
		"path to the configuration file")

	cmd.AddCommand(&cobra.Command{
		Use:   "sample-config",
		Short: "Print a sample configuration",
		Run: func(cmd *cobra.Command, args []string) {
			config.Sample(os.Stdout)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := log.Setup(cfg.Logging); err != nil {
		return err
	}
	defer log.Flush()
	logger := log.Root().New("ipcp", cfg.IPCP.ProcessName)

	registry := rib.NewRegistry()
	directory := dft.NewTable(time.Duration(cfg.FlowAllocator.DirectoryTTL))

	var faMetrics flowalloc.Metrics
	if cfg.Metrics.Prometheus != "" {
		faMetrics = newFlowAllocatorMetrics()
	}

	fa := &flowalloc.FlowAllocator{
		Kernel:     &loopbackKernel{},
		IPCManager: &loopbackIPCManager{},
		RIBDaemon:  &loopbackRIBDaemon{logger: logger},
		Sessions:   emptySessions{},
		Resolver:   directory,
		Security:   acceptAll{},
		Registry:   registry,
		Config:     cfg.FlowAllocatorConfig(),
		Metrics:    faMetrics,
		Logger:     logger,
	}
	if err := fa.PopulateRIB(); err != nil {
		return err
	}
	if err := fa.SetDIFConfiguration(cfg.DIFConfig()); err != nil {
		return err
	}
	logger.Info("Populated RIB", "objects", registry.Names())

	if cfg.Metrics.Prometheus != "" {
		go func() {
			defer log.HandlePanic()
			http.Handle("/metrics", promhttp.Handler())
			logger.Info("Serving metrics", "addr", cfg.Metrics.Prometheus)
			if err := http.ListenAndServe(cfg.Metrics.Prometheus, nil); err != nil {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for s := range sig {
		if s == syscall.SIGUSR1 {
			fa.DiagnosticsWrite(os.Stdout)
			continue
		}
		logger.Info("Shutting down", "signal", s.String())
		return nil
	}
	return nil
}

// newFlowAllocatorMetrics registers the flow allocator metrics with the
// default prometheus registry served on the metrics endpoint.
func newFlowAllocatorMetrics() flowalloc.Metrics {
	return flowalloc.Metrics{
		FlowAllocations: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "flowalloc",
			Name:      "allocations_total",
			Help:      "Finished local flow allocation attempts.",
		}, []string{"result"}),
		FlowDeallocations: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "flowalloc",
			Name:      "deallocations_total",
			Help:      "Flows torn down after the 2*MPL wait.",
		}, nil),
		PeerCreateRequests: metrics.NewPromCounterFrom(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "flowalloc",
			Name:      "peer_create_requests_total",
			Help:      "Create flow requests received from peers.",
		}, []string{"outcome"}),
		OpenFlows: metrics.NewPromGaugeFrom(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "flowalloc",
			Name:      "open_flows",
			Help:      "Number of flows currently allocated.",
		}, nil),
	}
}

// loopbackKernel accounts port-ids locally and accepts every connection
// request without a backing EFCP engine.
type loopbackKernel struct {
	nextPortID int64
}

func (k *loopbackKernel) AllocatePortID(rina.AppName) (int, error) {
	return int(atomic.AddInt64(&k.nextPortID, 1)), nil
}

func (k *loopbackKernel) DeallocatePortID(int) error { return nil }

func (k *loopbackKernel) CreateConnection(rina.Connection) error { return nil }

func (k *loopbackKernel) CreateConnectionArrived(rina.Connection) error { return nil }

func (k *loopbackKernel) UpdateConnection(rina.Connection) error { return nil }

// loopbackIPCManager accepts every notification.
type loopbackIPCManager struct {
	nextHandle int64
}

func (m *loopbackIPCManager) AllocateFlowRequestResult(rina.FlowRequestEvent, int) error {
	return nil
}

func (m *loopbackIPCManager) AllocateFlowRequestArrived(dest, src rina.AppName,
	spec rina.FlowSpec, portID int) (uint32, error) {

	return uint32(atomic.AddInt64(&m.nextHandle, 1)), nil
}

func (m *loopbackIPCManager) NotifyFlowDeallocated(rina.FlowDeallocateRequestEvent,
	int) error {

	return nil
}

func (m *loopbackIPCManager) FlowDeallocated(int) error { return nil }

func (m *loopbackIPCManager) FlowDeallocatedRemotely(int, int) error { return nil }

// loopbackRIBDaemon logs outbound CDAP traffic instead of sending it.
type loopbackRIBDaemon struct {
	logger log.Logger
}

func (d *loopbackRIBDaemon) RemoteCreateObject(class, name string, value []byte,
	remote rib.RemoteID, handler flowalloc.CreateResponseHandler) error {

	d.logger.Debug("M_CREATE", "class", class, "name", name, "remote", remote)
	return nil
}

func (d *loopbackRIBDaemon) RemoteCreateObjectResponse(class, name string,
	value []byte, result int, reason string, invokeID int, remote rib.RemoteID) error {

	d.logger.Debug("M_CREATE_R", "class", class, "name", name, "result", result)
	return nil
}

func (d *loopbackRIBDaemon) RemoteDeleteObject(class, name string,
	remote rib.RemoteID) error {

	d.logger.Debug("M_DELETE", "class", class, "name", name, "remote", remote)
	return nil
}

func (d *loopbackRIBDaemon) RemoteReadObjectResponse(class, name string,
	value []byte, result int, reason string, invokeID int, remote rib.RemoteID) error {

	d.logger.Debug("M_READ_R", "class", class, "name", name, "result", result)
	return nil
}

// emptySessions has no open CDAP sessions.
type emptySessions struct{}

func (emptySessions) SessionByAddress(uint32) (int, bool) { return 0, false }

func (emptySessions) SessionIDs() []int { return nil }

// acceptAll admits every incoming flow.
type acceptAll struct{}

func (acceptAll) AcceptFlow(*rina.Flow) bool { return true }
