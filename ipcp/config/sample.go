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

package config

import (
	"io"
)

// Sample writes a commented sample configuration.
func Sample(dst io.Writer) {
	io.WriteString(dst, sample)
}

const sample = `# Sample IPC process configuration.

[log]
# Verbosity of the logging (debug|info|error). (default info)
level = "info"
# Use the human-readable console encoder instead of JSON. (default false)
console = false

[metrics]
# Address to serve prometheus metrics on. Disabled if empty. (default "")
prometheus = ""

[ipcp]
# Application process name of this IPC process.
process_name = "ipcp-1"
process_instance = "1"
# Name of the DIF this IPCP is a member of.
dif_name = "normal.DIF"
# Address of this IPCP within the DIF. Must not be zero.
address = 10

[flow_allocator]
# Hop count for outgoing create flow requests. (default 3)
hop_count = 3
# Create flow retries carried in the flow object. (default 1)
max_create_flow_retries = 1
# Wait after deallocation before destroying flow state; should be twice
# the maximum packet lifetime. (default 5s)
teardown_delay = "5s"
# Bound on the wait for the peer's create response. Zero disables the
# bound. (default 0)
peer_response_timeout = "0s"
# Lifetime of directory entries learned from peers. Zero disables
# expiry. (default 0)
directory_ttl = "0s"

[efcp]
# EFCP field sizes and limits of the DIF.
address_length = 2
cep_id_length = 2
length_length = 2
port_id_length = 2
qos_id_length = 1
sequence_number_length = 4
max_pdu_size = 10000
# Maximum PDU lifetime in ms.
max_pdu_lifetime = 2500

# QoS cubes offered by the DIF, in selection order.
[[qos_cube]]
id = 1
name = "unreliablewithflowcontrol"
ordered_delivery = true
max_allowable_gap = -1
dtcp_present = true
flow_control = true

[[qos_cube]]
id = 2
name = "reliablewithflowcontrol"
ordered_delivery = true
max_allowable_gap = 0
dtcp_present = true
rtx_control = true
flow_control = true
`
