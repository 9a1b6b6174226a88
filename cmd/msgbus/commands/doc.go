// Package commands wires the msgbus CLI: a replier that echoes requests
// (serve), a requester that measures round-trip latency (ping), both in one
// process (loopback), and version.
//
// Settings come from defaults, then the yaml file given by --config, then
// MSGBUS_* environment variables, then flags.
package commands
