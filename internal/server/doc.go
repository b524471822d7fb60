// Package server hosts the operational HTTP endpoints of the responder.
//
// The pipeline itself has no inbound traffic; the only HTTP surface is a
// dedicated metrics server exposing Prometheus metrics on /metrics plus
// Kubernetes-style health probes:
//
//   - /healthz: liveness probe, succeeds while the process runs
//   - /readyz: readiness probe, fails while starting up or shutting down
//   - /healthz/detailed: status plus process uptime
//
// The metrics server binds its own port (default :9090) so operational
// endpoints stay separate from any mail credentials or user data.
package server
