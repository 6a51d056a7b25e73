// Package handler implements the JSON endpoints of the operational HTTP
// server: liveness, readiness and the status summary.
package handler
