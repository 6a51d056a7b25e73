// Package buildinfo exposes build-time information for memkv binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/memkv-go/internal/infra/buildinfo.Version=v0.1.0"
//
// GoVersion is read from the runtime. The INFO command and the
// --version flag of both binaries report these values.
package buildinfo
