// Package version reports the foldkit build version. config uses it as the
// default service version, which ends up on exported telemetry resources.
//
//	go build -ldflags "-X github.com/kbukum/foldkit/version.Version=1.0.0"
package version
