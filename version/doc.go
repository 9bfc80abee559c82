// Package version reports build information for widgetkit binaries and
// the client telemetry sent with every authentication API request.
//
// Values are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/widgetkit/version.Version=1.4.0"
package version
