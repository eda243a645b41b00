//go:build windows || plan9

package logging

import "fmt"

func newSyslogHandlerFromParams(map[string]any) (Handler, error) {
	return nil, fmt.Errorf("syslog handler: not supported on this platform")
}
