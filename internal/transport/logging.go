// SPDX-License-Identifier: MIT
package transport

import (
	applog "envtrack/internal/log"
)

// LoggingTransport implements the Transport interface by logging frame
// arrivals. Used when no network monitor is configured but frame flow
// should still be visible at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received frame at debug level.
func (lt *LoggingTransport) Send(data any) error {
	if frame, ok := data.(EnvelopeFrame); ok {
		applog.Debugf("Transport: frame %q offset=%d samples=%d peak=%.3fV",
			frame.Name, frame.Offset, len(frame.Samples), frame.PeakV)
		return nil
	}
	applog.Debugf("Transport: frame (%T)", data)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
