// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "envtrack/internal/log"
)

// EnvelopePublisher walks a synthesized envelope buffer in fixed-size
// chunks, packs each chunk into a binary packet, and sends it over UDP at
// a fixed interval. When the end of the buffer is reached it wraps to the
// start, mirroring a generator that repeats its waveform. It runs in a
// separate goroutine managed by Start and Stop.
type EnvelopePublisher struct {
	sender   *UDPSender    // The underlying UDP sender instance.
	envelope []float64     // The envelope voltages being streamed (not mutated).
	chunk    int           // Samples per packet.
	interval time.Duration // Interval between packets.

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Signals the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures stop logic runs once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the goroutine during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32 // Monotonically increasing packet sequence number.
	cursor      int    // Next envelope index to publish.

	// Pre-allocated buffers so the per-tick path does not allocate.
	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewEnvelopePublisher creates a publisher streaming envelope over sender.
// If the interval is invalid (<= 0) it defaults to 16ms (~60Hz).
func NewEnvelopePublisher(interval time.Duration, sender *UDPSender, envelope []float64, chunk int) (*EnvelopePublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("EnvelopePublisher: UDP sender cannot be nil")
	}
	if len(envelope) == 0 {
		return nil, fmt.Errorf("EnvelopePublisher: envelope buffer cannot be empty")
	}
	if chunk <= 0 {
		return nil, fmt.Errorf("EnvelopePublisher: chunk size must be positive, got %d", chunk)
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("EnvelopePublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("EnvelopePublisher: Initializing (Interval: %s, Chunk: %d, Envelope: %d samples)",
		interval, chunk, len(envelope))

	return &EnvelopePublisher{
		sender:       sender,
		envelope:     envelope,
		chunk:        chunk,
		interval:     interval,
		f32Buffer:    make([]float32, chunk),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic publishing process. Safe to call multiple
// times; subsequent calls are no-ops while running.
func (p *EnvelopePublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("EnvelopePublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture locals so the goroutine never races Start/Stop on the fields.
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("EnvelopePublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Infof("EnvelopePublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits
// for it to exit. Safe to call multiple times.
func (p *EnvelopePublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("EnvelopePublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		applog.Infof("EnvelopePublisher: Initiating stop sequence...")
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("EnvelopePublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian)

| Field           | Data Type | Size (Bytes) | Description                    |
|-----------------|-----------|--------------|--------------------------------|
| Sequence Number | uint32    | 4            | Monotonically increasing       |
| Timestamp       | int64     | 8            | Nanoseconds since epoch        |
| Sample Offset   | uint32    | 4            | Chunk start index in envelope  |
| Sample Count    | uint16    | 2            | Number of floats (N)           |
| Samples         | []float32 | N * 4        | Envelope voltages              |
*/

// buildAndSendPacket packs the next envelope chunk and sends it. Runs on
// every ticker interval.
func (p *EnvelopePublisher) buildAndSendPacket() {
	// Next chunk, wrapping at the end of the envelope.
	offset := p.cursor
	n := p.chunk
	if remaining := len(p.envelope) - offset; remaining < n {
		n = remaining
	}
	for i := 0; i < n; i++ {
		p.f32Buffer[i] = float32(p.envelope[offset+i])
	}
	p.cursor = (offset + n) % len(p.envelope)

	p.sequenceNum++
	timestamp := time.Now().UnixNano()

	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint32(offset))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(n))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer[:n])
	}

	if err != nil {
		applog.Errorf("EnvelopePublisher: Error packing data into binary buffer: %v", err)
		return
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err == nil {
		applog.Debugf("EnvelopePublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packetBytes))
	}
}

// Close implements io.Closer. It gracefully stops the publisher goroutine.
func (p *EnvelopePublisher) Close() error {
	applog.Debugf("EnvelopePublisher: Close called, stopping publisher...")
	return p.Stop()
}

var _ interface{ Close() error } = (*EnvelopePublisher)(nil)
