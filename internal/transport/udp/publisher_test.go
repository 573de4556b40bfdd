// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"
)

func localListener(t *testing.T) *net.UDPConn {
	t.Helper()
	lc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to open local UDP listener: %v", err)
	}
	t.Cleanup(func() { lc.Close() })
	return lc
}

func readPacket(t *testing.T, lc *net.UDPConn) []byte {
	t.Helper()
	buf := make([]byte, 65536)
	lc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := lc.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("failed to read UDP packet: %v", err)
	}
	return buf[:n]
}

func TestPacketLayout(t *testing.T) {
	lc := localListener(t)

	sender, err := NewUDPSender(lc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender() error: %v", err)
	}
	defer sender.Close()

	envelope := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	pub, err := NewEnvelopePublisher(10*time.Millisecond, sender, envelope, 2)
	if err != nil {
		t.Fatalf("NewEnvelopePublisher() error: %v", err)
	}

	pub.buildAndSendPacket()
	packet := readPacket(t, lc)

	const headerLen = 4 + 8 + 4 + 2
	if len(packet) != headerLen+2*4 {
		t.Fatalf("packet length = %d, want %d", len(packet), headerLen+2*4)
	}

	seq := binary.BigEndian.Uint32(packet[0:4])
	ts := int64(binary.BigEndian.Uint64(packet[4:12]))
	offset := binary.BigEndian.Uint32(packet[12:16])
	count := binary.BigEndian.Uint16(packet[16:18])

	if seq != 1 {
		t.Errorf("sequence = %d, want 1", seq)
	}
	if ts <= 0 {
		t.Errorf("timestamp = %d, want > 0", ts)
	}
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	for i, want := range []float64{0.1, 0.2} {
		bits := binary.BigEndian.Uint32(packet[headerLen+i*4 : headerLen+(i+1)*4])
		got := float64(math.Float32frombits(bits))
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestPublisherWrapsAtEnvelopeEnd(t *testing.T) {
	lc := localListener(t)

	sender, err := NewUDPSender(lc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender() error: %v", err)
	}
	defer sender.Close()

	envelope := []float64{1, 2, 3, 4, 5}
	pub, err := NewEnvelopePublisher(10*time.Millisecond, sender, envelope, 2)
	if err != nil {
		t.Fatalf("NewEnvelopePublisher() error: %v", err)
	}

	// Chunks of 2 over 5 samples: offsets 0, 2, 4 (short chunk), then back to 0.
	wantOffsets := []uint32{0, 2, 4, 0}
	wantCounts := []uint16{2, 2, 1, 2}

	for i := range wantOffsets {
		pub.buildAndSendPacket()
		packet := readPacket(t, lc)

		offset := binary.BigEndian.Uint32(packet[12:16])
		count := binary.BigEndian.Uint16(packet[16:18])
		if offset != wantOffsets[i] {
			t.Errorf("packet %d: offset = %d, want %d", i, offset, wantOffsets[i])
		}
		if count != wantCounts[i] {
			t.Errorf("packet %d: count = %d, want %d", i, count, wantCounts[i])
		}
	}
}

func TestPublisherStartStop(t *testing.T) {
	lc := localListener(t)

	sender, err := NewUDPSender(lc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender() error: %v", err)
	}
	defer sender.Close()

	pub, err := NewEnvelopePublisher(time.Millisecond, sender, []float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatalf("NewEnvelopePublisher() error: %v", err)
	}

	pub.Start()
	readPacket(t, lc) // At least one packet must arrive.

	if err := pub.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	// Stop twice must be a no-op.
	if err := pub.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestNewEnvelopePublisherRejections(t *testing.T) {
	lc := localListener(t)
	sender, err := NewUDPSender(lc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender() error: %v", err)
	}
	defer sender.Close()

	if _, err := NewEnvelopePublisher(time.Second, nil, []float64{1}, 1); err == nil {
		t.Error("expected error for nil sender")
	}
	if _, err := NewEnvelopePublisher(time.Second, sender, nil, 1); err == nil {
		t.Error("expected error for empty envelope")
	}
	if _, err := NewEnvelopePublisher(time.Second, sender, []float64{1}, 0); err == nil {
		t.Error("expected error for non-positive chunk size")
	}
}
