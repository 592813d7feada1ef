package comm

import (
	"sync"

	"github.com/hmolavi/PlantProtector/internal/util"
)

// MemoryBusPair links an Initiator and a Responder in-process, standing in
// for the physical wiring. It is used by the runnable examples and by the
// package tests; the noise hooks allow deterministic fault injection.
//
// Transfer shapes are distinguished the way the select line frames them on
// real hardware:
//
//   - ChunkEncodedSize-byte tx: physical frame, delivered byte-wise to
//     Responder.OnByte, then processed
//   - 1-byte tx with a 1-byte rx: status poll, answered from the
//     responder's output queue
//   - 1-byte tx without rx: control byte, routed to Responder.OnStatus
//   - ChunkEncodedSize-byte rx: reply receive, served from the queue
//
// The responder's Process runs synchronously after each completed frame,
// which keeps exchanges deterministic.
type MemoryBusPair struct {
	mu   sync.Mutex
	out  []byte // responder -> initiator byte queue
	resp *Responder

	// FrameNoise, when set, rewrites request frames in flight.
	FrameNoise func(frame []byte) []byte

	// ReplyNoise, when set, rewrites reply frames as the initiator reads
	// them.
	ReplyNoise func(frame []byte) []byte
}

// NewMemoryBusPair creates an unattached bus pair. Attach the responder
// before driving the initiator end.
func NewMemoryBusPair() *MemoryBusPair {
	return &MemoryBusPair{}
}

// Attach wires the responder that answers frames sent on the initiator end.
func (p *MemoryBusPair) Attach(r *Responder) {
	p.resp = r
}

// InitiatorEnd returns the Bus to hand to the Initiator.
func (p *MemoryBusPair) InitiatorEnd() Bus {
	return &memInitiatorEnd{p: p}
}

// ResponderEnd returns the Bus to hand to the Responder. The responder only
// ever transmits; rx is ignored.
func (p *MemoryBusPair) ResponderEnd() Bus {
	return &memResponderEnd{p: p}
}

type memInitiatorEnd struct {
	p *MemoryBusPair
}

func (e *memInitiatorEnd) Transfer(tx, rx []byte) error {
	p := e.p

	switch {
	case len(tx) == ChunkEncodedSize:
		frame := util.CloneSlice(tx, 0)
		if p.FrameNoise != nil {
			frame = p.FrameNoise(frame)
		}
		for _, b := range frame {
			p.resp.OnByte(b)
		}
		// Task-context processing runs between bus transactions.
		_ = p.resp.Process()

	case len(rx) == ChunkEncodedSize:
		frame := p.pop(ChunkEncodedSize)
		p.mu.Lock()
		if p.ReplyNoise != nil {
			frame = p.ReplyNoise(frame)
		}
		p.mu.Unlock()
		copy(rx, frame)

	case len(tx) == 1 && len(rx) == 1:
		rx[0] = p.pop(1)[0]

	case len(tx) == 1:
		p.resp.OnStatus(tx[0])
	}

	return nil
}

type memResponderEnd struct {
	p *MemoryBusPair
}

func (e *memResponderEnd) Transfer(tx, _ []byte) error {
	p := e.p
	p.mu.Lock()
	defer p.mu.Unlock()

	p.out = append(p.out, tx...)

	return nil
}

// pop removes n bytes from the responder queue, padding with idle 0x00
// bytes when the queue runs short.
func (p *MemoryBusPair) pop(n int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]byte, n)
	m := copy(out, p.out)
	p.out = p.out[m:]

	return out
}
