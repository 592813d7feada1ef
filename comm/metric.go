package comm

import (
	"sync/atomic"
)

// TransportMetrics contains atomic metrics for one transport role.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type TransportMetrics struct {
	// FrameSendCount indicates the number of physical frames transmitted.
	FrameSendCount atomic.Uint64
	// FrameRecvCount indicates the number of physical frames received.
	FrameRecvCount atomic.Uint64
	// AckRetryCount indicates the number of send cycles repeated while
	// waiting for an ACK.
	AckRetryCount atomic.Uint64
	// ReplyRetryCount indicates the number of reply receive attempts that
	// failed checksum verification and were retried.
	ReplyRetryCount atomic.Uint64
	// ChecksumErrCount indicates the number of frames rejected with a
	// checksum mismatch after Hamming correction.
	ChecksumErrCount atomic.Uint64
	// NackCount indicates the number of NACK control bytes sent.
	NackCount atomic.Uint64
}

func (m *TransportMetrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *TransportMetrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *TransportMetrics) incAckRetryCount() {
	m.AckRetryCount.Add(1)
}

func (m *TransportMetrics) incReplyRetryCount() {
	m.ReplyRetryCount.Add(1)
}

func (m *TransportMetrics) incChecksumErrCount() {
	m.ChecksumErrCount.Add(1)
}

func (m *TransportMetrics) incNackCount() {
	m.NackCount.Add(1)
}
