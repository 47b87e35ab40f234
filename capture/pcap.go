// Package capture implements the optional packet-capture sink: every decoded
// inbound and constructed outbound PDU, appended to a pcap-format file for
// offline inspection. Purely observational — a write failure disables
// capture for the remainder of the run; Send returns that one failure to its
// caller and is a no-op afterwards.
package capture

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	filetransport "github.com/vpbank/intellivue-gateway/transport/file"
)

const (
	pcapMagic        uint32 = 0xa1b2c3d4
	pcapVersionMajor uint16 = 2
	pcapVersionMinor uint16 = 4
	pcapSnapLen      uint32 = 65535
	pcapLinktypeRaw  uint32 = 147 // LINKTYPE_USER0 — no Ethernet/IP framing, raw UDP payloads only
)

// Config controls the capture sink's output file and rotation policy.
type Config struct {
	// FilePath is the active pcap file. Empty disables capture.
	FilePath string

	// MaxBytes and MaxBackups configure size-based rotation, the same shape
	// as transport/file.RotateConfig.
	MaxBytes   int64
	MaxBackups int
}

// Sink writes one pcap record per Send and releases its file on Close, the
// same two-method shape the rest of the gateway's output stages use.
type Sink struct {
	mu       sync.Mutex
	file     *filetransport.RotatingFile
	logger   *slog.Logger
	disabled bool
}

// New opens cfg.FilePath, writes the pcap global header if the file is new,
// and returns a ready-to-use Sink. A nil Sink (returned alongside a nil
// error) means capture is disabled because cfg.FilePath is empty — callers
// should treat a nil *Sink's Send as a no-op, which it is.
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if cfg.FilePath == "" {
		return nil, nil
	}

	fresh := true
	if info, err := os.Stat(cfg.FilePath); err == nil && info.Size() > 0 {
		fresh = false
	}

	rf, err := filetransport.NewRotatingFile(filetransport.RotateConfig{
		FilePath:   cfg.FilePath,
		MaxBytes:   cfg.MaxBytes,
		MaxBackups: cfg.MaxBackups,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", cfg.FilePath, err)
	}

	s := &Sink{file: rf, logger: logger}
	if fresh {
		if err := s.writeGlobalHeader(); err != nil {
			_ = rf.Close()
			return nil, fmt.Errorf("capture: write global header: %w", err)
		}
	}
	return s, nil
}

func (s *Sink) writeGlobalHeader() error {
	var hdr [24]byte
	binary.LittleEndian.PutUint32(hdr[0:4], pcapMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], pcapVersionMajor)
	binary.LittleEndian.PutUint16(hdr[6:8], pcapVersionMinor)
	// thiszone, sigfigs left zero.
	binary.LittleEndian.PutUint32(hdr[16:20], pcapSnapLen)
	binary.LittleEndian.PutUint32(hdr[20:24], pcapLinktypeRaw)
	_, err := s.file.Write(hdr[:])
	return err
}

// Send appends one pcap record containing data's raw bytes, stamped with the
// current time. A nil Sink is a valid no-op receiver, so callers holding an
// optional *Sink need not nil-check before calling Send.
func (s *Sink) Send(data []byte) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil
	}

	now := time.Now()
	var rec [16]byte
	binary.LittleEndian.PutUint32(rec[0:4], uint32(now.Unix()))
	binary.LittleEndian.PutUint32(rec[4:8], uint32(now.Nanosecond()/1000))
	binary.LittleEndian.PutUint32(rec[8:12], uint32(len(data)))
	binary.LittleEndian.PutUint32(rec[12:16], uint32(len(data)))

	if _, err := s.file.Write(rec[:]); err != nil {
		s.disabled = true
		s.logger.Error("capture: write record header failed, disabling capture", "error", err.Error())
		return fmt.Errorf("capture: write record header: %w", err)
	}
	if _, err := s.file.Write(data); err != nil {
		s.disabled = true
		s.logger.Error("capture: write record body failed, disabling capture", "error", err.Error())
		return fmt.Errorf("capture: write record body: %w", err)
	}
	return nil
}

// Close releases the underlying file. A nil Sink is a valid no-op receiver.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
