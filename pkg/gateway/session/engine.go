package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/vpbank/intellivue-gateway/capture"
	"github.com/vpbank/intellivue-gateway/intellivue/nomenclature"
	"github.com/vpbank/intellivue-gateway/intellivue/wire"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/dispatch"
)

// DiscoveryPort and ProtocolPort are the fixed UDP ports the protocol uses
// for broadcast discovery and application-layer traffic.
const (
	DiscoveryPort = 24005
	ProtocolPort  = 24105
)

// DefaultPollInterval is the steady-state poll tick applied to every
// Connected monitor, absent a config override.
const DefaultPollInterval = 2 * time.Second

// monitorSession is the transient per-IP association state. It is never
// persisted; association is rebuilt from the next discovery beacon.
type monitorSession struct {
	mac           string
	state         State
	managedObject wire.ManagedObjectId
	nextInvokeID  uint16
	pendingPollID *uint16
}

// Config configures the Engine's network surface and poll cadence.
type Config struct {
	DiscoveryAddr string // default "0.0.0.0:24005"
	ProtocolAddr  string // default "0.0.0.0:24105"
	PollInterval  time.Duration
}

func (c *Config) withDefaults() {
	if c.DiscoveryAddr == "" {
		c.DiscoveryAddr = fmt.Sprintf("0.0.0.0:%d", DiscoveryPort)
	}
	if c.ProtocolAddr == "" {
		c.ProtocolAddr = fmt.Sprintf("0.0.0.0:%d", ProtocolPort)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Engine is the per-deployment session engine: it owns the two UDP sockets,
// the per-IP transient session map, and the poll scheduler, and forwards
// decoded poll replies to the observation dispatcher.
type Engine struct {
	cfg      Config
	monitors *MonitorTable
	ips      *IPIndex
	registry *nomenclature.Registry
	out      chan<- dispatch.PollReply
	logger   *slog.Logger

	discoveryConn *net.UDPConn
	protocolConn  *net.UDPConn

	// sendFunc sends a datagram to dest over the protocol socket. It defaults
	// to protocolConn.WriteToUDP once Start has bound the socket; tests may
	// override it beforehand to observe outbound datagrams without binding
	// the real, fixed protocol port.
	sendFunc func(dest *net.UDPAddr, buf []byte) error

	mu       sync.Mutex
	sessions map[string]*monitorSession // keyed by IP

	scheduler *pollScheduler

	// capture mirrors every decoded inbound and constructed outbound PDU to
	// an optional pcap sink. A nil *capture.Sink is a valid no-op receiver,
	// so this is safe to leave unset.
	capture *capture.Sink

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SetCapture attaches a packet-capture sink. Call before Start; nil disables
// capture (the default).
func (e *Engine) SetCapture(sink *capture.Sink) {
	e.capture = sink
}

// New builds an Engine. out is the channel the observation dispatcher reads
// from; the Engine closes neither monitors, ips, nor out.
func New(cfg Config, monitors *MonitorTable, ips *IPIndex, registry *nomenclature.Registry, out chan<- dispatch.PollReply, logger *slog.Logger) *Engine {
	cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	e := &Engine{
		cfg:      cfg,
		monitors: monitors,
		ips:      ips,
		registry: registry,
		out:      out,
		logger:   logger,
		sessions: make(map[string]*monitorSession),
	}
	e.scheduler = newPollScheduler(logger, e.firePoll)
	return e
}

// Start opens both UDP sockets and launches the discovery listener, protocol
// listener, and poll-scheduler goroutines. It returns once both sockets are
// bound; listening happens in the background.
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	discAddr, err := net.ResolveUDPAddr("udp4", e.cfg.DiscoveryAddr)
	if err != nil {
		return fmt.Errorf("session: resolve discovery addr: %w", err)
	}
	e.discoveryConn, err = net.ListenUDP("udp4", discAddr)
	if err != nil {
		return fmt.Errorf("session: listen discovery: %w", err)
	}

	protoAddr, err := net.ResolveUDPAddr("udp4", e.cfg.ProtocolAddr)
	if err != nil {
		return fmt.Errorf("session: resolve protocol addr: %w", err)
	}
	e.protocolConn, err = net.ListenUDP("udp4", protoAddr)
	if err != nil {
		return fmt.Errorf("session: listen protocol: %w", err)
	}

	if e.sendFunc == nil {
		e.sendFunc = func(dest *net.UDPAddr, buf []byte) error {
			_, err := e.protocolConn.WriteToUDP(buf, dest)
			return err
		}
	}

	e.wg.Add(3)
	go func() { defer e.wg.Done(); e.listenDiscovery(ctx) }()
	go func() { defer e.wg.Done(); e.listenProtocol(ctx) }()
	go func() { defer e.wg.Done(); e.scheduler.start(ctx) }()

	return nil
}

// Stop cancels background work, closes both sockets, and waits for every
// goroutine to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.discoveryConn != nil {
		e.discoveryConn.Close()
	}
	if e.protocolConn != nil {
		e.protocolConn.Close()
	}
	e.wg.Wait()
}

func (e *Engine) listenDiscovery(ctx context.Context) {
	buf := make([]byte, 65535)
	for {
		n, addr, err := e.discoveryConn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			e.logger.Warn("session: discovery read failed", "error", err.Error())
			continue
		}
		datagram := append([]byte(nil), buf[:n]...)
		_ = e.capture.Send(datagram)
		e.handleDiscovery(datagram, addr)
	}
}

func (e *Engine) listenProtocol(ctx context.Context) {
	buf := make([]byte, 65535)
	for {
		n, addr, err := e.protocolConn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			e.logger.Warn("session: protocol read failed", "error", err.Error())
			continue
		}
		datagram := append([]byte(nil), buf[:n]...)
		_ = e.capture.Send(datagram)
		e.handleProtocol(datagram, addr)
	}
}

// handleDiscovery parses an inbound discovery beacon and drives
// Unknown/Discovered -> Associating.
func (e *Engine) handleDiscovery(buf []byte, addr *net.UDPAddr) {
	ci, _, err := wire.DecodeConnectIndication(buf)
	if err != nil {
		e.logger.Warn("session: discard malformed beacon", "peer", addr.String(), "error", err.Error())
		return
	}
	mac, ok := ci.MAC()
	if !ok {
		e.logger.Warn("session: beacon missing MAC, dropping", "peer", addr.String())
		return
	}
	macStr := mac.String()
	ip := addr.IP.String()

	e.monitors.Upsert(macStr, ip, addr.Port, time.Now())
	e.ips.Set(ip, macStr)

	e.mu.Lock()
	sess, exists := e.sessions[ip]
	if !exists {
		sess = &monitorSession{mac: macStr, state: Discovered}
		e.sessions[ip] = sess
	}
	shouldAssociate := sess.state < Associating
	if shouldAssociate {
		sess.state = Associating
		sess.mac = macStr
	}
	e.mu.Unlock()

	if !shouldAssociate {
		return
	}

	flags := wire.PollExtPeriodNu1Sec | wire.PollExtPeriodRTSA | wire.PollExtEnum
	req := wire.AssociationRequest(flags)
	dest := &net.UDPAddr{IP: addr.IP, Port: ProtocolPort}
	_ = e.capture.Send(req)
	if err := e.sendFunc(dest, req); err != nil {
		e.logger.Warn("session: send association request failed", "peer", dest.String(), "error", err.Error())
		return
	}
	e.logger.Info("session: associating", "mac", macStr, "peer", dest.String())
}

// handleProtocol classifies and routes every non-discovery datagram.
func (e *Engine) handleProtocol(buf []byte, addr *net.UDPAddr) {
	ip := addr.IP.String()

	if len(buf) >= 2 && buf[0] == 0xE1 && buf[1] == 0x00 {
		e.handleDataExport(buf, ip, addr)
		return
	}
	e.handleAssociationControl(buf, ip)
}

func (e *Engine) handleAssociationControl(buf []byte, ip string) {
	h, _, err := wire.DecodeSessionHeader(buf)
	if err != nil {
		e.logger.Warn("session: discard malformed association datagram", "peer", ip, "error", err.Error())
		return
	}

	e.mu.Lock()
	sess, ok := e.sessions[ip]
	e.mu.Unlock()
	if !ok {
		e.logger.Warn("session: association datagram from unknown peer", "peer", ip, "type", h.Type.String())
		return
	}

	switch h.Type {
	case wire.SessionHeaderAC:
		e.mu.Lock()
		if sess.state == Associating {
			sess.state = Associated
		}
		e.mu.Unlock()
		e.logger.Info("session: associated", "mac", sess.mac, "peer", ip)
	case wire.SessionHeaderRF, wire.SessionHeaderFN, wire.SessionHeaderDN, wire.SessionHeaderAB:
		e.mu.Lock()
		sess.state = Discovered
		sess.managedObject = wire.ManagedObjectId{}
		sess.nextInvokeID = 0
		sess.pendingPollID = nil
		e.mu.Unlock()
		e.scheduler.remove(sess.mac)
		e.logger.Info("session: association ended, will retry on next beacon", "mac", sess.mac, "peer", ip, "type", h.Type.String())
	default:
		e.logger.Warn("session: unexpected association datagram type", "peer", ip, "type", h.Type.String())
	}
}

func (e *Engine) handleDataExport(buf []byte, ip string, addr *net.UDPAddr) {
	msg, _, err := wire.DecodeMessage(buf)
	if err != nil {
		e.logger.Warn("session: discard malformed data-export datagram", "peer", ip, "error", err.Error())
		return
	}

	e.mu.Lock()
	sess, ok := e.sessions[ip]
	e.mu.Unlock()
	if !ok {
		e.logger.Warn("session: data-export datagram from unknown peer", "peer", ip)
		return
	}

	// pollMatches reports whether invokeID echoes the session's outstanding
	// poll request; an unmatched reply is logged and dropped.
	pollMatches := func(invokeID uint16) bool {
		e.mu.Lock()
		matched := sess.pendingPollID != nil && *sess.pendingPollID == invokeID
		e.mu.Unlock()
		if !matched {
			e.logger.Warn("session: dropping poll reply with unmatched invoke_id", "peer", ip, "mac", sess.mac, "invoke_id", invokeID)
		}
		return matched
	}

	switch {
	case msg.Invoke != nil && msg.Invoke.Event != nil && msg.Invoke.Event.Argument != nil &&
		msg.Invoke.ROIVapdu.CommandType == wire.CmdConfirmedEventReport:
		e.handleMdsCreate(sess, msg.Invoke, addr)

	case msg.Result != nil && msg.Result.Action != nil && msg.Result.Action.PollReply != nil:
		if pollMatches(msg.Result.RORSapdu.InvokeID) {
			e.forwardPollReply(sess.mac, *msg.Result.Action.PollReply)
		}

	case msg.Linked != nil && msg.Linked.Action != nil && msg.Linked.Action.PollReply != nil:
		if pollMatches(msg.Linked.ROLRSapdu.InvokeID) {
			e.forwardPollReply(sess.mac, *msg.Linked.Action.PollReply)
		}

	case msg.Err != nil:
		e.logger.Warn("session: protocol error reply", "peer", ip, "mac", sess.mac, "error_value", msg.Err.ErrorValue.String())

	default:
		// Unrecognized but well-formed message; nothing to do.
	}
}

func (e *Engine) handleMdsCreate(sess *monitorSession, invoke *wire.InvokeBody, addr *net.UDPAddr) {
	mo := invoke.Event.Argument.ManagedObject

	e.mu.Lock()
	sess.state = Connected
	sess.managedObject = wire.ManagedObjectId{ObjClass: nomenclature.MocVmsMds, ObjInst: mo.ObjInst}
	e.mu.Unlock()

	reply := wire.BuildMdsCreateReply(invoke.ROIVapdu.InvokeID, mo, nomenclature.NotiMdsCreat)
	dest := &net.UDPAddr{IP: addr.IP, Port: ProtocolPort}
	_ = e.capture.Send(reply)
	if err := e.sendFunc(dest, reply); err != nil {
		e.logger.Warn("session: send mds-create reply failed", "peer", dest.String(), "error", err.Error())
		return
	}

	e.scheduler.add(sess.mac, e.cfg.PollInterval)
	e.logger.Info("session: connected", "mac", sess.mac, "peer", dest.String())
}

func (e *Engine) forwardPollReply(mac string, reply wire.PollInfoList) {
	select {
	case e.out <- dispatch.PollReply{MonitorMAC: mac, Reply: reply}:
	default:
		e.logger.Warn("session: poll reply channel full, dropping reply", "mac", mac)
	}
}

// firePoll is the pollScheduler callback: it builds and sends the periodic
// CMD_CONFIRMED_ACTION poll request for a Connected monitor.
func (e *Engine) firePoll(mac string) {
	e.mu.Lock()
	var ip string
	var sess *monitorSession
	for candidateIP, candidate := range e.sessions {
		if candidate.mac == mac {
			ip, sess = candidateIP, candidate
			break
		}
	}
	if sess == nil || sess.state != Connected {
		e.mu.Unlock()
		return
	}
	sess.nextInvokeID++
	invokeID := sess.nextInvokeID
	sess.pendingPollID = &invokeID
	mo := sess.managedObject
	e.mu.Unlock()

	req := wire.PollMdibDataReqExt{
		PolledObjType: wire.PolledObjType{Partition: uint16(nomenclature.PartObj), Code: nomenclature.MocVmoMetricNu},
		PolledAttrGrp: nomenclature.AttrGrpMetricValObs,
	}
	buf := wire.BuildPollRequest(invokeID, mo, nomenclature.ActPollMdibDataExt, req)

	addr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", ip, ProtocolPort))
	if err != nil {
		e.logger.Warn("session: resolve poll target failed", "mac", mac, "error", err.Error())
		return
	}
	_ = e.capture.Send(buf)
	if err := e.sendFunc(addr, buf); err != nil {
		e.logger.Warn("session: send poll request failed", "mac", mac, "error", err.Error())
	}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
