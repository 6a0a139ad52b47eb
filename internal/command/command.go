// Package command implements the Command Service: a named, synchronous
// request/reply endpoint for operator commands, serialized through a
// single receiver goroutine that owns the mutable control fields.
package command

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sls-core/sim/internal/vehicle"
)

// EndpointName is the well-known identifier this service advertises.
const EndpointName = "sls_fcc"

var (
	ErrCommandFailed = errors.New("command: command failed")
	ErrShutdown      = errors.New("command: service shut down")
)

// Endpoint is the transport boundary the Command Service's wire codec runs
// over, shaped like net.Conn (Read/Write/Close) so a future native-socket
// transport can be dropped in without touching Service or its callers. The
// only implementation built here is an in-process net.Pipe() pair.
type Endpoint interface {
	io.Reader
	io.Writer
	io.Closer
}

// Type is the operator command tag.
type Type int32

const (
	Status   Type = 1
	Go       Type = 2
	NoGo     Type = 3
	Abort    Type = 4
	Throttle Type = 5
	Pulse    Type = 100
)

// Command is a decoded inbound request.
type Command struct {
	Type  Type
	Value int32
}

// Reply mirrors the current controlled state after a command is applied.
type Reply struct {
	OK         bool
	MissionGo  bool
	ThrottlePct int
}

// Service owns the endpoint and the mutable fields it is allowed to write
// (mission_go, throttle, abort_requested). Only one command is processed at
// a time; a reply completes before the next request is received.
type Service struct {
	state *vehicle.State

	server Endpoint // Run's side of the pipe; reads requests, writes replies
	client Endpoint // Send's side of the pipe

	sendMu sync.Mutex // serializes full request/reply round trips on client

	done    chan struct{}
	running chan struct{}
}

// NewService constructs a Command Service bound to the given shared state,
// wired to an in-process Endpoint pair. Call Run in its own goroutine to
// start serving.
func NewService(state *vehicle.State) *Service {
	server, client := net.Pipe()
	return &Service{
		state:   state,
		server:  server,
		client:  client,
		done:    make(chan struct{}),
		running: make(chan struct{}),
	}
}

// Run serves inbound requests until ctx is cancelled. It is the single
// receiver goroutine: it owns the write to mission_go/throttle/
// abort_requested, so no other goroutine may write those fields. Each
// iteration decodes one wire request off the endpoint, applies it, and
// writes back the encoded reply before reading the next request.
func (s *Service) Run(ctx context.Context) {
	close(s.running)
	defer close(s.done)

	stop := context.AfterFunc(ctx, func() { s.server.Close() })
	defer stop()

	reqBuf := make([]byte, RequestSize)
	for {
		if _, err := io.ReadFull(s.server, reqBuf); err != nil {
			return // ctx cancelled (closes the pipe) or transport gone
		}
		if ctx.Err() != nil {
			return // shut down: a request read after cancellation gets no reply
		}

		cmd, err := DecodeRequest(reqBuf)
		var reply Reply
		if err != nil {
			reply = Reply{OK: false, MissionGo: s.state.MissionGo(), ThrottlePct: s.state.Throttle()}
		} else {
			reply = s.apply(cmd)
		}

		if _, err := s.server.Write(EncodeReply(reply)); err != nil {
			return
		}
	}
}

func (s *Service) apply(cmd Command) Reply {
	switch cmd.Type {
	case Status:
		// no mutation
	case Go:
		s.state.SetMissionGo(true)
		s.state.SetAbortRequested(false)
	case NoGo:
		s.state.SetMissionGo(false)
		// NoGo deliberately does not clear abort_requested: once an abort
		// is latched, only an explicit Go can clear it.
	case Abort:
		s.state.SetAbortRequested(true)
		s.state.SetMissionGo(false)
	case Throttle:
		s.state.SetThrottle(int(cmd.Value)) // State.SetThrottle clamps to [0,100]
	default:
		return Reply{OK: false, MissionGo: s.state.MissionGo(), ThrottlePct: s.state.Throttle()}
	}

	return Reply{
		OK:          true,
		MissionGo:   s.state.MissionGo(),
		ThrottlePct: s.state.Throttle(),
	}
}

// Send encodes cmd onto the wire, issues it as a synchronous round trip,
// and decodes the reply, or returns ErrShutdown/ErrCommandFailed if the
// service is not available. Concurrent Send calls are serialized so a
// write/read pair is never split across two callers' requests.
func (s *Service) Send(ctx context.Context, cmd Command) (Reply, error) {
	select {
	case <-s.done:
		return Reply{}, ErrCommandFailed
	default:
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	type result struct {
		reply Reply
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		if _, err := s.client.Write(EncodeRequest(cmd)); err != nil {
			resCh <- result{err: ErrCommandFailed}
			return
		}
		replyBuf := make([]byte, ReplySize)
		if _, err := io.ReadFull(s.client, replyBuf); err != nil {
			resCh <- result{err: ErrCommandFailed}
			return
		}
		reply, err := DecodeReply(replyBuf)
		if err != nil {
			resCh <- result{err: ErrCommandFailed}
			return
		}
		resCh <- result{reply: reply}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			return Reply{}, r.err
		}
		return r.reply, nil
	case <-ctx.Done():
		return Reply{}, ErrShutdown
	case <-s.done:
		return Reply{}, ErrCommandFailed
	}
}
