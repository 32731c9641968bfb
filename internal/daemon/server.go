package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/meetmind/meetmind/internal/logger"
)

// Server accepts NDJSON connections on a Unix socket.
type Server struct {
	handler *Handler
	hub     *Hub
	log     zerolog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(handler *Handler, hub *Hub) *Server {
	return &Server{
		handler: handler,
		hub:     hub,
		log:     logger.With("socket"),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen removes a stale socket file and binds socketPath.
func Listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if conn, err := net.Dial("unix", socketPath); err == nil {
		conn.Close()
		return nil, fmt.Errorf("daemon already running at %s", socketPath)
	}
	_ = os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is done or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var cmd Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			enc.Encode(Response{Error: "invalid command: " + err.Error()})
			continue
		}

		resp := s.handler.Handle(ctx, cmd)
		if err := enc.Encode(resp); err != nil {
			return
		}

		if cmd.Cmd == CmdSubscribe && resp.OK {
			s.stream(ctx, conn, enc, cmd.Events)
			return
		}
	}
}

// stream turns the connection into an event feed until either side goes away.
func (s *Server) stream(ctx context.Context, conn net.Conn, enc *json.Encoder, events []string) {
	ch, unsubscribe := s.hub.Subscribe(events)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		// Subscribers send nothing further; any read result means hangup.
		buf := make([]byte, 512)
		for {
			if _, err := conn.Read(buf); err != nil {
				close(closed)
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(ev); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
