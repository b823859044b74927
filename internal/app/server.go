package app

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/core"
)

// Server accepts client streams and detaches one handler goroutine per
// connection. It carries no protocol logic of its own.
type Server struct {
	store     core.Store
	registry  *core.Registry
	readLimit int
}

func NewServer(store core.Store, registry *core.Registry, readLimit int) *Server {
	return &Server{
		store:     store,
		registry:  registry,
		readLimit: readLimit,
	}
}

// Serve runs the accept loop until ctx is canceled or the listener fails.
// In-flight sessions are abandoned on shutdown; their handlers exit when
// their streams die.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	log.Info().Str("module", "app.server").Str("addr", ln.Addr().String()).Msg("chat server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		log.Info().Str("module", "app.server").Str("remote", conn.RemoteAddr().String()).Msg("new connection")
		h := newHandler(s.store, s.registry, conn, s.readLimit)
		go h.run(ctx)
	}
}
