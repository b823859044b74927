// Package transport builds the encrypted listening endpoint. Everything
// above it sees only accepted byte streams.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/config"
)

// Listen loads the server certificate and returns a TLS listener on the
// configured port. The handshake happens lazily on first I/O per client.
func Listen(cfg *config.Config) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificates: %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	ln, err := tls.Listen("tcp", fmt.Sprintf(":%d", cfg.Port), tlsCfg)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	log.Info().Str("module", "transport").Str("addr", ln.Addr().String()).Msg("TLS listener ready")
	return ln, nil
}
