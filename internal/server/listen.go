package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/shared"
)

// landingGrace bounds how long the server stays up after a successful exchange for the browser to follow the 303.
const landingGrace = 2 * time.Second

// CallbackServer is the short-lived local listener the provider redirects back to.
type CallbackServer struct {
	handler *CallbackHandler
	srv     *http.Server
	ln      net.Listener
	errs    chan error
	logger  *log.Logger
}

// Listen binds addr and starts serving the callback route behind [RequestLogger].
//
// The listener is bound before Listen returns, so the browser can be sent to the provider immediately.
func Listen(addr string, handler *CallbackHandler, logger *log.Logger) (*CallbackServer, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	var router Router = NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(handler)

	s := &CallbackServer{
		handler: handler,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		ln:      ln,
		errs:    make(chan error, 1),
		logger:  logger,
	}

	go func() {
		logger.Info("starting callback server", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	return s, nil
}

// Addr returns the bound address.
func (s *CallbackServer) Addr() string {
	return s.ln.Addr().String()
}

// Wait blocks until the first callback result, a server error, the timeout or ctx, then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (CallbackResult, error) {
	defer s.Shutdown()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result CallbackResult
	select {
	case result = <-s.handler.Result():
	case err := <-s.errs:
		return CallbackResult{}, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return CallbackResult{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}

	if result.Error() == nil {
		grace := time.NewTimer(landingGrace)
		defer grace.Stop()
		select {
		case <-s.handler.Landed():
		case <-grace.C:
		case <-ctx.Done():
		}
	}

	return result, result.Error()
}

// Shutdown stops the server, waiting briefly for in-flight requests.
func (s *CallbackServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
	}
}
