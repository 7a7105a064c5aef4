package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kestrelworks/smsbridge/internal/infrastructure/config"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/influxdb"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/logging"
	"github.com/kestrelworks/smsbridge/internal/message"
	"github.com/kestrelworks/smsbridge/internal/transport"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the gateway server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	EventPort int
	Logger    *logging.Logger
	Store     message.Repository
	Transport transport.Transport
	Influx    *influxdb.Client // optional telemetry, may be nil
	Version   string
}

// Server is the gateway's HTTP surface: the message API on the primary
// port and the event channel listener on the event port.
//
// It manages both HTTP listeners, routes, middleware, and the event hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	eventPort int
	logger    *logging.Logger
	store     message.Repository
	transport transport.Transport
	influx    *influxdb.Client
	version   string

	server      *http.Server
	eventServer *http.Server
	hub         *Hub
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new gateway server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("message store is required")
	}
	// Transport is optional: sends fail cleanly without it, but reads
	// and the event channel still function.

	eventPort := deps.EventPort
	if eventPort == 0 {
		eventPort = deps.Config.Port + 1
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		eventPort: eventPort,
		logger:    deps.Logger,
		store:     deps.Store,
		transport: deps.Transport,
		influx:    deps.Influx,
		version:   deps.Version,
	}, nil
}

// Start begins listening on the primary and event ports.
//
// It starts the event hub, builds both routers, and launches the HTTP
// listeners in background goroutines. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger, s.influx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// No write timeout on the event listener: subscriber connections
	// are long-lived and pump their own deadlines.
	s.eventServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.eventPort),
		Handler:           s.buildEventRouter(),
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
	}

	go s.listen(s.server, "API")
	go s.listen(s.eventServer, "event channel")

	return nil
}

// listen runs a listener and logs unexpected exits.
func (s *Server) listen(srv *http.Server, name string) {
	var err error
	if s.cfg.TLS.Enabled {
		s.logger.Info(name+" server starting with TLS",
			"address", srv.Addr,
			"cert", s.cfg.TLS.CertFile,
		)
		err = srv.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	} else {
		s.logger.Info(name+" server starting", "address", srv.Addr)
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(name+" server error", "error", err)
	}
}

// IngestInbound stores a message delivered by the transport and
// broadcasts the received event. Wired as the transport's inbound
// handler at startup.
func (s *Server) IngestInbound(from, body string, timestamp int64) {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	msg := &message.Message{
		Address:   from,
		Body:      body,
		Timestamp: timestamp,
		Kind:      message.KindInbox,
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		// The event still goes out: subscribers care about arrival,
		// and the store may simply be read-degraded.
		s.logger.Error("failed to store inbound message", "from", from, "error", err)
	}

	s.logger.Info("message received", "id", msg.ID, "from", from)

	if s.influx != nil {
		s.influx.WriteMessageReceived()
	}

	if s.hub != nil {
		s.hub.Broadcast(newReceivedEvent(msg.ID, from, body, msg.Timestamp))
	}
}

// Close gracefully shuts down both listeners.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections. Event subscribers are
// disconnected by the hub when the internal context is cancelled.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("gateway shutting down")

	var firstErr error
	if err := s.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutting down API server: %w", err)
	}
	if err := s.eventServer.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("shutting down event server: %w", err)
	}
	return firstErr
}

// HealthCheck verifies the gateway is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("gateway health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("gateway not started")
	}

	return nil
}
