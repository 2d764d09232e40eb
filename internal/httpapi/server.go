package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/service"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/types"
)

// StatusReader is satisfied by *service.StatusService.
type StatusReader interface {
	LightOn(ctx context.Context) (service.Status, error)
}

type Dependencies struct {
	Logger *log.Logger
	Addr   string
	Status StatusReader
	Clock  clock.Clock
	// Metrics serves GET /metrics; nil means the default Prometheus registry.
	Metrics http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	status     StatusReader
	clock      clock.Clock
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	clk := d.Clock
	if clk == nil {
		clk = clock.System{}
	}
	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	s := &Server{
		logger: d.Logger,
		mux:    mux,
		status: d.Status,
		clock:  clk,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.Handle("GET /metrics", metricsHandler)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start blocks serving until Shutdown; it then returns http.ErrServerClosed.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{OK: true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status.LightOn(r.Context())
	if err != nil {
		s.logger.Printf("status error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	resp := types.StatusResponse{
		OK:           true,
		Known:        st.Known,
		OnForSeconds: int64(st.OnFor / time.Second),
		OnFor:        service.FormatDuration(st.OnFor),
		ServerTime:   store.FormatTimestamp(s.clock.Now()),
	}
	if st.Known {
		resp.PowerResumedAt = store.FormatTimestamp(st.PowerResumedAt)
	}

	if wantsProtobuf(r) {
		msg, err := statusToProto(resp)
		if err != nil {
			s.logger.Printf("status proto error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
		writeProto(w, http.StatusOK, msg)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
