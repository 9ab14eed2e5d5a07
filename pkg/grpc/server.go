// Package grpc runs the internal gRPC endpoint. It serves the standard
// grpc.health.v1 service, backed by a readiness check, plus reflection so
// grpcurl works without protos.
//
//	srv, err := grpc.Start(config.GRPCPort(), database.Ping)
//	defer grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

var (
	handledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tiffin",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "gRPC calls completed, by method and code.",
	}, []string{"method", "code"})

	handlingSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tiffin",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "gRPC call latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method"})
)

func init() {
	metrics.MustRegister(handledTotal, handlingSeconds)
}

// Checker reports whether a dependency is reachable.
type Checker func() error

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered",
				"method", info.FullMethod, "panic", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	handledTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	handlingSeconds.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.WithCtx(ctx).Debug("grpc: request",
		"method", info.FullMethod, "code", code.String(), "took", time.Since(start))
	return resp, err
}

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	checks []Checker
}

func (h *healthServer) status() grpc_health_v1.HealthCheckResponse_ServingStatus {
	for _, check := range h.checks {
		if err := check(); err != nil {
			logger.Warn("grpc: health check failed", "error", err)
			return grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}

func (h *healthServer) Check(context.Context, *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{Status: h.status()}, nil
}

func (h *healthServer) Watch(_ *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: h.status()})
}

// NewServer builds the server without listening.
func NewServer(checks ...Checker) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(4<<20),
		grpc.MaxSendMsgSize(4<<20),
	)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{checks: checks})
	reflection.Register(srv)
	return srv
}

// Start listens on port and serves in the background.
func Start(port string, checks ...Checker) (*grpc.Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	srv := NewServer(checks...)
	logger.Info("grpc: listening", "addr", addr)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	return srv, nil
}

// Stop waits for in-flight RPCs, then closes the listener.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("grpc: shutting down")
	srv.GracefulStop()
}
