// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diagserver is a small, always-optional HTTP diagnostics
// surface for a long-running vicictl process: Prometheus scraping,
// a liveness probe, and pprof. It carries no knowledge of VICI itself.
package diagserver

import (
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-vici/vici/common"
	"github.com/go-vici/vici/confengine"
	"github.com/go-vici/vici/logger"
)

// Config is unpacked from the "diagserver" child of watch.yaml.
type Config struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// Server exposes /metrics, /healthz, and optionally /debug/pprof/*.
type Server struct {
	config Config
	router *mux.Router
	server *http.Server
}

// New builds a Server from conf's "diagserver" section. It returns a nil
// *Server, nil error when the section disables the server — callers must
// check for nil before calling ListenAndServe.
func New(conf *confengine.Config) (*Server, error) {
	var config Config
	if err := conf.UnpackChild("diagserver", &config); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}

	router := mux.NewRouter()
	s := &Server{
		config: config,
		router: router,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}

	s.RegisterGetRoute("/metrics", promhttp.Handler().ServeHTTP)
	s.RegisterGetRoute("/healthz", s.serveHealthz)
	if config.Pprof {
		s.registerPprofRoutes()
	}
	return s, nil
}

// ListenAndServe blocks, serving until the listener fails or the process
// exits.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("diagserver listening on %s", s.config.Address)
	return s.server.Serve(l)
}

// Close shuts the HTTP listener down.
func (s *Server) Close() error {
	return s.server.Close()
}

func (s *Server) RegisterGetRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

func (s *Server) RegisterPostRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodPost).Path(path).HandlerFunc(f)
}

func (s *Server) serveHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) registerPprofRoutes() {
	s.RegisterGetRoute("/debug/pprof/cmdline", pprof.Cmdline)
	s.RegisterGetRoute("/debug/pprof/profile", pprof.Profile)
	s.RegisterGetRoute("/debug/pprof/symbol", pprof.Symbol)
	s.RegisterGetRoute("/debug/pprof/trace", pprof.Trace)
	s.RegisterGetRoute("/debug/pprof/{other}", pprof.Index)
}

var (
	buildInfoGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: common.App,
		Name:      "build_info",
		Help:      "Build metadata; value is always 1, labels carry the version/hash/time.",
	}, []string{"version", "git_hash", "build_time"})

	uptimeGauge = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: common.App,
		Name:      "uptime_seconds",
		Help:      "Seconds since the process started.",
	}, func() float64 {
		return float64(time.Now().Unix() - common.Started())
	})
)

// PublishBuildInfo sets the build_info gauge once at process start. Kept
// out of an init() so the caller controls when metrics become visible.
func PublishBuildInfo() {
	bi := common.GetBuildInfo()
	buildInfoGauge.WithLabelValues(bi.Version, bi.GitHash, bi.Time).Set(1)
}
