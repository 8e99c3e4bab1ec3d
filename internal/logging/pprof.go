package logging

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"
)

// pprofServer is the running profiler endpoint, nil when disabled.
var pprofServer *http.Server

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// startPprof serves profiles on addr until stopPprof. Called with globalMu
// held, so it only logs from its goroutine.
func startPprof(addr string) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           pprofMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	pprofServer = srv
	go func() {
		log := ForComponent(CompHTTP)
		log.Info("pprof_server_start", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof_server_error", slog.String("error", err.Error()))
		}
	}()
}

func stopPprof() {
	if pprofServer != nil {
		_ = pprofServer.Close()
		pprofServer = nil
	}
}
