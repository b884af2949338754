package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	_ "net/http/pprof" // profiling

	"memscan/internal/memscan/cmd"
	"memscan/internal/memscan/log"
)

const defaultProfileAddr = "localhost:6060"

// profileAddr returns where to serve pprof: MEMSCAN_PROFILE itself when it is
// a host:port, the default address for any other non-empty value.
func profileAddr() string {
	v := os.Getenv("MEMSCAN_PROFILE")
	switch {
	case v == "":
		return ""
	case strings.Contains(v, ":"):
		return v
	default:
		return defaultProfileAddr
	}
}

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("Application terminated due to unhandled panic")
	})

	if addr := profileAddr(); addr != "" {
		go func() {
			slog.Info("Serving pprof", "addr", addr)
			if httpErr := http.ListenAndServe(addr, nil); httpErr != nil {
				slog.Error("Failed to pprof listen", "error", httpErr)
			}
		}()
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
