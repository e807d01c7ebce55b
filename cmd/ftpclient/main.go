// Command ftpclient receives one file from a server and writes it to disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/closeset"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/segment"
	"github.com/arfandi/udpftp/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalln("failed:", err)
	}
	fmt.Println("finished")
}

func run() error {
	var (
		flagPort       = 0
		flagServerPort = 9000
		flagOut        = "received_file"
		flagServerIP   = "127.0.0.1"
		flagClientIP   = "127.0.0.1"
		flagLogLevel   = "info"
	)
	flag.IntVar(&flagPort, "port", flagPort, "local receive port (0 picks an ephemeral port)")
	flag.IntVar(&flagServerPort, "server-port", flagServerPort, "server's broadcast port")
	flag.StringVar(&flagOut, "out", flagOut, "directory to write the received file into")
	flag.StringVar(&flagServerIP, "server-ip", flagServerIP, "server address")
	flag.StringVar(&flagClientIP, "client-ip", flagClientIP, "local interface address to bind to")
	flag.StringVar(&flagLogLevel, "log-level", flagLogLevel, "trace, debug, info, warn or error")
	flag.Parse()

	log := slogx.Logger{Log: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(flagLogLevel)}))}

	ep, err := endpoint.New(endpoint.Config{IP: flagClientIP, Port: flagPort, Logger: &log})
	if err != nil {
		return fmt.Errorf("binding receive port: %w", err)
	}
	var cleanup closeset.Set
	cleanup.Add(ep.Close)
	defer func() {
		if err := cleanup.CloseAll(); err != nil {
			log.Error("ftpclient: cleanup failed", slog.String("err", err.Error()))
		}
	}()

	if err := os.MkdirAll(flagOut, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", flagOut, err)
	}

	var out *os.File

	onMetadata := func(meta segment.Metadata) error {
		name := meta.Basename
		if meta.Extension != "" {
			name += "." + meta.Extension
		}
		f, err := os.Create(filepath.Join(flagOut, name))
		if err != nil {
			return err
		}
		out = f
		cleanup.Add(f.Close)
		return nil
	}
	sink := func(chunk []byte) error {
		if out == nil {
			return fmt.Errorf("received data before metadata")
		}
		_, err := out.Write(chunk)
		return err
	}

	_, result := session.ReceiveFile(ep, flagServerIP, flagServerPort, onMetadata, sink, log)
	if result.Err != nil {
		return result.Err
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return slogx.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
