// Command ftpserver transmits one file to clients that connect to its
// broadcast port, one at a time.
package main

import (
	"errors"
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
	"github.com/arfandi/udpftp/sender"
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
		flagPort     = 9000
		flagFile     = ""
		flagIP       = "127.0.0.1"
		flagLogLevel = "info"
	)
	flag.IntVar(&flagPort, "port", flagPort, "broadcast port to bind and listen on")
	flag.StringVar(&flagFile, "file", flagFile, "path of the file to send")
	flag.StringVar(&flagIP, "ip", flagIP, "local interface address to bind to")
	flag.StringVar(&flagLogLevel, "log-level", flagLogLevel, "trace, debug, info, warn or error")
	flag.Parse()

	if flagFile == "" {
		return errors.New("-file is required")
	}

	log := slogx.Logger{Log: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(flagLogLevel)}))}

	f, err := os.OpenFile(flagFile, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", flagFile, err)
	}
	var cleanup closeset.Set
	cleanup.Add(f.Close)
	defer func() {
		if err := cleanup.CloseAll(); err != nil {
			log.Error("ftpserver: cleanup failed", slog.String("err", err.Error()))
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	basename, extension := segment.SplitFilename(filepath.Base(flagFile))
	meta := segment.Metadata{Basename: basename, Extension: extension, Size: info.Size()}

	data, err := sender.Split(f, info.Size())
	if err != nil {
		return fmt.Errorf("splitting %s: %w", flagFile, err)
	}

	ep, err := endpoint.New(endpoint.Config{IP: flagIP, Port: flagPort, ReuseAddr: true, Logger: &log})
	if err != nil {
		return fmt.Errorf("binding broadcast port %d: %w", flagPort, err)
	}
	cleanup.Add(ep.Close)

	for {
		result := session.SendFile(ep, meta, data, log)
		if result.Err != nil {
			return result.Err
		}
		log.Info("ftpserver: transfer finished, waiting for next client")
	}
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
