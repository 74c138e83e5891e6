package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lessondeck/internal/app"
	"lessondeck/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("lessondeck: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	dataDir := flag.String("data", "", "override the data directory")
	remoteURI := flag.String("remote", "", "MongoDB URI of the shared store (optional)")
	host := flag.Bool("host", false, "start a broadcast session as host")
	join := flag.String("join", "", "join a host session at host:port")
	discover := flag.Bool("discover", false, "browse the LAN for host sessions and exit")
	exportPath := flag.String("export", "", "export the current collection to a PDF and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *remoteURI != "" {
		cfg.Remote.URI = *remoteURI
	}

	a := app.New(cfg)
	a.SetEmitHandler(func(event string, data any) {
		log.Printf("[event] %s: %v", event, data)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	switch {
	case *discover:
		for _, addr := range a.DiscoverHosts(2 * time.Second) {
			fmt.Println(addr)
		}
		return nil
	case *exportPath != "":
		return a.ExportPDF(*exportPath)
	case *host:
		addr, err := a.StartHosting()
		if err != nil {
			return err
		}
		log.Printf("hosting session on %s", addr)
	case *join != "":
		if err := a.JoinSession(*join); err != nil {
			return err
		}
		log.Printf("joined session at %s", *join)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("shutting down")
	return nil
}
