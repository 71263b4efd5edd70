package main

import (
	"flag"
	"log"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	root := flag.String("root", ".", "documentation site root")
	cfgFile := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg := config.DefaultConfig(*root)
	if *cfgFile != "" {
		var err error
		cfg, err = config.LoadFromFile(*cfgFile, *root)
		if err != nil {
			log.Fatal(err)
		}
	}
	// Runs report over the websocket; keep the server's stdout quiet.
	cfg.LogToConsole = false
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	server := web.NewServer(cfg)
	server.SetVersion(version)

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
