package main

import (
	"flag"
	"log"

	"github.com/zapdesk-io/zapdesk/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := server.Run(*configPath); err != nil {
		log.Fatalf("server: %v", err)
	}
}
