package main

import (
	"flag"
	"log"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/app"
)

func main() {
	var configPath string
	var overrides app.Overrides
	flag.StringVar(&configPath, "configPath", "", "Path to configuration file")
	flag.StringVar(&overrides.Nodes, "nodes", "", "Comma separated cluster members as <number>_<address>; overrides cluster.nodes")
	flag.StringVar(&overrides.SelfAddress, "self", "", "Peer address of this node; overrides cluster.self_address")
	flag.Parse()

	application, err := app.New(configPath, overrides)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
