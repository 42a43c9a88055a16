package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/casefile/internal/config"
	"github.com/peterkuimelis/casefile/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	gameAddr := flag.String("game", "localhost:9000", "address of the hosted run browsers join")
	cfgPath := flag.String("config", "casefile.yaml", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: catalog: %v\n", err)
		os.Exit(1)
	}

	srv := web.NewServer(cat, *gameAddr)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("casefile web UI listening on http://localhost:%d (game server %s)", *port, *gameAddr)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
