package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/casefile/internal/config"
	casemcp "github.com/peterkuimelis/casefile/internal/mcp"
)

func main() {
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

	casemcp.SetCatalog(cat)
	casemcp.SetRules(cfg.Rules)
	casemcp.SetSeed(cfg.Seed)

	s := server.NewMCPServer("casefile", "1.0.0")
	casemcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
