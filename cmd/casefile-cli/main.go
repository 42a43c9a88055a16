package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterkuimelis/casefile/internal/config"
	"github.com/peterkuimelis/casefile/internal/game"
	"github.com/peterkuimelis/casefile/internal/log"
	casenet "github.com/peterkuimelis/casefile/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "solo":
		err = runSolo(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  casefile host [--port P] [--config FILE] [--seed N] [--cases A,B]")
	fmt.Println("  casefile join [--addr ADDR] [--name NAME]")
	fmt.Println("  casefile solo [--auto] [--config FILE] [--seed N] [--cases A,B]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Host a run and wait for a player to join over TCP")
	fmt.Println("  join    Connect to a hosted run and play it from this terminal")
	fmt.Println("  solo    Play a run locally (--auto lets the auto-player run it)")
}

// runFlags are shared by the commands that build a run.
type runFlags struct {
	config *string
	seed   *uint64
	cases  *string
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		config: fs.String("config", "casefile.yaml", "path to config file (optional)"),
		seed:   fs.Uint64("seed", 0, "random seed (0 = config or clock)"),
		cases:  fs.String("cases", "", "comma-separated case names (default: every case)"),
	}
}

func (f runFlags) load() (config.Config, *game.Catalog, error) {
	cfg, err := config.Load(*f.config)
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	if *f.seed != 0 {
		cfg.Seed = *f.seed
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return cfg, nil, fmt.Errorf("catalog: %w", err)
	}
	return cfg, cat, nil
}

func (f runFlags) caseList() []string {
	var names []string
	for _, n := range strings.Split(*f.cases, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	rf := addRunFlags(fs)
	port := fs.String("port", "9000", "TCP port to listen on")
	fs.Parse(args)

	cfg, cat, err := rf.load()
	if err != nil {
		return err
	}
	seed := cfg.RunSeed()
	fmt.Printf("Seed %d\n", seed)

	srv := &casenet.Server{
		Catalog: cat,
		Rules:   cfg.Rules,
		Seed:    seed,
		Cases:   rf.caseList(),
		Port:    *port,
		Out:     os.Stdout,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	name := fs.String("name", "", "name shown to the host")
	fs.Parse(args)

	return casenet.Connect(ctx, *addr, *name)
}

func runSolo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solo", flag.ExitOnError)
	rf := addRunFlags(fs)
	auto := fs.Bool("auto", false, "let the auto-player draft and play")
	fs.Parse(args)

	cfg, cat, err := rf.load()
	if err != nil {
		return err
	}
	seed := cfg.RunSeed()
	fmt.Printf("Seed %d\n", seed)

	if !*auto {
		srv := &casenet.Server{Catalog: cat, Rules: cfg.Rules, Seed: seed, Cases: rf.caseList()}
		return srv.RunLocal(ctx, os.Stdin, os.Stdout)
	}

	logger := log.NewTextLogger(os.Stdout)
	run, err := game.NewRun(game.RunConfig{Catalog: cat, Rules: cfg.Rules, Seed: seed, Logger: logger})
	if err != nil {
		return err
	}
	cases := rf.caseList()
	if len(cases) == 0 {
		for _, c := range cat.Cases {
			cases = append(cases, c.Name)
		}
	}
	if _, err := run.PlaySeries(ctx, &game.AutoController{}, cases); err != nil {
		return err
	}
	fmt.Println(casenet.Summary(run))
	return nil
}
