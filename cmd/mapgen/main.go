// Command mapgen generates a world map, reports its makeup, and
// optionally saves it to SQLite and serves it over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/wildermap/internal/api"
	"github.com/talgya/wildermap/internal/persistence"
	"github.com/talgya/wildermap/internal/worldgen"
)

func main() {
	var (
		width   = flag.Int("width", 640, "map width in tiles")
		height  = flag.Int("height", 480, "map height in tiles")
		seed    = flag.Int64("seed", 0, "world seed (0 = random)")
		name    = flag.String("name", "Wildermap", "world name")
		dbPath  = flag.String("db", "", "SQLite path to save the world (empty = no save)")
		apiPort = flag.Int("port", 0, "serve the world over HTTP on this port (0 = no server)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := worldgen.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.Seed = *seed
	cfg.Progress = func(frac float64, msg string) {
		slog.Debug("generation progress", "pct", int(frac*100), "stage", msg)
	}

	gen := worldgen.New(cfg)
	slog.Info("generating world",
		"name", *name,
		"width", cfg.Width,
		"height", cfg.Height,
		"seed", gen.Seed())

	world := gen.Generate()

	reportTerrain(world)
	reportSettlements(world)

	if *dbPath != "" {
		if dir := filepath.Dir(*dbPath); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.SaveWorld(world, *name); err != nil {
			slog.Error("failed to save world", "error", err)
			os.Exit(1)
		}
		slog.Info("world saved", "path", *dbPath)
	}

	if *apiPort > 0 {
		server := &api.Server{
			World: world,
			Name:  *name,
			Port:  *apiPort,
		}
		server.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
		fmt.Println("Serving... (Ctrl+C to stop)")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
	}
}

func reportTerrain(world *worldgen.World) {
	census := world.Grid.Census()
	cats := make([]worldgen.Category, 0, len(census))
	for c := range census {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	total := world.Grid.Width * world.Grid.Height
	land := 0
	for _, c := range cats {
		n := census[c]
		if !c.IsWater() {
			land += n
		}
		slog.Info("terrain",
			"type", c.String(),
			"tiles", humanize.Comma(int64(n)),
			"pct", fmt.Sprintf("%.1f", float64(n)*100/float64(total)))
	}
	slog.Info("land total", "tiles", humanize.Comma(int64(land)))
}

func reportSettlements(world *worldgen.World) {
	var villages, towns, cities int
	for _, s := range world.Settlements {
		switch s.Kind {
		case worldgen.Village:
			villages++
		case worldgen.Town:
			towns++
		case worldgen.City:
			cities++
		}
	}
	slog.Info("settlements placed",
		"cities", cities,
		"towns", towns,
		"villages", villages)
}
