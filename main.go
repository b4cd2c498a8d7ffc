package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/milk9111/npcbrain/config"
	"github.com/milk9111/npcbrain/levels"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "engine config YAML (defaults when empty)")
	levelName := flag.String("level", "arena", "level name in levels/ or a path to a level YAML")
	ticks := flag.Int("ticks", 0, "frames to run (0 uses the level's count)")
	seed := flag.Int64("seed", 1, "random seed")
	watch := flag.Bool("watch", false, "reload assets from asset_dir while running")
	assetDir := flag.String("assets", "", "directory overriding the embedded assets")
	debug := flag.Bool("debug", false, "enable debug logging")
	list := flag.Bool("list", false, "list embedded levels and exit")
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(levels.Names(), "\n"))
		return
	}

	log := logrus.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if *assetDir != "" {
		cfg.AssetDir = *assetDir
	}
	if *watch {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(cfg.Level())
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	lvl, err := levels.Load(*levelName)
	if err != nil {
		log.WithError(err).Fatal("load level")
	}

	game, err := NewGame(cfg, lvl, *seed, log)
	if err != nil {
		log.WithError(err).Fatal("start level")
	}
	defer game.Close()

	if err := game.Run(*ticks); err != nil {
		log.WithError(err).Error("run")
		os.Exit(1)
	}
}
