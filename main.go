// SPDX-License-Identifier: GPL-2.0-or-later

// q3cm loads the collision model of a Quake III map and answers trace,
// contents, leaf and area queries against it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"q3cm/config"
	"q3cm/conlog"
	"q3cm/cvars"
)

var (
	mapFile    = flag.String("map", "", "map name or bsp file to load")
	configFile = flag.String("config", "", "yaml config file, defaults to ./q3cm.yaml if present")
	execFile   = flag.String("exec", "", "file with console commands to run")
	logLevel   = flag.String("loglevel", "", "override the configured log level")
	basePath   = flag.String("basepath", "", "directory holding baseq3, overrides fs_basepath")
	game       = flag.String("game", "", "mod directory searched before baseq3, overrides fs_game")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [command args...]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	conlog.Init(cfg.LogConfig())
	defer conlog.Sync()
	if err := cfg.Apply(); err != nil {
		return err
	}
	if *basePath != "" {
		cvars.FSBasePath.SetByString(*basePath)
	}
	if *game != "" {
		cvars.FSGame.SetByString(*game)
	}

	c, err := newConsole(os.Stdout)
	if err != nil {
		return err
	}
	if *mapFile != "" {
		c.buf.AddText("map " + strconv.Quote(*mapFile) + "\n")
	}
	if *execFile != "" {
		data, err := os.ReadFile(*execFile)
		if err != nil {
			return err
		}
		c.buf.AddText(string(data) + "\n")
	}
	if flag.NArg() > 0 {
		line := strings.Join(flag.Args(), " ")
		conlog.Logger().Debug("command line", zap.String("line", line))
		c.buf.AddText(line + "\n")
	}
	return c.buf.Execute()
}
