// Command switchlogd runs the switchlog daemon in the foreground without the
// control CLI. It is equivalent to `switchlog daemon`.
package main

import (
	"context"
	"flag"
	"log"

	"switchlog/internal/config"
	"switchlog/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	replayPath := flag.String("replay", "", "replay script path to play instead of live device feeds")
	logLevel := flag.String("log-level", "", "override the configured log level")
	development := flag.Bool("development", false, "enable development logging output")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:    *logLevel,
		Development: *development,
		ReplayPath:  *replayPath,
	}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
