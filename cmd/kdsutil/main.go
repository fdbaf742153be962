package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/kds/cmd/kdsutil/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "kds-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := aqm.LoadConfig("KDSUTIL", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	switch command {
	case "emit-demo":
		if err := commands.EmitDemo(ctx, config, logger); err != nil {
			log.Fatalf("Demo emission failed: %v", err)
		}
		logger.Info("Demo events published")

	case "clear-settings":
		if err := commands.ClearSettings(ctx, config, logger); err != nil {
			log.Fatalf("Clear settings failed: %v", err)
		}
		logger.Info("Display settings cleared")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - kitchen display utility commands

Usage:
  %s <command> [options]

Commands:
  emit-demo       Publish a scripted set of ticket events to a store's display
  clear-settings  Remove stored display settings (one store, or all when no store is set)
  version         Print version information
  help            Show this help message

Environment Variables:
  KDSUTIL_NATS_URL            NATS server URL (default: nats://localhost:4222)
  KDSUTIL_KDS_STORE_ID        Target store (default: demo-store for emit-demo)
  KDSUTIL_KDS_EMIT_INTERVAL   Pause between demo events (default: 1s)
  KDSUTIL_DB_MONGO_URL        MongoDB connection URL (default: mongodb://localhost:27017)
  KDSUTIL_LOG_LEVEL           Log level: debug, info, error (default: info)

Examples:
  %s emit-demo
  KDSUTIL_KDS_STORE_ID=store-1 %s clear-settings

`, appName, appName, appName, appName)
}
