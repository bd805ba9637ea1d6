package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/standardbeagle/flatq/internal/debug"
	"github.com/standardbeagle/flatq/internal/mcp"

	"github.com/urfave/cli/v2"
)

func mcpCommand(c *cli.Context) error {
	// stdio carries the protocol from here on
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	logger := mcp.NewDiagnosticLogger(os.Getenv("FLATQ_MCP_LOG_DIR"))
	mcpServer, err := mcp.NewServer(cfg, logger)
	if err != nil {
		logger.Close()
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}
	defer mcpServer.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return debug.Fatal("MCP server error: %v\n", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case err := <-errChan:
			debug.LogMCP("Server shutdown completed\n")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-shutdownTimer.C:
			debug.LogMCP("Graceful shutdown timeout, closing stdin\n")
			// break the stdio transport's blocking read
			os.Stdin.Close()
			select {
			case <-errChan:
				return nil
			case <-time.After(500 * time.Millisecond):
				debug.LogMCP("Force shutdown timeout exceeded\n")
				return nil
			}
		}
	}
}
