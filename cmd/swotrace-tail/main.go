// Command swotrace-tail opens a trace session against a TCP host:port
// or a recorded tape file and prints decoded text-mode lines to stdout
// as they arrive, generalizing the teacher's ublk-mem demo command
// into a read-only trace viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackmagic-traceview/swotrace"
	"github.com/blackmagic-traceview/swotrace/backend"
	"github.com/blackmagic-traceview/swotrace/internal/logging"
)

func main() {
	var (
		tcpAddr = flag.String("tcp", "", "host:port of a TCP SWO bridge to connect to")
		tape    = flag.String("tape", "", "path to a raw ITM byte capture to replay instead of a live transport")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *tcpAddr == "" && *tape == "" {
		log.Fatal("one of -tcp or -tape is required")
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := openSession(ctx, *tcpAddr, *tape)
	if err != nil {
		logger.Error("failed to open session", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Error("error closing session", "error", err)
		}
	}()

	logger.Info("session opened", "id", sess.ID())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	printed := 0
	for {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			return
		case <-ticker.C:
			sess.ProcessText(true)
			printed = printLines(sess, printed)
		}
	}
}

func openSession(ctx context.Context, tcpAddr, tapePath string) (*swotrace.Session, error) {
	params := swotrace.DefaultParams()
	for i := 0; i < swotrace.ChannelCount; i++ {
		params.InitialChannels = append(params.InitialChannels, swotrace.ChannelConfig{Index: i, Enabled: true})
	}

	if tapePath != "" {
		data, err := os.ReadFile(tapePath)
		if err != nil {
			return nil, fmt.Errorf("read tape file: %w", err)
		}
		tape := backend.NewTape(data, 0, 0.0001)
		return swotrace.OpenSessionWithTransport(tape, params, nil)
	}

	params.Transport = swotrace.TransportTCP
	params.TCPAddr = tcpAddr
	return swotrace.OpenSession(ctx, params, nil)
}

func printLines(sess *swotrace.Session, from int) int {
	count := sess.Count()
	for i := from; i < count; i++ {
		line := sess.Lines()[i]
		name := sess.Registry().GetName(line.Channel)
		fmt.Printf("[%s] %s: %s\n", line.TimeFmt, name, line.Text())
	}
	return count
}
