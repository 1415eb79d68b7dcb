package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mgnsk/strqueue/harness"
	"github.com/mgnsk/strqueue/internal/logger"
	"go.uber.org/zap"
)

var (
	configFile  = flag.String("config", "", "Name of TOML configuration file")
	inputFile   = flag.String("f", "", "Name of command file (default: stdin)")
	logLevel    = flag.String("v", "", "Log level, overrides configuration")
	metricsAddr = flag.String("metricsAddr", "", "Address to serve metrics on")
	seed        = flag.Int64("seed", 0, "Seed for allocation failures, overrides configuration")
)

func main() {
	flag.Parse()
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(stdin io.Reader, stdout io.Writer) error {
	config := defaultConfig()
	if *configFile != "" {
		var err error
		if config, err = LoadConfig(*configFile); err != nil {
			return err
		}
	}

	if *logLevel != "" {
		config.Log.LogLevel = *logLevel
	}
	if *seed != 0 {
		config.Harness.Seed = *seed
	}

	log := logger.New(config.Log)
	defer log.Sync()

	alloc := harness.NewAllocator(config.Harness.Seed)
	alloc.SetFailProbability(config.Harness.FailProbability)

	if err := alloc.RegisterMetrics("/qtest/allocator"); err != nil {
		return err
	}

	if *metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	input := stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	interp := harness.NewInterp(alloc, stdout,
		harness.WithStringLimit(config.Harness.StringLimit),
		harness.WithEcho(config.Harness.EchoCommands || *inputFile != ""),
		harness.WithInterpLogger(log),
	)

	runErr := interp.Run(input)
	closeErr := interp.Close()

	log.Info("finished",
		zap.Int("errors", interp.Errors()),
		zap.Uint64("allocations", alloc.Allocs()),
		zap.Uint64("frees", alloc.Frees()),
		zap.Uint64("injectedFailures", alloc.Failures()),
	)

	if closeErr != nil {
		return closeErr
	}
	return runErr
}
