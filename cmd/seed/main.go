// cmd/seed/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Annany2002/nebula-seeder/api"
	"github.com/Annany2002/nebula-seeder/config"
	"github.com/Annany2002/nebula-seeder/internal/logger"
	"github.com/Annany2002/nebula-seeder/internal/seeder"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run executes one seeding pass (or the hash subcommand) and returns the exit code.
func run(args []string, stdin *os.File, stdout io.Writer) int {
	// Prompts and results own stdout.
	logger.SetOutput(os.Stderr)

	p := newPrompter(stdin, stdout)

	if len(args) > 0 && args[0] == "hash" {
		if err := runHash(p); err != nil {
			customLog.Errorf("Failed to hash password: %v", err)
			return 1
		}
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Errorf("Failed to load configuration: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	input, err := promptInput(p)
	if err != nil {
		report(stdout, err)
		return 1
	}

	res, err := api.NewPipeline(nil, cfg).Run(ctx, input)
	if err != nil {
		report(stdout, err)
		return 1
	}

	if err := printResult(stdout, res); err != nil {
		customLog.Errorf("Failed to print result: %v", err)
		return 1
	}
	return 0
}

func printResult(w io.Writer, res *seeder.Result) error {
	fmt.Fprintf(w, "Sample format:\n%s\n\n", res.SampleFormat)
	fmt.Fprintf(w, "Generated %d record(s):\n", len(res.Records))
	if err := printRecords(w, res.Records); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nInserted into %s (status %d).\n", res.Table.CollectionName, res.Batch.StatusCode)
	fmt.Fprintln(w, res.Batch.Body)
	return nil
}
