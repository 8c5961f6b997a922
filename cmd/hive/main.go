package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, "hive:", err)
		os.Exit(1)
	}
}

// Run parses args and executes the selected command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	options := newOptions(ctx, stdout, stderr)
	defer options.close()

	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "hive"
	_, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
		}
		return err
	}
	return nil
}
