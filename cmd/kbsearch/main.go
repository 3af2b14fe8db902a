// Package main provides the entry point for the kbsearch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Aman-CERP/kbsearch/cmd/kbsearch/cmd"
	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

func main() {
	// A .env file is optional; KBSEARCH_* variables may come from it.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprint(os.Stderr, kberrors.FormatForCLI(err))
		os.Exit(1)
	}
}
