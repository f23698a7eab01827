package main

import (
	"context"
	"fmt"
	"os"

	"aigrants.co/cli/internal/interfaces/cli"
	"aigrants.co/cli/internal/interfaces/di"
)

func main() {
	container, err := di.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	code := cli.Execute(container.GetCLIContainer())

	if err := container.Shutdown(context.Background()); err != nil {
		container.Logger.Error().Err(err).Msg("error during shutdown")
	}
	os.Exit(code)
}
