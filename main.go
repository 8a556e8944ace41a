package main

import (
	"errors"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	clientCmd "github.com/goto/sentinel/client/cmd"
	server "github.com/goto/sentinel/server/cmd"
)

const DefaultExitCode = 1

var errRequestFail = errors.New("🔥 unable to complete request successfully")

//nolint:forbidigo
func main() {
	command := clientCmd.New()

	// Add Server related commands
	command.AddCommand(
		server.NewServeCommand(),
	)

	if err := command.Execute(); err != nil {
		fmt.Println(errRequestFail)
		os.Exit(DefaultExitCode)
	}
}
