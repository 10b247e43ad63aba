// runc-go is an OCI-compliant container runtime.
//
// Commands:
//
//	create  - Create a container (but don't start it)
//	start   - Start a created container
//	run     - Create and start a container
//	state   - Output the state of a container
//	kill    - Send a signal to a container
//	delete  - Delete a container
//	list    - List containers
//	exec    - Execute a process inside a running container
//	spec    - Generate a default OCI spec
//	init    - Internal command for container initialization
package main

import (
	"fmt"
	"os"

	"runc-go/cmd"
	cerrors "runc-go/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if kind, ok := cerrors.GetKind(err); ok {
			os.Exit(kind.ExitCode())
		}
		os.Exit(1)
	}
}
