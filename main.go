// Command portalctl is the CLI entrypoint; all subcommands live in
// package cmd.
package main

import "github.com/thirdweb-dev/portal-client/cmd"

func main() {
	cmd.Execute()
}
