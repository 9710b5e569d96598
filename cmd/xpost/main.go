// Command xpost is the terminal client for the xpost posting backend.
package main

import "github.com/xpost-dev/xpost/internal/cli"

func main() {
	cli.Execute()
}
