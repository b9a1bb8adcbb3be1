// Package main is the entry point for the vuec CLI.
package main

import "vuec.dev/pkg/vuec/cmd"

func main() {
	cmd.Execute()
}
