// Package main provides the orgvault CLI for recovering team structure
// from a markdown vault.
package main

import "github.com/orgvault/orgvault/cmd/orgvault/commands"

func main() {
	commands.Execute(Version)
}
