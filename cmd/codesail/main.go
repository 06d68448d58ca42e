// Package main is the entry point for the codesail CLI.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(Execute(context.Background(), os.Args[1:]))
}
