package main

import (
	"fmt"
	"os"
)

// @title Inventory Management API
// @version 0.1.0
// @description REST API for the materials inventory catalog.
// @BasePath /
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
