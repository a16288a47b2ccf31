// Command groceryd is a self-hosted grocery list backend: a REST API
// over SQLite with realtime WebSocket push to connected clients.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
