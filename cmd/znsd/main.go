// Command znsd runs the naming registry: it bootstraps the deployment,
// serves lookups and quotes, and relays committed events to Kafka.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
