package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the flags shieldd accepts: where to find the worker's
// data and genesis, and how it logs and reports metrics. There are no
// networking, RPC-server or txpool flags here — the worker has no socket
// transport or account subsystem of its own (see DESIGN.md).
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the consensus worker's store",
			Value: "~/.shield",
		},
		cli.StringFlag{
			Name:  "genesis",
			Usage: "Path to the genesis app-state JSON file",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN to ship Fatal/Error-level log records to (disabled if empty)",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "Enable collection of Prometheus-compatible metrics",
		},
		cli.StringFlag{
			Name:  "metrics.addr",
			Usage: "Metrics server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "metrics.port",
			Usage: "Metrics server listening port",
			Value: 6060,
		},
		cli.IntFlag{
			Name:  "queue.size",
			Usage: "Buffered capacity of the replication-engine request queue",
			Value: 64,
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Deployment preset overriding queue.size/log.verbosity/metrics defaults (default|dev|validator)",
		},
	}
}
