// Command client is a minimal reference CLI over the upload/download
// client library. It exists to exercise the wire protocol end to end; it
// is not part of the core system.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BrianChoi12/minidfs/pkg/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "client:", err)
		os.Exit(1)
	}
}

func run() error {
	coordinatorAddr := flag.String("metaserver-addr", "localhost:50051", "address of the metadata coordinator")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		return fmt.Errorf("usage: client [-metaserver-addr addr] <put|get> <filename> [local-path]")
	}

	c := client.New(*coordinatorAddr, 0)

	switch args[0] {
	case "put":
		if len(args) != 3 {
			return fmt.Errorf("usage: client put <filename> <local-path>")
		}
		data, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("read local file: %w", err)
		}
		if err := c.Upload(args[1], data); err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%d bytes)\n", args[1], len(data))
		return nil

	case "get":
		if len(args) != 3 {
			return fmt.Errorf("usage: client get <filename> <local-path>")
		}
		data, err := c.Download(args[1])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[2], data, 0o644); err != nil {
			return fmt.Errorf("write local file: %w", err)
		}
		fmt.Printf("downloaded %s (%d bytes)\n", args[1], len(data))
		return nil

	default:
		return fmt.Errorf("unknown command %q, want put or get", args[0])
	}
}
