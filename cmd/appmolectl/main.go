package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kisy/appmole/pkg/client"
)

func main() {
	var cfg client.Config
	flag.StringVar(&cfg.Server, "server", client.DefaultServer, "AppMole server address")
	flag.IntVar(&cfg.N, "n", 0, "Number of apps to list (server default when 0)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] top|usage|reset\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.Command = flag.Arg(0)

	if err := client.Run(cfg, os.Stdout); err != nil {
		log.Printf("appmolectl: %v", err)
		os.Exit(1)
	}
}
