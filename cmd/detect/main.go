// Package main provides the detect CLI: loss curve plots, dataset
// inspection and host information.
package main

import (
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("detect: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("detect %s\n", version)
	case "info":
		info()
	case "plot":
		err = runPlot(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("detect - detection losses and batch loading for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  info       Show CPU backend configuration")
	fmt.Println("  plot       Plot a loss curve to an image file")
	fmt.Println("  inspect    Iterate a safetensors dataset in batches")
}
