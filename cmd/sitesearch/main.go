package main

import (
	"fmt"
	"log"
	"os"
)

const usage = `Usage:
  sitesearch [search] [-index path] [-config path]   search a site index in the terminal
  sitesearch convert -raw dir -out dir                convert raw posts into site content
  sitesearch pack -in index.json -out index.msgpack   repack an index for faster loading
`

func main() {
	args := os.Args[1:]
	cmd := "search"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "search":
		err = runSearch(args)
	case "convert":
		err = runConvert(args)
	case "pack":
		err = runPack(args)
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the standard logger to path. The returned func closes
// the file.
func setupLogging(path string) func() {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
		return func() {}
	}
	log.SetOutput(logFile)
	return func() { logFile.Close() }
}
