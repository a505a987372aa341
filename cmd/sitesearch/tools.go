package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"sitesearch/internal/convert"
	"sitesearch/internal/index"
)

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	rawDir := fs.String("raw", "raw", "Directory with raw markdown posts")
	outDir := fs.String("out", "content", "Directory to write converted posts to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	closeLog := setupLogging("sitesearch.log")
	defer closeLog()

	c := convert.NewConverter(*rawDir, *outDir)
	report, err := c.ConvertAll()
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		switch res.Status {
		case convert.StatusConverted:
			fmt.Printf("Converted: %s -> %s (%s)\n", res.File, res.Slug, strings.Join(res.Tags, ", "))
		case convert.StatusSkippedEmpty:
			fmt.Printf("Skipping empty file: %s\n", res.File)
		case convert.StatusSkippedDraft:
			fmt.Printf("Skipping draft file: %s\n", res.File)
		case convert.StatusMissing:
			fmt.Printf("Warning: %s not found\n", res.File)
		}
	}
	fmt.Printf("\nConverted %d of %d files into %s\n", report.Count(convert.StatusConverted), len(report.Results), *outDir)
	return nil
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	in := fs.String("in", "", "Serialized index to read (json, js or msgpack)")
	out := fs.String("out", "", "Output file (.msgpack or .mpk, optionally .zst or .gz)")
	useZstd := fs.Bool("zstd", false, "Compress the output with zstd")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("pack needs -in and -out")
	}
	if *useZstd && !strings.HasSuffix(*out, ".zst") {
		*out += ".zst"
	}

	closeLog := setupLogging("sitesearch.log")
	defer closeLog()

	docs, err := index.PackFile(*in, *out)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", *in, err)
	}
	fmt.Printf("Packed %d documents into %s\n", docs, *out)
	return nil
}
