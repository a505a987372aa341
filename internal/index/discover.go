package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	indexPrefix  = "search_index."
	maxScanDepth = 2
)

// ErrNoIndexFound is returned by Discover when a site directory holds no
// serialized index
var ErrNoIndexFound = errors.New("no search index found")

// skipDirs are never descended into while looking for index files
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"images":       true,
	"img":          true,
	"fonts":        true,
	"css":          true,
}

// Discover returns every serialized index under root, the preferred one
// first. An index for lang is preferred over other languages; shallower
// files are preferred over deeper ones.
func Discover(ctx context.Context, root, lang string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Error walking path %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			if rel != "." && strings.Count(rel, string(filepath.Separator)) >= maxScanDepth {
				return filepath.SkipDir
			}
			name := d.Name()
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasPrefix(d.Name(), indexPrefix) {
			return nil
		}
		if _, _, err := DetectFile(path); err != nil {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoIndexFound, root)
	}

	rank := func(path string) (int, int) {
		langRank := 1
		if lang != "" && strings.HasPrefix(filepath.Base(path), indexPrefix+lang+".") {
			langRank = 0
		}
		return langRank, strings.Count(path, string(filepath.Separator))
	}
	sort.SliceStable(found, func(i, j int) bool {
		li, di := rank(found[i])
		lj, dj := rank(found[j])
		if li != lj {
			return li < lj
		}
		if di != dj {
			return di < dj
		}
		return found[i] < found[j]
	})
	return found, nil
}

// ResolvePath returns path unchanged when it names a file, or the preferred
// index under it when it names a directory
func ResolvePath(ctx context.Context, path, lang string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}
	found, err := Discover(ctx, path, lang)
	if err != nil {
		return "", err
	}
	if len(found) > 1 {
		log.Printf("Found %d search indexes in %s, using %s", len(found), path, found[0])
	}
	return found[0], nil
}
