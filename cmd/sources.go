package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds how many source files are read at once.
const maxConcurrentReads = 8

type source struct {
	name string
	text string
}

// expandHome expands a leading ~ to $HOME, which is not done by shells
// inside quoted arguments.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return filepath.Join(os.Getenv("HOME"), path[2:])
	}
	return path
}

// collectSources expands paths into the files to load, in load order.
// Files are taken as given; a directory contributes the files directly in
// it whose names end in ext, sorted by name.
func collectSources(paths []string, ext string) ([]string, error) {
	files := []string{}
	for _, path := range paths {
		path = expandHome(path)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("sources: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("sources: scan %s: %w", path, err)
		}
		found := []string{}
		for _, entry := range entries {
			if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ext) {
				found = append(found, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("sources: no %s files found in %s", ext, strings.Join(paths, ", "))
	}
	return files, nil
}

// readSources reads files concurrently and returns their contents in the
// order the files were given.
func readSources(ctx context.Context, files []string) ([]source, error) {
	sources := make([]source, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("sources: read %s: %w", file, err)
			}
			sources[i] = source{name: file, text: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}
