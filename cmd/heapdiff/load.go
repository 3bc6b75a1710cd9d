// ABOUTME: Loads capture files into class indexes for the CLI commands
// ABOUTME: Two-snapshot loads run in parallel via errgroup

package main

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/prateek/heapdiff/capture"
	"github.com/prateek/heapdiff/classes"
)

// loadIndex opens one capture file and builds its class index.
func loadIndex(path string) (*classes.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := capture.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx, err := classes.BuildIndex(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// loadPair loads the before and after captures in parallel.
func loadPair(beforePath, afterPath string) (before, after *classes.Index, err error) {
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		before, err = loadIndex(beforePath)
		return err
	})
	eg.Go(func() error {
		var err error
		after, err = loadIndex(afterPath)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}
