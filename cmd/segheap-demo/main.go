// Command segheap-demo drives an Allocator through a small allocation
// workload and prints its resulting occupancy.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/segfaultlab/segheap"
	"github.com/segfaultlab/segheap/provider"
	"golang.org/x/exp/slog"
)

func main() {
	count := flag.Int("count", 64, "number of allocations to make")
	minSize := flag.Int("min-size", 8, "smallest payload size requested")
	maxSize := flag.Int("max-size", 512, "largest payload size requested")
	dumpJSON := flag.Bool("json", false, "print a block-by-block JSON dump instead of a summary")
	flag.Parse()

	logger := slog.New(slog.HandlerOptions{}.NewTextHandler(os.Stderr))

	a, err := segheap.New(provider.NewArena(0), segheap.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create allocator", "err", err)
		os.Exit(1)
	}

	var live []segheap.Addr
	for i := 0; i < *count; i++ {
		size := *minSize + (i*7)%(*maxSize-*minSize+1)
		p := a.Allocate(size)
		if p == segheap.NullAddr {
			logger.Warn("allocation failed", "iteration", i, "size", size)
			continue
		}
		live = append(live, p)
		if i%3 == 0 && len(live) > 1 {
			a.Free(live[0])
			live = live[1:]
		}
	}

	if err := a.CheckIntegrity(); err != nil {
		logger.Error("integrity check failed", "err", err)
		os.Exit(1)
	}

	if *dumpJSON {
		w := jwriter.NewWriter()
		a.WriteJSON(&w)
		out := w.Bytes()
		if err := w.Error(); err != nil {
			logger.Error("failed to serialize dump", "err", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	stats := a.Stats()
	fmt.Printf("blocks=%d allocated=%d free=%d heap_size=%d allocated_bytes=%d free_bytes=%d\n",
		stats.BlockCount, stats.AllocatedBlocks, stats.FreeBlocks, stats.HeapSize, stats.AllocatedBytes, stats.FreeBytes)
}
