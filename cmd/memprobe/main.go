// Command memprobe prints the host's memory platform report and measures
// pointer-chasing latency over shuffled regions of increasing size.
//
//	memprobe -sizes 16KiB,256KiB,8MiB,128MiB -loads 20000000
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/membench"
)

var (
	sizesFlag = flag.String("sizes", "16KiB,128KiB,1MiB,8MiB,64MiB", "Comma-separated region sizes")
	offset    = flag.Int("offset", 0, "Byte offset of each region within the arena")
	chains    = flag.Int("chains", 0, "Forward pointers linked per slot (0 = all)")
	seed      = flag.Uint64("seed", membench.DefaultSeed, "Shuffle seed")
	loads     = flag.Int("loads", 10_000_000, "Dependent loads per size")
	jsonLogs  = flag.Bool("json", false, "Log in JSON")
	verbose   = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()

	if err := checkLoads(*loads); err != nil {
		log.Fatal(err)
	}

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := membench.NewTextLogger(level)
	if *jsonLogs {
		logger = membench.NewJSONLogger(level)
	}

	platform := membench.Platform()
	logger.LogPlatform(context.Background(), platform)
	fmt.Print(platform)
	fmt.Println()

	env := membench.New(
		membench.WithLargeArenaSize(arenaSize(sizes, *offset)),
		membench.WithLogger(logger),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "size\tlines\tns/load\t")
	for _, size := range sizes {
		r, err := env.ShuffledRegion(size, *offset, membench.WithSeed(*seed), membench.WithChains(*chains))
		if err != nil {
			log.Fatal(err)
		}

		start := time.Now()
		last := r.Chase(*loads + membench.AlwaysZero())
		elapsed := time.Since(start)
		if last == nil {
			log.Fatalf("%s: chase reached a nil slot", humanize.IBytes(uint64(size)))
		}

		fmt.Fprintf(w, "%s\t%d\t%.2f\t\n", humanize.IBytes(uint64(size)), r.Lines, float64(elapsed.Nanoseconds())/float64(*loads))
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

func checkLoads(n int) error {
	if n <= 0 {
		return fmt.Errorf("loads must be positive, got %d", n)
	}
	return nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := humanize.ParseBytes(f)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", f, err)
		}
		if n == 0 || n > 1<<40 {
			return nil, fmt.Errorf("size %q out of range", f)
		}
		sizes = append(sizes, int(n))
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}

// arenaSize returns the large arena capacity needed for the biggest region.
func arenaSize(sizes []int, offset int) int {
	need := 0
	for _, s := range sizes {
		need = max(need, s+offset)
	}
	return need
}
