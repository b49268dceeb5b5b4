// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/strata/cache"
	"github.com/IvanBrykalov/strata/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int64("cap", 100_000, "cache capacity (entries)")
		shards   = flag.Int("shards", 0, "concurrency level (0=default)")
		policy   = flag.String("policy", "WINDOW_TINY_LFU",
			"eviction policy: LRU | LFU | FIFO | FILO | WEIGHT | WINDOW_TINY_LFU")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int64("preload", 0, "preload entries (0 = cap/2)")

		httpAddr = flag.String("http", "", "serve /metrics and /debug/pprof on this address (e.g. :8080)")
	)
	flag.Parse()

	opt := cache.Options[string, int]{
		MaximumSize:      *capacity,
		ConcurrencyLevel: *shards,
		Policy:           cache.PolicyKind(*policy),
		RecordStats:      true,
	}
	if opt.Policy == cache.PolicyWeight {
		opt.MaximumSize = 0
		opt.MaximumWeight = *capacity
		opt.Weigher = func(_ string, v int) int64 { return 1 + int64(v%7) }
	}
	if *httpAddr != "" {
		opt.Metrics = prom.New(nil, "strata", "bench", nil)
	}

	c, err := cache.New[string, int](opt)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	if *httpAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Println("serving", *httpAddr)
			log.Fatal(http.ListenAndServe(*httpAddr, nil))
		}()
	}

	// ---- Preload ----
	n := *preload
	if n <= 0 {
		n = *capacity / 2
	}
	for i := int64(0); i < n; i++ {
		c.Put("key-"+strconv.FormatInt(i, 10), int(i))
	}

	// ---- Workload ----
	var (
		ops      atomic.Int64
		deadline = time.Now().Add(*duration)
		wg       sync.WaitGroup
	)
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(*seed + int64(w)))
			zipf := rand.NewZipf(rng, *zipfS, *zipfV, uint64(*keys-1))
			for time.Now().Before(deadline) {
				k := "key-" + strconv.FormatUint(zipf.Uint64(), 10)
				if rng.Intn(100) < *readPct {
					_, _ = c.Get(k)
				} else {
					c.Put(k, w)
				}
				ops.Add(1)
			}
		}(w)
	}
	wg.Wait()

	st := c.Stats()
	total := ops.Load()
	fmt.Printf("policy=%s ops=%d (%.0f ops/s)\n", *policy, total,
		float64(total)/(*duration).Seconds())
	fmt.Printf("size=%d hits=%d misses=%d hitRate=%.3f evictions=%d\n",
		c.Size(), st.Hits, st.Misses, st.HitRate(), st.Evictions)
}
