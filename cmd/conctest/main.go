// Command conctest hammers the in-memory inventory ledger with
// concurrent reservations to demonstrate that a tier can never be
// oversold.  Useful as a quick sanity check when touching the ledger.
package main

import (
	"context"
	"flag"
	"log"
	"sync"
	"sync/atomic"

	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

func main() {
	var (
		capacity = flag.Int("capacity", 100, "tier capacity")
		workers  = flag.Int("workers", 500, "concurrent buyers")
		qty      = flag.Int("qty", 1, "units per reservation")
	)
	flag.Parse()

	ledger := ticketing.NewMemoryLedger()
	ledger.AddTier(1, capacity, 0)

	var won, lost int64
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Reserve(ctx, 1, *qty); err != nil {
				atomic.AddInt64(&lost, 1)
				return
			}
			atomic.AddInt64(&won, 1)
		}()
	}
	wg.Wait()

	sold, err := ledger.SoldCount(1)
	if err != nil {
		log.Fatalf("sold count: %v", err)
	}
	log.Printf("capacity=%d workers=%d qty=%d won=%d lost=%d sold=%d",
		*capacity, *workers, *qty, won, lost, sold)
	if sold > *capacity {
		log.Fatalf("OVERSOLD: sold=%d capacity=%d", sold, *capacity)
	}
	log.Printf("ok: never oversold")
}
