package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/matchcore/orderbook/internal/matching"
	"github.com/matchcore/orderbook/internal/types"
)

// Synthetic load driver: submits random limit orders straight into the
// engine, no HTTP and no storage, and reports raw matching throughput.
func main() {
	totalOrders := flag.Int("n", 1_000_000, "number of orders to submit")
	seed := flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
	flag.Parse()

	engine := matching.NewEngine()
	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("Submitting %d random orders...\n", *totalOrders)

	start := time.Now()

	for i := 0; i < *totalOrders; i++ {
		side := types.Sell
		if rng.Intn(2) == 0 {
			side = types.Buy
		}
		price := types.Price(9000 + rng.Intn(2000))
		qty := types.Quantity(1 + rng.Intn(99))

		order := types.NewOrder(engine.GenerateOrderID(), "bench", types.LimitOrder, side, price, qty)
		engine.PlaceOrder(order)
	}

	elapsed := time.Since(start)

	seconds := elapsed.Seconds()
	throughput := float64(*totalOrders) / seconds
	latencyNs := seconds / float64(*totalOrders) * 1e9

	fmt.Println("---------------------------------------------")
	fmt.Printf("Time taken:        %.4f seconds\n", seconds)
	fmt.Printf("Throughput:        %.0f orders/sec\n", throughput)
	fmt.Printf("Latency per order: %.0f ns\n", latencyNs)
	fmt.Printf("Resting orders:    %d\n", engine.OpenOrders())
	fmt.Println("---------------------------------------------")
}
