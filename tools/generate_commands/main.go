// Large Command File Generator
//
// This tool generates a large MyMoney command file for performance testing
// and profiling. Every generated year starts with ALLOCATE and SIP, applies
// CHANGE to all twelve months and sprinkles BALANCE and REBALANCE in between.
//
// Usage:
//
//	go run main.go > large.txt
//	go run main.go 20000000 > large.txt  # Specify target size in bytes
package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/mymoney/calendar"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	w := bufio.NewWriter(os.Stdout)
	written, years, err := generate(w, rand.New(rand.NewSource(rand.Int63())), targetSize)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d years\n", written, years)
}

// generate writes whole years of commands until at least targetSize bytes
// have been written.
func generate(w io.Writer, rng *rand.Rand, targetSize int) (int, int, error) {
	written, years := 0, 0
	for written < targetSize {
		n, err := io.WriteString(w, generateYear(rng))
		written += n
		if err != nil {
			return written, years, err
		}
		years++
	}
	return written, years, nil
}

func generateYear(rng *rand.Rand) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ALLOCATE %d %d %d\n", randAmount(rng, 1000, 10000), randAmount(rng, 500, 5000), randAmount(rng, 100, 2000))
	fmt.Fprintf(&b, "SIP %d %d %d\n", randAmount(rng, 100, 3000), randAmount(rng, 100, 2000), randAmount(rng, 50, 1000))

	for _, m := range calendar.Months() {
		fmt.Fprintf(&b, "CHANGE %s%% %s%% %s%% %s\n", randRate(rng), randRate(rng), randRate(rng), m)

		switch rng.Intn(6) {
		case 0:
			fmt.Fprintf(&b, "BALANCE %s\n", m)
		case 1:
			b.WriteString("REBALANCE\n")
		}
	}

	return b.String()
}

func randAmount(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// randRate returns a monthly rate between -10% and +15% with two decimals.
func randRate(rng *rand.Rand) string {
	cents := rng.Intn(2501) - 1000
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
