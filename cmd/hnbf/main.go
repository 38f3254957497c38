// Command hnbf runs the hardnested ciphertext-only Crypto-1 attack: given a
// batch of observed encrypted nonces and a candidate statelist, it recovers
// the 48-bit key responsible for them.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/mfcuk/hardnested-core/pkg/bench"
	"github.com/mfcuk/hardnested-core/pkg/bitslice"
	"github.com/mfcuk/hardnested-core/pkg/crack"
	"github.com/mfcuk/hardnested-core/pkg/crypto1"
	"github.com/mfcuk/hardnested-core/pkg/keystore"
	"github.com/mfcuk/hardnested-core/pkg/noncetable"
	"github.com/mfcuk/hardnested-core/pkg/statelist"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hnbf:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hnbf",
		Short: "hardnested ciphertext-only Crypto-1 key recovery",
	}
	root.AddCommand(benchmarkCmd(), crackCmd(), demoCmd())
	return root
}

func logBackend() {
	fmt.Printf("cpu: %s, bit-slice backend: %s\n", cpuid.CPU.BrandName, bitslice.DetectBackend())
}

// runWithBar wires a Dispatcher to an mpb progress bar, draws it to
// completion, and returns the dispatcher's result.
func runWithBar(workers int, buckets []statelist.Bucket, tn noncetable.TestNonces, nonces *noncetable.List, cuid uint32, bestFirstBytes []byte) (crack.Result, uint64, time.Duration) {
	total := int64(statelist.Count(buckets))
	p := mpb.New(mpb.WithWidth(60))
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name("cracking "),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done!"),
		),
	)

	d := crack.Dispatcher{
		NumWorkers: workers,
		Progress: func(tested, _ uint64, _ time.Duration) {
			bar.SetCurrent(int64(tested))
		},
	}
	result, tested, elapsed := d.Run(context.Background(), buckets, tn, nonces, cuid, bestFirstBytes)
	bar.SetCurrent(total)
	p.Wait()
	return result, tested, elapsed
}

// groupBuckets partitions parallel odd/even candidate slices into one
// statelist.Bucket per distinct odd value, preserving first-seen order.
func groupBuckets(odd, even []uint32) []statelist.Bucket {
	var order []uint32
	byOdd := make(map[uint32][]uint32)
	for i, o := range odd {
		if _, ok := byOdd[o]; !ok {
			order = append(order, o)
		}
		byOdd[o] = append(byOdd[o], even[i])
	}
	return statelist.Buckets(order, byOdd)
}

// parseCuid parses a hex tag UID (0 if empty), the high byte of which
// whitens the best first byte's plaintext per verify_key.
func parseCuid(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 4 {
		return 0, fmt.Errorf("--cuid must be 8 hex digits")
	}
	return uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]), nil
}

func listFromRecords(records []noncetable.Record) *noncetable.List {
	list := &noncetable.List{}
	for _, rec := range records {
		list.Add(rec)
	}
	return list
}

func reportResult(result crack.Result, tested uint64, elapsed time.Duration) {
	rate := float64(tested) / elapsed.Seconds()
	fmt.Printf("tested %d candidates in %s (%.0f keys/s)\n", tested, elapsed.Round(time.Millisecond), rate)
	if result.Found {
		fmt.Printf("key found: %012x\n", result.Key)
	} else {
		fmt.Println("no key found among the candidate states")
	}
}

func benchmarkCmd() *cobra.Command {
	var input string
	var workers int
	var seed int64
	var cuidHex string

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "measure bit-sliced candidate throughput against a benchmark data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logBackend()

			cuid, err := parseCuid(cuidHex)
			if err != nil {
				return err
			}

			var data bench.Data
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open %s: %w", input, err)
				}
				defer f.Close()
				data, err = bench.Decode(f)
				if err != nil {
					fmt.Printf("decode %s: %v; no benchmark data, reporting the default rate estimate (%.0f keys/s)\n", input, err, crack.DefaultBruteForceRate)
					return nil
				}
			} else {
				data = bench.Synthesize(uint64(seed))
				fmt.Printf("synthesized %d nonces and %d candidate states (seed %d)\n", len(data.Nonces), len(data.Odd), seed)
			}

			nonces := listFromRecords(data.Nonces)
			ranked := noncetable.RankFirstBytes(nonces)
			tn := noncetable.PrepareTestNonces(nonces, ranked[0])
			buckets := groupBuckets(data.Odd, data.Even)

			result, tested, elapsed := runWithBar(workers, buckets, tn, nonces, cuid, ranked)
			reportResult(result, tested, elapsed)
			if tested == 0 {
				fmt.Printf("no candidates tested; falling back to the default rate estimate (%.0f keys/s)\n", crack.DefaultBruteForceRate)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "benchmark data file (bench.Encode layout); synthesized if empty")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker goroutines (0 = number of CPUs)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for synthesized benchmark data")
	cmd.Flags().StringVar(&cuidHex, "cuid", "", "tag UID, 8 hex digits (0 if empty)")
	return cmd
}

func crackCmd() *cobra.Command {
	var input string
	var workers int
	var out string
	var cuidHex string
	var trgBlock uint8
	var trgKeyB bool

	cmd := &cobra.Command{
		Use:   "crack",
		Short: "recover the key for an externally captured nonce/state batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			logBackend()

			cuid, err := parseCuid(cuidHex)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open %s: %w", input, err)
			}
			defer f.Close()
			data, err := bench.Decode(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", input, err)
			}

			nonces := listFromRecords(data.Nonces)
			ranked := noncetable.RankFirstBytes(nonces)
			tn := noncetable.PrepareTestNonces(nonces, ranked[0])
			buckets := groupBuckets(data.Odd, data.Even)
			if statelist.Count(buckets) == 0 {
				return fmt.Errorf("no candidate states in %s", input)
			}

			result, tested, elapsed := runWithBar(workers, buckets, tn, nonces, cuid, ranked)
			result.Block, result.IsB = trgBlock, trgKeyB
			reportResult(result, tested, elapsed)

			if result.Found && out != "" {
				table, err := keystore.Load(out)
				if os.IsNotExist(err) {
					table, err = keystore.NewTable(), nil
				}
				if err != nil {
					return fmt.Errorf("load %s: %w", out, err)
				}
				table.Add(keystore.Key{Block: result.Block, IsB: result.IsB, Value: result.Key})
				if err := keystore.Save(out, table); err != nil {
					return fmt.Errorf("save %s: %w", out, err)
				}
				fmt.Println("key saved to", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "captured nonce/state batch (bench.Encode layout)")
	cmd.Flags().StringVar(&cuidHex, "cuid", "", "tag UID, 8 hex digits (0 if empty)")
	cmd.Flags().Uint8Var(&trgBlock, "block", 0, "target sector block number, recorded alongside the recovered key")
	cmd.Flags().BoolVar(&trgKeyB, "key-b", false, "target key is the B key (A key if unset)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker goroutines (0 = number of CPUs)")
	cmd.Flags().StringVar(&out, "out", "", "key store file to append the recovered key to")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func demoCmd() *cobra.Command {
	var workers int
	var decoys int
	var keyHex string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "simulate a full attack end-to-end against a freshly generated key",
		RunE: func(cmd *cobra.Command, args []string) error {
			logBackend()

			var key [6]byte
			if keyHex != "" {
				raw, err := hex.DecodeString(keyHex)
				if err != nil || len(raw) != 6 {
					return fmt.Errorf("--key must be 12 hex digits")
				}
				copy(key[:], raw)
			} else if _, err := rand.Read(key[:]); err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			fmt.Printf("target key: %012x\n", key)

			true1 := crypto1.NewState(key)
			nonces := simulateNonces(true1)
			ranked := noncetable.RankFirstBytes(nonces)
			tn := noncetable.PrepareTestNonces(nonces, ranked[0])

			buckets := buildDecoyBuckets(true1, decoys)

			// the simulated capture has no real tag, so cuid is 0 — every
			// first byte above is recorded as its own raw plaintext.
			result, tested, elapsed := runWithBar(workers, buckets, tn, nonces, 0, ranked)
			reportResult(result, tested, elapsed)

			want := true1.GetLFSR()
			switch {
			case result.Found && result.Key == want:
				fmt.Println("recovered key matches the target key")
			case result.Found:
				fmt.Printf("recovered key %012x does NOT match target %012x\n", result.Key, want)
			default:
				fmt.Println("failed to recover the target key")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker goroutines (0 = number of CPUs)")
	cmd.Flags().IntVar(&decoys, "decoys", 4096, "number of decoy candidate states to mix in alongside the true state")
	cmd.Flags().StringVar(&keyHex, "key", "", "12 hex digit key to target (random if empty)")
	return cmd
}

// simulateNonces replays 40 independent authentications against state,
// recording the observed nonce bytes and their keystream-leaked parity
// bits exactly as matchesRecord/Evaluator.RunNonce expect to consume them.
func simulateNonces(state crypto1.State) *noncetable.List {
	list := &noncetable.List{}
	var x uint64 = 0x2545F4914F6CDD1D
	next := func() uint64 {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		return x
	}
	for i := 0; i < 40; i++ {
		v := next()
		first := byte(i % 10)
		tail := [3]byte{byte(v), byte(v >> 8), byte(v >> 16)}
		list.Add(simulateRecord(state, first, tail))
	}
	return list
}

func simulateRecord(state crypto1.State, first byte, tail [3]byte) noncetable.Record {
	s := state
	bytes := [4]byte{first, tail[0], tail[1], tail[2]}
	var par uint8
	var nonceEnc uint32
	for i, b := range bytes {
		dec := s.Byte(b, true)
		if crypto1.EvenParity8(b) != crypto1.EvenParity8(dec) {
			par |= 1 << uint(i)
		}
		nonceEnc = nonceEnc<<8 | uint32(b)
	}
	return noncetable.Record{NonceEnc: nonceEnc, ParEnc: par}
}

// buildDecoyBuckets places the true state's even half first among n random
// decoy even halves, all sharing the true odd half, so the result is a
// single bucket; no unrelated odd halves are added. This mirrors how a real state-space reduction stage leaves the true state
// buried among thousands of false positives.
func buildDecoyBuckets(true1 crypto1.State, n int) []statelist.Bucket {
	var x uint64 = 0x9E3779B97F4A7C15
	next := func() uint32 {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		return uint32(x) & 0xFFFFFF
	}
	even := make([]uint32, 0, n+1)
	even = append(even, true1.Even)
	for i := 0; i < n; i++ {
		even = append(even, next())
	}
	odd := make([]uint32, len(even))
	for i := range odd {
		odd[i] = true1.Odd
	}
	return groupBuckets(odd, even)
}
