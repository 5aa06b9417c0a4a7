// Package statsview watches a running interpreter. Monitor and Sampler report
// the machine's frames and instructions per second through slog. When built
// with the statsview tag, Launch also serves live Go runtime charts (heap,
// goroutines, GC pauses) next to those rates:
//
//	go build -tags statsview ./cmd/chip8
//
// The charts are at localhost:12600/debug/statsview and the standard pprof
// endpoints at localhost:12600/debug/pprof/.
package statsview
