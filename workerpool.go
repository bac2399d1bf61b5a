package hashsig

import "runtime"

// parallelFor calls fn(i) for every i in [0, n), fanning the calls out
// across a small bounded pool of goroutines and waiting for all of them
// to finish before returning. It is the one piece of data parallelism
// this package exposes internally: parallelism is an implementation
// detail of a single call, never visible in the public API, and the
// protocol itself stays single-threaded.
func parallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	next := make(chan int)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := range next {
				fn(i)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	for w := 0; w < workers; w++ {
		<-done
	}
}
