package monodepth

import (
	"sync"
)

// Pool is a simple runtime pool loading multiple instances of the same
// checkpoint, one per worker, so frames can be processed in parallel
// without sharing a runtime between goroutines
type Pool struct {
	// pool of runtimes
	runtimes chan Runtime
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new runtime pool of the given size over a checkpoint
// directory
func NewPool(size int, modelDir string, params RuntimeParams) (*Pool, error) {

	p := &Pool{
		runtimes: make(chan Runtime, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		rt, err := LoadCheckpoint(modelDir, params)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(rt)
	}

	return p, nil
}

// Gets a runtime from the pool
func (p *Pool) Get() Runtime {
	return <-p.runtimes
}

// Return a runtime to the pool
func (p *Pool) Return(runtime Runtime) {
	select {
	case p.runtimes <- runtime:
	default:
		// pool is full or closed
	}
}

// Close the pool and all runtimes in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.runtimes)

		// close all runtimes
		for next := range p.runtimes {
			_ = next.Close()
		}
	})
}
