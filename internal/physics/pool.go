package physics

import "sync"

// workerPool runs detection shards on a fixed set of goroutines that live
// for the lifetime of the world. Detection is read-only over the snapshot
// tree, so shards never need coordination beyond the per-round wait.
type workerPool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	p := &workerPool{jobs: make(chan func(), workers)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// submit queues one job. It blocks if every worker is busy and the queue
// is full, which bounds memory during large rounds.
func (p *workerPool) submit(job func()) {
	p.jobs <- job
}

// close stops the workers after draining queued jobs.
func (p *workerPool) close() {
	close(p.jobs)
	p.wg.Wait()
}
