// Package wp is a small fixed-size worker pool driven by a tomb.Tomb,
// generalized from the teacher's connection-handling pool so it can
// run any task, not just net.Conn reads.
package wp

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is the unit of work a pool runs for each queued task.
type WorkerFunction func(t *tomb.Tomb, task any) error

// Pool runs up to n copies of a WorkerFunction concurrently, pulling
// tasks off a shared channel until its tomb starts dying.
type Pool struct {
	n     int
	tasks chan any
	work  WorkerFunction
}

func New(size int) *Pool {
	return &Pool{
		n:     size,
		tasks: make(chan any, taskChanSize),
	}
}

// Add queues a task for the next free worker.
func (p *Pool) Add(task any) {
	p.tasks <- task
}

// Run starts n workers under t and returns without waiting for them.
// Each worker re-enters its loop after finishing a task, so the pool
// stays at full strength until t starts dying.
func (p *Pool) Run(t *tomb.Tomb, work WorkerFunction) {
	p.work = work
	log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error {
			return p.loop(t)
		})
	}
}

func (p *Pool) loop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := p.work(t, task); err != nil {
				log.Error().Err(err).Msg("worker task failed")
			}
		}
	}
}
