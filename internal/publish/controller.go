package publish

import (
	"context"
	"fmt"
	"sync"
)

// Task is a unit of work submitted to the Controller.
type Task func(ctx context.Context) error

// Controller runs tasks with at most max of them in flight. Tasks that arrive
// while every slot is busy wait in a FIFO queue and are handed a slot as soon
// as a running task finishes.
type Controller struct {
	max int

	mu      sync.Mutex
	running int
	queue   []chan struct{}
}

// NewController builds a controller allowing maxConcurrency running tasks.
// Values below one are treated as one.
func NewController(maxConcurrency int) *Controller {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Controller{max: maxConcurrency}
}

// Max reports the configured concurrency ceiling.
func (c *Controller) Max() int {
	return c.max
}

// Running reports how many tasks currently hold a slot.
func (c *Controller) Running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Queued reports how many tasks are waiting for a slot.
func (c *Controller) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Add blocks until task has run and returns its error. A panicking task is
// converted into an error and its slot is still released. When ctx is
// cancelled while the task is queued it never runs and Add returns the
// context error.
func (c *Controller) Add(ctx context.Context, task Task) error {
	if task == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return runTask(ctx, task)
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publish: task panic: %v", r)
		}
	}()
	return task(ctx)
}

func (c *Controller) acquire(ctx context.Context) error {
	c.mu.Lock()
	if c.running < c.max && len(c.queue) == 0 {
		c.running++
		c.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	c.queue = append(c.queue, ready)
	c.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
	}

	c.mu.Lock()
	for i, waiting := range c.queue {
		if waiting == ready {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			c.mu.Unlock()
			return ctx.Err()
		}
	}
	c.mu.Unlock()

	// the slot was handed over while ctx fired; pass it on
	c.release()
	return ctx.Err()
}

// release hands the slot to the oldest waiter, or frees it.
func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		next := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		close(next)
		return
	}
	c.running--
}
