package compiler

import "context"

// semaphore bounds how many files are compiled at once.
type semaphore struct {
	x chan struct{}
}

func newSemaphore(v int) *semaphore {
	return &semaphore{
		x: make(chan struct{}, v),
	}
}

// Lock waits for a slot or for ctx to end, whichever comes first.
func (self *semaphore) Lock(ctx context.Context) error {
	select {
	case self.x <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (self *semaphore) Unlock() {
	<-self.x
}
