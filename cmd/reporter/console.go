package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ukydev/animal-report/internal/location"
)

// console multiplexes terminal input between menu commands and pending
// permission prompts. Answers go to the oldest open prompt first. While a
// press holds a reservation and has not reached its permission step, input
// is held back so an early answer is not taken as a menu command.
type console struct {
	out    io.Writer
	lines  chan string
	notify chan struct{}

	mu       sync.Mutex
	waiters  []chan string
	backlog  []string
	reserved int
	done     chan struct{}
	once     sync.Once
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{
		out:    out,
		lines:  make(chan string),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case c.lines <- scanner.Text():
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// Println writes a line to the terminal.
func (c *console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *console) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// reserve holds input back until the returned release is called. release
// is safe to call more than once.
func (c *console) reserve() func() {
	c.mu.Lock()
	c.reserved++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.reserved--
			c.mu.Unlock()
			c.wake()
		})
	}
}

// Ask implements location.Asker.
func (c *console) Ask(ctx context.Context, question string) (string, error) {
	ch := make(chan string, 1)

	c.mu.Lock()
	fmt.Fprintln(c.out, question)
	if len(c.backlog) > 0 {
		answer := c.backlog[0]
		c.backlog = c.backlog[1:]
		c.mu.Unlock()
		return answer, nil
	}
	select {
	case <-c.done:
		c.mu.Unlock()
		return "", location.ErrNoAnswer
	default:
	}
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	c.wake()

	select {
	case answer := <-ch:
		return answer, nil
	case <-c.done:
		select {
		case answer := <-ch:
			return answer, nil
		default:
		}
		return "", location.ErrNoAnswer
	case <-ctx.Done():
		c.removeWaiter(ch)
		return "", ctx.Err()
	}
}

func (c *console) removeWaiter(ch chan string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// route hands the line to the oldest prompt. Without a prompt the line is
// kept for the next one when keep is set, or held while a reservation is
// outstanding. Otherwise it is left for the menu.
func (c *console) route(line string, keep bool) (answered, hold bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) > 0 {
		ch := c.waiters[0]
		c.waiters = c.waiters[1:]
		ch <- line
		return true, false
	}
	if keep {
		c.backlog = append(c.backlog, line)
		return true, false
	}
	if c.reserved > 0 {
		return false, true
	}
	return false, false
}

// Run dispatches input lines in order until handle returns false, input
// ends or ctx is cancelled. With a nil handle every line is an answer. Open
// prompts are answered with ErrNoAnswer afterwards.
func (c *console) Run(ctx context.Context, handle func(line string) bool) {
	defer c.once.Do(func() { close(c.done) })

	lines := c.lines
	var held []string
	for {
		for len(held) > 0 {
			answered, hold := c.route(held[0], handle == nil)
			if hold {
				break
			}
			line := held[0]
			held = held[1:]
			if !answered && !handle(line) {
				return
			}
		}
		if lines == nil && len(held) == 0 {
			return
		}

		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			held = append(held, line)
		case <-c.notify:
		case <-ctx.Done():
			return
		}
	}
}

type releaseKey struct{}

func withRelease(ctx context.Context, release func()) context.Context {
	return context.WithValue(ctx, releaseKey{}, release)
}

// gatedPermission ends the press's input reservation once its permission
// step is over.
type gatedPermission struct {
	location.PermissionRequester
}

func (g gatedPermission) RequestForegroundPermission(ctx context.Context) (location.Permission, error) {
	if release, ok := ctx.Value(releaseKey{}).(func()); ok {
		defer release()
	}
	return g.PermissionRequester.RequestForegroundPermission(ctx)
}
