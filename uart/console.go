package uart

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Console connects a UART to a terminal: one goroutine feeds input lines
// into RX, another writes TX bytes to the output as they are queued.
type Console struct {
	uart   *UART
	in     io.Reader
	out    io.Writer
	logger *logrus.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithConsoleLogger sets the console's logger.
func WithConsoleLogger(l *logrus.Logger) ConsoleOption {
	return func(c *Console) {
		c.logger = logrus.NewEntry(l).WithField("component", "console")
	}
}

// NewConsole creates a console for u. A nil in disables the input side.
func NewConsole(u *UART, in io.Reader, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		uart:   u,
		in:     in,
		out:    out,
		logger: logrus.NewEntry(logrus.StandardLogger()).WithField("component", "console"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the console goroutines. They run until ctx is done or Stop
// is called.
func (c *Console) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.group != nil {
		return errors.New("console already started")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.group, ctx = errgroup.WithContext(ctx)

	if c.in != nil {
		c.group.Go(func() error { return c.readInput(ctx) })
	}
	c.group.Go(func() error { return c.writeOutput(ctx) })

	c.logger.Debug("console started")
	return nil
}

// Stop cancels the goroutines, waits for them and flushes any transmit
// bytes still queued. A read blocked inside the input reader is abandoned;
// it ends when the reader returns, handing whatever it read to RX. The
// console may be started again after Stop.
func (c *Console) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.group == nil {
		return nil
	}

	c.cancel()
	err := c.group.Wait()
	c.group = nil

	if flushErr := c.flush(); err == nil {
		err = flushErr
	}

	c.logger.Debug("console stopped")
	return err
}

func (c *Console) readInput(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		r := bufio.NewReader(c.in)
		for {
			line, err := r.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					// Bytes already taken from the reader still go to RX.
					rest, _ := r.Peek(r.Buffered())
					c.uart.PushRx(append(line, rest...)...)
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			c.uart.PushRx(line...)
		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || ctx.Err() != nil {
				c.logger.Debug("console input closed")
				return nil
			}
			return fmt.Errorf("console input: %w", err)
		}
	}
}

func (c *Console) writeOutput(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return c.flush()
		case <-c.uart.Notify():
			if err := c.flush(); err != nil {
				return err
			}
		}
	}
}

func (c *Console) flush() error {
	data := c.uart.DrainTx()
	if len(data) == 0 {
		return nil
	}
	if _, err := c.out.Write(data); err != nil {
		return fmt.Errorf("console output: %w", err)
	}
	return nil
}
