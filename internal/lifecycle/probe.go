package lifecycle

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/schmitthub/stackup/internal/endpoint"
)

// probeServices dials each service's port until it accepts a connection or
// timeout elapses.
func (c *Controller) probeServices(ctx context.Context, table *endpoint.Table) error {
	for _, svc := range c.opts.ProbeServices {
		addr, err := c.opts.Resolver.Address(table, svc)
		if err != nil {
			return err
		}

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 50 * time.Millisecond
		b.MaxInterval = time.Second
		b.MaxElapsedTime = c.opts.ProbeTimeout

		attempts := 0
		op := func() error {
			attempts++
			conn, err := net.DialTimeout("tcp", addr, time.Second)
			if err != nil {
				return err
			}
			return conn.Close()
		}
		if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
			return fmt.Errorf("service %s at %s: %w", svc, addr, err)
		}
		c.log.Debug().Str("service", svc).Str("addr", addr).Int("attempts", attempts).Msg("service reachable")
	}
	return nil
}
