/*
Package resilience provides a circuit breaker for external commands.

The gateway shells out to system tools (lsblk) whose failures are usually
persistent: a missing binary, a sandbox without /sys, a hung device. The
breaker stops spawning the command after repeated failures and admits a
single probe once the cooldown has passed.

# Usage

	breaker := resilience.New("lsblk", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("Breaker state changed", zap.String("name", name), zap.Stringer("to", to))
		},
	})

	err := breaker.Do(func() error {
		out, err = run(ctx, "lsblk", args...)
		return err
	})
	if errors.Is(err, resilience.ErrOpen) {
		// skipped
	}

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                                        |
	                                                  [probe fails]
	                                                        v
	                                                      Open
*/
package resilience
