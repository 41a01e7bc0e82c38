package proc

import "errors"

// Reaper is the entry of the init process. It reaps orphaned zombies and
// naps one tick whenever it has nothing to wait for. A killed reaper exits,
// which is fatal for init.
func Reaper(ctx *Context) {
	for {
		_, err := ctx.Wait()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrKilled) {
			ctx.Exit()
		}
		if err = ctx.SleepTicks(1); err != nil {
			ctx.Exit()
		}
	}
}
