package widget

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
)

// WatchURL is the page an external player is pointed at for a media id.
const WatchURL = "https://www.youtube.com/watch?v="

// ProcessWidget plays media by running an external player such as mpv.
// Pause and resume suspend the process.
type ProcessWidget struct {
	command string
	args    []string
	onEnded func()
	logger  zerolog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	done   chan struct{}
	token  uint64
	paused bool
}

// ProcessFactory returns a factory for ProcessWidgets running command with
// args followed by the watch URL.
func ProcessFactory(command string, args []string) core.WidgetFactory {
	return func(onEnded func()) (core.Widget, error) {
		if _, err := exec.LookPath(command); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", verrors.ErrPlayerUnavailable, command, err)
		}
		return &ProcessWidget{
			command: command,
			args:    append([]string(nil), args...),
			onEnded: onEnded,
			logger:  log.WithComponent("player"),
		}, nil
	}
}

// Load starts the player for mediaID, stopping any previous one first.
func (p *ProcessWidget) Load(ctx context.Context, mediaID string, autoplay bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Unload(); err != nil {
		return err
	}

	args := append(append([]string(nil), p.args...), WatchURL+mediaID)
	cmd := exec.Command(p.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command, err)
	}

	p.mu.Lock()
	p.token++
	token := p.token
	done := make(chan struct{})
	p.cmd = cmd
	p.done = done
	p.paused = false
	p.mu.Unlock()

	go p.wait(cmd, token, done)

	if !autoplay {
		return p.Pause()
	}
	return nil
}

// wait reaps the process. A clean exit of the current load is the end of
// the item; a kill from Unload is not.
func (p *ProcessWidget) wait(cmd *exec.Cmd, token uint64, done chan struct{}) {
	err := cmd.Wait()
	close(done)

	p.mu.Lock()
	current := p.token == token
	if current {
		p.cmd = nil
		p.done = nil
	}
	p.mu.Unlock()

	if !current {
		return
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("player exited with error")
		return
	}
	if p.onEnded != nil {
		p.onEnded()
	}
}

// Play resumes a paused player.
func (p *ProcessWidget) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || !p.paused {
		return nil
	}
	if err := resume(p.cmd.Process); err != nil {
		return err
	}
	p.paused = false
	return nil
}

// Pause suspends the player.
func (p *ProcessWidget) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.paused {
		return nil
	}
	if err := suspend(p.cmd.Process); err != nil {
		return err
	}
	p.paused = true
	return nil
}

// Unload kills the running player and waits for it to exit.
func (p *ProcessWidget) Unload() error {
	p.mu.Lock()
	cmd, done := p.cmd, p.done
	p.token++
	p.cmd = nil
	p.done = nil
	p.paused = false
	p.mu.Unlock()

	if cmd == nil {
		return nil
	}
	_ = cmd.Process.Kill()
	<-done
	return nil
}
