package main

import (
	"fmt"
	"os/exec"
	"strings"

	"sonoview/internal/logger"
)

// execPlayer hands videos to an external program and does not wait for it.
type execPlayer struct {
	argv []string
	log  logger.Logger
}

func newExecPlayer(command string, log logger.Logger) *execPlayer {
	return &execPlayer{argv: strings.Fields(command), log: log}
}

func (p *execPlayer) Play(path string) error {
	if len(p.argv) == 0 {
		return fmt.Errorf("no player command configured")
	}

	args := append(append([]string{}, p.argv[1:]...), path)
	cmd := exec.Command(p.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	p.log.Info(component, "player started", map[string]interface{}{
		"player": p.argv[0],
		"pid":    cmd.Process.Pid,
	})
	go func() {
		if err := cmd.Wait(); err != nil {
			p.log.Warning(component, "player exited", map[string]interface{}{"error": err.Error()})
		}
	}()
	return nil
}
