package agent

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/types"
)

// LogPresenter renders notifications into the structured log. Headless
// deployments run with this; a desktop build swaps in a native toast stack.
type LogPresenter struct {
	log *zap.Logger
}

func NewLogPresenter(log *zap.Logger) *LogPresenter {
	return &LogPresenter{log: log}
}

func (p *LogPresenter) Present(ctx context.Context, id string, payload types.NotificationPayload) error {
	p.log.Info("notification",
		zap.String("id", id),
		zap.String("title", payload.Title),
		zap.String("body", payload.Body),
		zap.String("url", payload.URL),
	)
	return nil
}

func (p *LogPresenter) Close(ctx context.Context, id string) error {
	p.log.Info("notification dismissed", zap.String("id", id))
	return nil
}

// ExecOpener hands the target URL to the platform's default opener.
type ExecOpener struct {
	command []string
}

func NewExecOpener() *ExecOpener {
	switch runtime.GOOS {
	case "darwin":
		return &ExecOpener{command: []string{"open"}}
	case "windows":
		return &ExecOpener{command: []string{"rundll32", "url.dll,FileProtocolHandler"}}
	default:
		return &ExecOpener{command: []string{"xdg-open"}}
	}
}

func (o *ExecOpener) Open(ctx context.Context, target string) error {
	args := append(append([]string(nil), o.command[1:]...), target)
	cmd := exec.CommandContext(ctx, o.command[0], args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", o.command[0], err)
	}
	return nil
}
