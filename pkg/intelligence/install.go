package intelligence

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// newScratchDir provisions a fresh, per-candidate install directory; the
// returned cleanup removes it unconditionally.
func newScratchDir(candidate model.Candidate) (string, func(), error) {
	dir, err := os.MkdirTemp("", "mcpcrawl-intel-*")
	if err != nil {
		return "", func() {}, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// installCandidate shells out to the ecosystem's package manager to
// materialize the candidate in dir, mirroring how the teacher's dependency
// resolvers treat external processes as cancellable, scoped acquisitions.
// Ephemeral-run kinds (npx, pipx run, uvx, docker run) fetch on first spawn
// and need no separate install step.
func installCandidate(ctx context.Context, dir string, install model.InstallationMethod) error {
	fields := strings.Fields(install.Command)
	if len(fields) == 0 {
		return fmt.Errorf("intelligence: empty install command")
	}
	target := fields[len(fields)-1]

	switch install.Kind {
	case model.InstallNPM:
		if fields[0] == "npx" {
			return nil
		}
		return run(ctx, dir, "npm", "install", target)
	case model.InstallPipx:
		if fields[0] == "uvx" || (fields[0] == "pipx" && len(fields) > 1 && fields[1] == "run") {
			return nil
		}
		return run(ctx, dir, "pipx", "install", target)
	case model.InstallCargo:
		return run(ctx, dir, "cargo", "install", "--root", dir, target)
	case model.InstallGo:
		return run(ctx, dir, "go", "install", target)
	case model.InstallDocker:
		return nil
	case model.InstallGit:
		return run(ctx, dir, "git", "clone", "--depth", "1", target, dir)
	default:
		return nil
	}
}

func run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Run()
}
