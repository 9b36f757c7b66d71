package symlink

import (
	"context"
	"os"
	"path"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
)

// MaxHops is the number of symbolic links Resolve follows before it gives up
// and stats whatever path it is left with.
const MaxHops = 10

// Resolve stats name through root, following symbolic links at most maxHops
// times. It returns the name the chain ended on, which still carries the
// extension of the final target, together with its file info.
//
// Once the budget is spent the remaining path is stat'ed directly, so a
// cycle ends with an error from the filesystem rather than a loop.
func Resolve(ctx context.Context, root vfs.Root, name string, maxHops int) (string, os.FileInfo, error) {
	for {
		fi, err := root.Lstat(ctx, name)
		if err != nil {
			return "", nil, err
		}

		if fi.Mode()&os.ModeSymlink == 0 {
			return name, fi, nil
		}

		if maxHops <= 0 {
			fi, err = root.Stat(ctx, name)
			if err != nil {
				return "", nil, err
			}

			return name, fi, nil
		}

		target, err := root.Readlink(ctx, name)
		if err != nil {
			return "", nil, err
		}

		name = join(name, target)
		maxHops--
	}
}

// join resolves a link target relative to the directory holding the link.
func join(link, target string) string {
	if path.IsAbs(target) {
		return target
	}

	return path.Join(path.Dir(link), target)
}
