package savefile

import (
	"context"
	"os"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// ChmodHook returns a pre-commit hook that sets the published file's mode.
func ChmodHook(mode os.FileMode) PreCommitHook {
	return func(_ context.Context, tempPath string) error {
		if err := os.Chmod(tempPath, mode); err != nil {
			return domain.IOError("chmod", tempPath, err)
		}
		return nil
	}
}
