// Package sdk resolves the platform base library archive that platform
// variants need on the analysis tool's auxiliary classpath.
package sdk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kderr/varlint/internal/variant"
)

// HomeEnv is consulted when a platform variant declares neither an explicit
// archive nor an SDK home.
const HomeEnv = "VARLINT_PLATFORM_HOME"

// candidate archive locations relative to an SDK home.
var probeNames = []string{
	"android.jar",
	filepath.Join("lib", "android.jar"),
	filepath.Join("lib", "platform.jar"),
}

// Locate returns the base archive path for a platform variant. Classpath
// correctness cannot be guaranteed without it, so an unresolvable archive is
// an error at task-configuration time, not at execution time.
func Locate(v variant.Variant) (string, error) {
	if !v.IsPlatform() {
		return "", fmt.Errorf("sdk: variant %s is not a platform variant", v.Name)
	}
	if archive := v.Platform.BaseArchive; archive != "" {
		if _, err := os.Stat(archive); err != nil {
			return "", fmt.Errorf("sdk: variant %s base archive %s: %w", v.Name, archive, err)
		}
		return archive, nil
	}
	home := v.Platform.Home
	if home == "" {
		home = os.Getenv(HomeEnv)
	}
	if home == "" {
		return "", fmt.Errorf("sdk: variant %s: no base archive, no SDK home, and %s unset", v.Name, HomeEnv)
	}
	for _, name := range probeNames {
		candidate := filepath.Join(home, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("sdk: variant %s: no base archive under %s", v.Name, home)
}
