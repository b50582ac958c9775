package workflow

import (
	"fmt"
	"strings"
)

// ContainerImage maps a pinned action reference to the container image the
// invoker pulls. The published images live on ghcr.io with any sub-path
// folded into the tag: "github/super-linter/slim@v5" becomes
// "ghcr.io/github/super-linter:slim-v5".
func ContainerImage(ref string) (string, error) {
	name, version, ok := strings.Cut(ref, "@")
	if !ok || version == "" {
		return "", fmt.Errorf("delegate reference %q is not pinned to a version", ref)
	}

	parts := strings.Split(strings.Trim(name, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("delegate reference %q must be owner/repo[/path]", ref)
	}

	tag := version
	if len(parts) > 2 {
		tag = strings.Join(parts[2:], "-") + "-" + version
	}
	return fmt.Sprintf("ghcr.io/%s/%s:%s", parts[0], parts[1], tag), nil
}
