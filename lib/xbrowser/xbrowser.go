// Package xbrowser opens URLs in the user's browser, honoring the BROWSER
// environment variable before falling back to the platform default.
package xbrowser

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/pkg/browser"
)

func Open(ctx context.Context, url string) error {
	browserEnv := os.Getenv("BROWSER")
	if browserEnv != "" {
		browserSh := fmt.Sprintf("%s '$1'", browserEnv)
		cmd := exec.CommandContext(ctx, "sh", "-c", browserSh, "--", url)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
		}
		return nil
	}
	return browser.OpenURL(url)
}
