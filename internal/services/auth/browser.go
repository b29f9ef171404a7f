package auth

import (
	"os/exec"
	"runtime"

	"notegate/internal/platform/logger"
)

// openBrowser launches the platform opener with the URL as a plain argv
// element, never through a shell, so the URL cannot smuggle commands.
// Fire-and-forget: the caller is not blocked on the spawned process
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	// reap the child without waiting on it here
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Named("auth").Warn().Err(err).Msg("browser opener exited with error")
		}
	}()
	return nil
}
