package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// openURLFn and copyFn are swapped out by tests so no browser or clipboard
// is touched.
var (
	openURLFn = openURL
	copyFn    = copyText
)

// StubPlatformActions replaces the browser and clipboard hooks with recorders
// and returns a restore function.
func StubPlatformActions() (restore func()) {
	origOpen, origCopy := openURLFn, copyFn
	openURLFn = func(string) error { return nil }
	copyFn = func(string) error { return nil }
	return func() {
		openURLFn = origOpen
		copyFn = origCopy
	}
}

// openURL starts the platform browser on href. The child outlives the call.
func openURL(href string) error {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return fmt.Errorf("refusing to open %q: not an http(s) link", href)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", href)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("xdg-open not found (install xdg-utils)")
		}
		cmd = exec.CommandContext(context.Background(), "xdg-open", href)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", href)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// copyText pipes text into the first clipboard tool found.
func copyText(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "pbcopy")
	case "linux":
		for _, tool := range [][]string{{"wl-copy"}, {"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}} {
			if _, err := exec.LookPath(tool[0]); err == nil {
				cmd = exec.CommandContext(ctx, tool[0], tool[1:]...)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("no clipboard command found (install wl-clipboard, xclip or xsel)")
		}
	case "windows":
		cmd = exec.CommandContext(ctx, "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
