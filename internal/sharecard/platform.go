package sharecard

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"
)

// clipboardWriteAll is swapped in tests to avoid touching the real clipboard.
var clipboardWriteAll = clipboard.WriteAll

// openURL is swapped in tests to avoid launching a real browser.
var openURL = openURLSystem

// LocalPlatform delivers shares on a desktop host. There is no native
// share sheet in a terminal, so the capability ladder lands on download
// and deep links.
type LocalPlatform struct {
	// DownloadDir is where saved cards go; empty means the user's
	// Downloads folder, falling back to the working directory.
	DownloadDir string
}

// CanShareFiles reports false: terminals have no file share surface.
func (p *LocalPlatform) CanShareFiles(a *Artifact) bool { return false }

// CanShareText reports false: terminals have no text share surface.
func (p *LocalPlatform) CanShareText() bool { return false }

// ShareFile is unsupported on the desktop platform.
func (p *LocalPlatform) ShareFile(a *Artifact, text string) error {
	return ErrShareUnsupported
}

// ShareText is unsupported on the desktop platform.
func (p *LocalPlatform) ShareText(text string) error {
	return ErrShareUnsupported
}

// Download writes the artifact PNG into the download directory.
func (p *LocalPlatform) Download(a *Artifact, filename string) (string, error) {
	if a == nil || len(a.PNG) == 0 {
		return "", fmt.Errorf("no artifact to download")
	}
	dir := p.DownloadDir
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, "Downloads")
		} else {
			dir = "."
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, a.PNG, 0644); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return path, nil
}

// CopyToClipboard copies the caption to the system clipboard.
func (p *LocalPlatform) CopyToClipboard(text string) error {
	return clipboardWriteAll(text)
}

// OpenURL opens a link in the default browser.
func (p *LocalPlatform) OpenURL(url string) error {
	return openURL(url)
}

func openURLSystem(url string) error {
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
		return fmt.Errorf("open url: %w", err)
	}
	// Detach; the handler owns the link from here.
	go func() { _ = cmd.Wait() }()
	return nil
}
