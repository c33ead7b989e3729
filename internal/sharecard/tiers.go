package sharecard

import (
	"errors"
	"fmt"

	"philomind/internal/logging"
)

// Platform is the host capability surface the pipeline delivers through.
type Platform interface {
	// CanShareFiles reports whether a native share surface accepts the
	// artifact as a file payload.
	CanShareFiles(a *Artifact) bool

	// CanShareText reports whether a native text-only share surface exists.
	CanShareText() bool

	// ShareFile invokes the native share surface with the image and caption.
	ShareFile(a *Artifact, text string) error

	// ShareText invokes the native share surface with the caption only.
	ShareText(text string) error

	// Download saves the artifact to local storage, returning the path.
	Download(a *Artifact, filename string) (string, error)

	// CopyToClipboard copies the caption.
	CopyToClipboard(text string) error

	// OpenURL opens a deep link in the default handler.
	OpenURL(url string) error
}

// DeliveryTier identifies how a share was (or would be) delivered.
type DeliveryTier int

const (
	TierNativeFile DeliveryTier = iota
	TierNativeText
	TierDownload
	TierDeepLink
)

func (t DeliveryTier) String() string {
	switch t {
	case TierNativeFile:
		return "native-file"
	case TierNativeText:
		return "native-text"
	case TierDownload:
		return "download"
	case TierDeepLink:
		return "deep-link"
	default:
		return "unknown"
	}
}

// Delivery reports the outcome of a share dispatch.
type Delivery struct {
	Tier      DeliveryTier
	Cancelled bool   // user dismissed the native surface; not an error
	Path      string // set for TierDownload
	Copied    bool   // caption was placed on the clipboard
}

// chooseTier queries platform capabilities at dispatch time and picks the
// richest available tier. Queried per call: capabilities can change (e.g.
// clipboard-restricted sessions), so nothing is cached.
func chooseTier(p Platform, a *Artifact) DeliveryTier {
	if a != nil && p.CanShareFiles(a) {
		return TierNativeFile
	}
	if p.CanShareText() {
		return TierNativeText
	}
	return TierDownload
}

// deliverNative runs the capability ladder for the generic share action.
// A cancelled native share ends the ladder quietly; an unsupported one
// degrades to the next tier.
func deliverNative(p Platform, a *Artifact, text string) (Delivery, error) {
	tier := chooseTier(p, a)
	logging.Share("dispatching share via %s", tier)

	if tier == TierNativeFile {
		err := p.ShareFile(a, text)
		switch {
		case err == nil:
			return Delivery{Tier: TierNativeFile}, nil
		case errors.Is(err, ErrShareCancelled):
			return Delivery{Tier: TierNativeFile, Cancelled: true}, nil
		case errors.Is(err, ErrShareUnsupported):
			tier = TierNativeText // capability probe lied; degrade
		default:
			return Delivery{}, fmt.Errorf("native file share: %w", err)
		}
	}

	if tier == TierNativeText && p.CanShareText() {
		err := p.ShareText(text)
		switch {
		case err == nil:
			return Delivery{Tier: TierNativeText}, nil
		case errors.Is(err, ErrShareCancelled):
			return Delivery{Tier: TierNativeText, Cancelled: true}, nil
		case errors.Is(err, ErrShareUnsupported):
			// fall through to download
		default:
			return Delivery{}, fmt.Errorf("native text share: %w", err)
		}
	}

	path, err := p.Download(a, DownloadFileName)
	if err != nil {
		return Delivery{}, fmt.Errorf("download: %w", err)
	}
	return Delivery{Tier: TierDownload, Path: path}, nil
}
