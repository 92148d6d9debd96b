package thumbcrawl

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// NamingPolicy selects how downloaded files are named.
type NamingPolicy int

const (
	// NamingTitle names files after the thumbnail title.
	NamingTitle NamingPolicy = iota
	// NamingSequential names files after a run-wide running index.
	NamingSequential
)

// String returns the CLI token for the policy.
func (p NamingPolicy) String() string {
	switch p {
	case NamingSequential:
		return "index"
	default:
		return "title"
	}
}

// ParseNamingPolicy parses a CLI token into a NamingPolicy.
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch strings.ToLower(s) {
	case "title", "":
		return NamingTitle, nil
	case "index", "sequential":
		return NamingSequential, nil
	}
	return NamingTitle, Errorf(EINVALID, "unknown naming policy %q", s)
}

// NamingOptions configures FileName.
type NamingOptions struct {
	Policy NamingPolicy

	// AppendTitle adds "_<title>" after the index under NamingSequential.
	AppendTitle bool
}

// DefaultImageExtension is used when an image URL carries no usable extension.
const DefaultImageExtension = ".jpg"

// encodableExtensions are the extensions an image can be re-encoded to.
var encodableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var fileNameReplacer = strings.NewReplacer(
	`\`, "_",
	`/`, "_",
	`:`, "_",
	`?`, "_",
	`"`, "_",
	`<`, "_",
	`>`, "_",
	`|`, "_",
	`*`, "_",
)

// SanitizeFileName replaces every character that is unsafe in a file name
// (\ / : ? " < > | *) with an underscore. Length is not limited.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}

// FileName derives the file name for a thumbnail.
// Under NamingTitle an empty title yields just the extension.
func FileName(title, ext string, opts NamingOptions, index int) string {
	switch opts.Policy {
	case NamingSequential:
		name := strconv.Itoa(index)
		if opts.AppendTitle && title != "" {
			name += "_" + title
		}
		return SanitizeFileName(name + ext)
	default:
		return SanitizeFileName(title + ext)
	}
}

// ImageExtension returns the lower-cased extension of the URL path.
// Extensions that cannot be re-encoded, and missing ones, map to
// DefaultImageExtension.
func ImageExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !encodableExtensions[ext] {
		return DefaultImageExtension
	}
	return ext
}
