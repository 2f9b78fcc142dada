package media

import (
	"path/filepath"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a decodable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsSupportedFile reports whether path names a file the player can decode.
func IsSupportedFile(path string) bool {
	return IsSupportedExt(filepath.Ext(path))
}

// IsURL reports whether arg should be opened as a network stream.
func IsURL(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// SupportedExtsList returns a human-readable list of supported formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// DemoSource is the pseudo-source that selects the synthetic signal.
const DemoSource = "demo:"

// IsDemo reports whether source names the synthetic signal.
func IsDemo(source string) bool { return source == DemoSource }
