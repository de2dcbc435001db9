package route

import (
	"errors"
	"net/url"
	"strings"
)

// Path validation errors. All of them reject the path before it reaches the
// matcher, so a hostile URL can never smuggle structure past a literal
// segment.
var (
	ErrInvalidPath           = errors.New("route: invalid path")
	ErrBackslashInPath       = errors.New("route: path contains backslash")
	ErrNullByteInPath        = errors.New("route: path contains null byte")
	ErrInvalidPercentEscape  = errors.New("route: invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("route: path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("route: encoded slash in path segment")
)

// CanonicalizePath normalizes a pathname before matching:
//   - ensures a leading "/"
//   - collapses duplicate slashes
//   - removes "." segments and resolves ".."
//   - removes the trailing slash (except for root)
//
// Backslashes, NUL bytes, malformed percent escapes and ".." walking above
// root are rejected.
func CanonicalizePath(path string) (string, error) {
	if path == "" {
		return "/", nil
	}

	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) == 0 {
				return "", ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	return "/" + strings.Join(kept, "/"), nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeSegments splits a canonical path and percent-decodes each segment.
// A decoded segment that contains "/" is rejected: %2F must not change the
// path's structure.
func decodeSegments(path string) ([]string, error) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil, nil
	}

	segments := strings.Split(trimmed, "/")
	decoded := make([]string, 0, len(segments))
	for _, seg := range segments {
		d, err := url.PathUnescape(seg)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		if strings.Contains(d, "/") {
			return nil, ErrEncodedSlashInSegment
		}
		decoded = append(decoded, d)
	}
	return decoded, nil
}
