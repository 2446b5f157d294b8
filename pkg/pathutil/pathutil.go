// Package pathutil sanitizes rendered strings so they can be used as file and
// directory names.
package pathutil

import "strings"

const (
	// MaxFilenameLen is the longest file name, in characters, left by SanitizeFilename.
	MaxFilenameLen = 255
	// MaxDirnameLen is the longest directory name or path part left by SanitizeDirname.
	MaxDirnameLen = 255
)

// DefaultReplacement is substituted for the path separator.
const DefaultReplacement = ":"

// SanitizeFilename replaces "/" with ":" and truncates the name to
// MaxFilenameLen characters. The stem is shortened first so the extension
// survives when possible.
func SanitizeFilename(filename string) string {
	return SanitizeFilenameWith(filename, DefaultReplacement)
}

// SanitizeFilenameWith is SanitizeFilename with a custom replacement.
func SanitizeFilenameWith(filename, replacement string) string {
	if filename == "" {
		return filename
	}
	filename = strings.ReplaceAll(filename, "/", replacement)

	runes := []rune(filename)
	if len(runes) <= MaxFilenameLen {
		return filename
	}
	drop := len(runes) - MaxFilenameLen

	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return string(runes[:len(runes)-drop])
	}

	stem := []rune(filename[:dot])
	ext := []rune(filename[dot+1:])
	if drop > len(stem) {
		ext = truncate(ext, drop)
	} else {
		stem = stem[:len(stem)-drop]
	}
	return string(stem) + "." + string(ext)
}

// SanitizeDirname replaces "/" with ":" and truncates the name to MaxDirnameLen
// characters.
func SanitizeDirname(dirname string) string {
	return SanitizePathPart(dirname)
}

// SanitizePathPart sanitizes a directory name or a file name without its
// extension.
func SanitizePathPart(part string) string {
	return SanitizePathPartWith(part, DefaultReplacement)
}

// SanitizePathPartWith is SanitizePathPart with a custom replacement. An empty
// replacement leaves separators in place and only truncates.
func SanitizePathPartWith(part, replacement string) string {
	if part == "" {
		return part
	}
	if replacement != "" {
		part = strings.ReplaceAll(part, "/", replacement)
	}
	runes := []rune(part)
	if len(runes) > MaxDirnameLen {
		return string(runes[:MaxDirnameLen])
	}
	return part
}

func truncate(r []rune, drop int) []rune {
	if drop >= len(r) {
		return r[:0]
	}
	return r[:len(r)-drop]
}
