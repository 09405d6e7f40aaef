package driver

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ChecksumEntry is one parsed line of a checksum file: a digest, the
// binary/text mode marker, and the target path (with backslash
// escapes already resolved).
type ChecksumEntry struct {
	Digest   []byte
	TextMode bool
	Path     string
}

// escapeFilename returns name with '\\' and '\n' escaped. When any
// escaping was needed, the escaped name is prefixed with a leading
// backslash so a parser knows to unescape; otherwise name is returned
// unchanged.
func escapeFilename(name string) string {
	if !strings.ContainsAny(name, "\\\n") {
		return name
	}
	var b strings.Builder
	b.WriteByte('\\')
	for _, r := range name {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeFilename(name string) (string, error) {
	if !strings.HasPrefix(name, `\`) {
		return name, nil
	}
	raw := name[1:]
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("dangling escape at end of filename")
		}
		switch raw[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			return "", fmt.Errorf("unknown escape \\%c", raw[i])
		}
	}
	return b.String(), nil
}

// ParseChecksumLine parses one non-empty, non-comment line of a
// checksum file: "HEXDIGEST<SP>MODE<FILENAME>" where MODE is ' '
// (binary) or '*' (text). Leading whitespace is never permitted.
func ParseChecksumLine(line string) (ChecksumEntry, error) {
	if line == "" {
		return ChecksumEntry{}, fmt.Errorf("empty line")
	}
	if line[0] == ' ' || line[0] == '\t' {
		return ChecksumEntry{}, fmt.Errorf("leading whitespace not permitted")
	}

	sp := strings.IndexByte(line, ' ')
	if sp < 0 || sp+1 >= len(line) {
		return ChecksumEntry{}, fmt.Errorf("missing mode/filename separator")
	}
	hexDigest := line[:sp]
	if len(hexDigest) == 0 || len(hexDigest)%2 != 0 {
		return ChecksumEntry{}, fmt.Errorf("odd-length or empty digest %q", hexDigest)
	}
	digest, err := hex.DecodeString(strings.ToLower(hexDigest))
	if err != nil {
		return ChecksumEntry{}, fmt.Errorf("non-hex digest %q: %w", hexDigest, err)
	}

	mode := line[sp+1]
	rest := line[sp+2:]
	var textMode bool
	switch mode {
	case ' ':
		textMode = false
	case '*':
		textMode = true
	default:
		return ChecksumEntry{}, fmt.Errorf("unknown mode marker %q", mode)
	}
	if rest == "" {
		return ChecksumEntry{}, fmt.Errorf("missing filename")
	}

	path, err := unescapeFilename(rest)
	if err != nil {
		return ChecksumEntry{}, err
	}

	return ChecksumEntry{Digest: digest, TextMode: textMode, Path: path}, nil
}

// FormatChecksumLine renders entry in the format ParseChecksumLine
// accepts.
func FormatChecksumLine(entry ChecksumEntry) string {
	mode := byte(' ')
	if entry.TextMode {
		mode = '*'
	}
	return fmt.Sprintf("%s %c%s", hex.EncodeToString(entry.Digest), mode, escapeFilename(entry.Path))
}

// isCommentOrBlank reports whether a checksum-file line should be
// skipped rather than parsed.
func isCommentOrBlank(line string) bool {
	trimmed := strings.TrimRight(line, "\r")
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}
