package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecksumLineBinary(t *testing.T) {
	entry, err := ParseChecksumLine("deadbeef  README.md")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, entry.Digest)
	assert.False(t, entry.TextMode)
	assert.Equal(t, "README.md", entry.Path)
}

func TestParseChecksumLineTextMode(t *testing.T) {
	entry, err := ParseChecksumLine("deadbeef *notes.txt")
	require.NoError(t, err)
	assert.True(t, entry.TextMode)
	assert.Equal(t, "notes.txt", entry.Path)
}

func TestParseChecksumLineRejectsLeadingWhitespace(t *testing.T) {
	_, err := ParseChecksumLine(" deadbeef file")
	assert.Error(t, err)
}

func TestParseChecksumLineRejectsOddHex(t *testing.T) {
	_, err := ParseChecksumLine("dea *file")
	assert.Error(t, err)
}

func TestParseChecksumLineRejectsBadMode(t *testing.T) {
	_, err := ParseChecksumLine("deadbeef ?file")
	assert.Error(t, err)
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	names := []string{"plain.txt", "has space.txt", `back\slash.txt`, "line\nbreak.txt"}
	for _, name := range names {
		line := FormatChecksumLine(ChecksumEntry{Digest: []byte{0xde, 0xad, 0xbe, 0xef}, Path: name})
		entry, err := ParseChecksumLine(line)
		require.NoError(t, err)
		assert.Equal(t, name, entry.Path)
	}
}

func TestFormatChecksumLineRoundTrip(t *testing.T) {
	entry := ChecksumEntry{Digest: []byte{0xab, 0xcd}, TextMode: true, Path: "weird name.bin"}
	line := FormatChecksumLine(entry)
	parsed, err := ParseChecksumLine(line)
	require.NoError(t, err)
	assert.Equal(t, entry, parsed)
}

func TestIsCommentOrBlank(t *testing.T) {
	assert.True(t, isCommentOrBlank(""))
	assert.True(t, isCommentOrBlank("# a comment"))
	assert.False(t, isCommentOrBlank("deadbeef file"))
}
