package segment

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the parsed form of the seq=2 control segment's payload:
// "<basename>,<extension>,<size-in-bytes>".
type Metadata struct {
	Basename  string
	Extension string
	Size      int64
}

// EncodeMetadata renders m as the comma-separated ASCII triple carried in the
// metadata segment's payload.
func EncodeMetadata(m Metadata) []byte {
	return []byte(fmt.Sprintf("%s,%s,%d", m.Basename, m.Extension, m.Size))
}

// DecodeMetadata parses a metadata segment's payload. It returns an error if
// the payload isn't exactly three comma-separated fields or the size field
// isn't a valid non-negative integer.
func DecodeMetadata(payload []byte) (Metadata, error) {
	fields := strings.Split(string(payload), ",")
	if len(fields) != 3 {
		return Metadata{}, fmt.Errorf("segment: metadata payload has %d fields, want 3", len(fields))
	}
	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || size < 0 {
		return Metadata{}, fmt.Errorf("segment: invalid metadata size field %q", fields[2])
	}
	return Metadata{Basename: fields[0], Extension: fields[1], Size: size}, nil
}

// SplitFilename separates a file name into basename and extension, matching
// the protocol's "portion before/after the final dot" rule. A filename with
// no dot yields an empty extension.
func SplitFilename(name string) (basename, extension string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
