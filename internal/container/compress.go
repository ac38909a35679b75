package container

import "github.com/golang/snappy"

// blobCodec tags a directory entry's payload so a reader can tell
// compressed blobs from raw ones without a separate manifest field.
type blobCodec byte

const (
	codecRaw    blobCodec = 0
	codecSnappy blobCodec = 1
)

// CompressBlob prefixes data with a one-byte codec tag and, when enabled,
// snappy-compresses the payload. Leaving compression off keeps the
// on-disk bytes identical to the uncompressed form plus the tag byte, so
// compression is opt-in and never changes the container's bit-exact
// layout unless a caller asks for it.
func CompressBlob(data []byte, enabled bool) []byte {
	if !enabled {
		return append([]byte{byte(codecRaw)}, data...)
	}
	compressed := snappy.Encode(nil, data)
	return append([]byte{byte(codecSnappy)}, compressed...)
}

// DecompressBlob reverses CompressBlob, reading the codec tag to decide
// whether to snappy-decode the remainder.
func DecompressBlob(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	codec := blobCodec(data[0])
	body := data[1:]
	switch codec {
	case codecRaw:
		return body, nil
	case codecSnappy:
		return snappy.Decode(nil, body)
	default:
		return nil, errUnknownCodec(codec)
	}
}

func errUnknownCodec(codec blobCodec) error {
	return &unknownCodecError{codec: codec}
}

type unknownCodecError struct {
	codec blobCodec
}

func (e *unknownCodecError) Error() string {
	return "container: unknown blob codec tag"
}
