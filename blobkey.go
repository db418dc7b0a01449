package tensorboard

import "github.com/google/uuid"

// ValidateBlobKey checks a blob key against the producer-side contract: keys
// are non-empty and restricted to the RFC 3986 unreserved characters
// [a-zA-Z0-9._~-], so they can appear verbatim in URLs. Returns an
// InvalidArgument-kind error naming the first offense.
//
// The BlobReference value type does not call this; backends should run it at
// the point where keys are minted or ingested.
func ValidateBlobKey(key string) error {
	if key == "" {
		return InvalidArgumentf("blob key must not be empty")
	}
	for i := 0; i < len(key); i++ {
		if !isUnreserved(key[i]) {
			return InvalidArgumentf("blob key %q contains invalid byte %q at index %d", key, key[i], i)
		}
	}
	return nil
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '.' || c == '_' || c == '~' || c == '-':
		return true
	}
	return false
}

// NewBlobKey mints a random, charset-valid blob key. Random keys carry no
// information, which keeps them safe to surface in URLs and logs; backends
// that instead encode structure into keys are responsible for keeping secrets
// out of them.
func NewBlobKey() string {
	return uuid.NewString()
}
