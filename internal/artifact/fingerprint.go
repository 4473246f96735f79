package artifact

import (
	"strconv"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("varlint.artifact.fingerprint.v01")

// Fingerprint hashes the selected artifact paths into a stable 64-bit value.
// Runs log it so identical selections are recognizable across builds.
func (s Set) Fingerprint() string {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return ""
	}
	sep := []byte{0}
	for _, f := range s.Files {
		h.Write([]byte(f))
		h.Write(sep)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
