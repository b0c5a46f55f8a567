package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// CalculateDataMD5 returns the lowercase hex MD5 digest of data. The digest is
// used only for equality comparison against known content, not for security.
func CalculateDataMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
