package lmapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Signature computes the LMv1 request signature: the hex digest of
// HMAC-SHA256(accessKey, verb + epochMillis + body + resourcePath),
// base64-encoded. The signed resource path never includes the query
// string.
func Signature(accessKey, verb, epoch, body, resourcePath string) string {
	mac := hmac.New(sha256.New, []byte(accessKey))
	mac.Write([]byte(verb + epoch + body + resourcePath))
	digest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(digest))
}

// AuthHeader builds the LMv1 Authorization header value for a request
// issued at the given time.
func AuthHeader(accessID, accessKey, verb, body, resourcePath string, now time.Time) string {
	epoch := strconv.FormatInt(now.UnixMilli(), 10)
	sig := Signature(accessKey, verb, epoch, body, resourcePath)
	return fmt.Sprintf("LMv1 %s:%s:%s", accessID, sig, epoch)
}
