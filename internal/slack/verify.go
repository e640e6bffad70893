package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// timestampWindow bounds replay of signed requests.
const timestampWindow = 5 * time.Minute

// VerifySignature checks a Slack request signature (v0 scheme): reject
// stale timestamps, then compare HMAC-SHA256 over "v0:<ts>:<body>".
func VerifySignature(signingSecret, timestamp, signature string, body []byte, now time.Time) bool {
	if signingSecret == "" || signature == "" {
		return false
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > timestampWindow || age < -timestampWindow {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
