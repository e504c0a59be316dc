package ga4

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const maxMetaLength = 500

// ClientID derives a privacy-safe collector client id from the visitor's
// IP and User-Agent. The id rotates daily at midnight UTC, so the same
// visitor cannot be followed across days.
func ClientID(ip, userAgent string, at time.Time) string {
	day := at.UTC().Truncate(24 * time.Hour)
	salt := fmt.Sprintf("ga4:%s", day.Format("2006-01-02"))

	sum := sha256.Sum256([]byte(ip + userAgent + salt))
	return fmt.Sprintf("%d.%d", binary.BigEndian.Uint32(sum[:4]), day.Unix())
}

// SanitizeReferrer strips query parameters and fragments from ref and
// truncates it.
func SanitizeReferrer(ref string) string {
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""

	return truncate(parsed.String())
}

// TruncateUserAgent truncates ua to the collector's field limit.
func TruncateUserAgent(ua string) string {
	return truncate(ua)
}

// PrimaryLanguage returns the first language tag of an Accept-Language
// header, lower-cased.
func PrimaryLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	tag, _, _ := strings.Cut(first, ";")
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	return strings.ToLower(tag)
}

func truncate(s string) string {
	if len(s) > maxMetaLength {
		return s[:maxMetaLength]
	}
	return s
}
