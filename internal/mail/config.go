// Package mail dispatches listing notifications through the Gmail API.
package mail

import (
	"fmt"
	"strings"

	"github.com/nadavh/aptwatch/internal/common"
)

// Config holds Gmail credentials and addressing.
type Config struct {
	ClientID     string
	ClientSecret string
	// TokenFile caches the OAuth2 token between runs.
	TokenFile  string
	Recipients []string
	CC         []string
}

// Validate checks that the config can produce a working sender.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: gmail client id and secret are required", common.ErrMissingConfig)
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("%w: at least one mail recipient is required", common.ErrMissingConfig)
	}
	for _, r := range c.Recipients {
		if !strings.Contains(r, "@") {
			return fmt.Errorf("%w: invalid recipient %q", common.ErrInvalidConfig, r)
		}
	}
	for _, r := range c.CC {
		if !strings.Contains(r, "@") {
			return fmt.Errorf("%w: invalid cc recipient %q", common.ErrInvalidConfig, r)
		}
	}
	return nil
}

// SplitRecipients turns a comma-separated address list into a slice,
// dropping empty entries.
func SplitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
