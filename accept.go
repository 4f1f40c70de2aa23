package broute

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Accept is one entry of an Accept-* header with its quality weight.
type Accept struct {
	Value   string
	Quality float64
}

// parseAcceptHeader splits the header on commas and extracts an optional ";q=" weight from every
// entry. Entries keep header order, exact duplicates are dropped.
func parseAcceptHeader(content string) []Accept {
	entries := lo.FilterMap(strings.Split(content, ","), func(item string, _ int) (Accept, bool) {
		item = strings.TrimSpace(item)
		if item == "" {
			return Accept{}, false
		}

		value, weight, found := strings.Cut(item, ";q=")
		if !found {
			return Accept{Value: value, Quality: 1}, true
		}

		q, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			q = 0
		}

		return Accept{Value: strings.TrimSpace(value), Quality: q}, true
	})

	return lo.Uniq(entries)
}

// parseCookieHeader splits the header on ";" and every pair on its first "=".
func parseCookieHeader(content string) map[string]string {
	cookies := map[string]string{}
	for _, pair := range strings.Split(content, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, value, _ := strings.Cut(pair, "=")
		cookies[name] = value
	}

	return cookies
}

// parseFlag implements the tri-state Save-Data/DNT headers: nil when absent.
func parseFlag(headers map[string][]string, name, on string) *bool {
	vals, ok := headers[name]
	if !ok {
		return nil
	}

	return lo.ToPtr(strings.TrimSpace(strings.Join(vals, ", ")) == on)
}
