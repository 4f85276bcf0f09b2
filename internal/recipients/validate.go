package recipients

import (
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/nhle/mailfront/internal/model"
)

// addressPattern is the single address check used by every form in the
// application: a local part of letters, digits, dot, underscore, or
// hyphen, then one or more dot-separated labels ending in a 2-4 letter
// top-level label.
var addressPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@([A-Za-z0-9-]+\.)+[A-Za-z]{2,4}$`)

// ValidAddress reports whether s matches the address pattern.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// InvalidAddresses returns the entries of addresses that fail the
// pattern, in their original order.
func InvalidAddresses(addresses []string) []string {
	return lo.Reject(addresses, func(a string, _ int) bool {
		return ValidAddress(a)
	})
}

// ValidateForSave checks that a campaign can be submitted and returns the
// payload for it. It performs no I/O.
func ValidateForSave(name string, addresses []string) (model.Campaign, error) {
	if strings.TrimSpace(name) == "" {
		return model.Campaign{}, ErrMissingName
	}
	if len(addresses) == 0 {
		return model.Campaign{}, ErrEmptyRecipientList
	}
	if invalid := InvalidAddresses(addresses); len(invalid) > 0 {
		return model.Campaign{}, &InvalidAddressError{Addresses: invalid}
	}

	return model.Campaign{
		Name:   strings.TrimSpace(name),
		Emails: slices.Clone(addresses),
	}, nil
}
