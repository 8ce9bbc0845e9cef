package rules

import (
	"regexp"
	"slices"
	"strings"
)

const (
	ReasonInvalidFormat = "Invalid email format"
	ReasonDisposable    = "Disposable emails are not allowed"
	ReasonInvalidDomain = "Email domain appears to be invalid"
	ReasonSuspicious    = "This email appears to be invalid or suspicious"
)

var (
	emailFormat = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-.]+\.[a-z]+$`)

	suspiciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)test.*@`),
		regexp.MustCompile(`(?i)user.*@`),
		regexp.MustCompile(`(?i)sample.*@`),
		regexp.MustCompile(`(?i)example.*@`),
		regexp.MustCompile(`(?i)[0-9]{8,}.*@`),
		regexp.MustCompile(`(?i)^(abc|xyz|123|qwerty|asdf).*@`),
		regexp.MustCompile(`(?i)^(?:john|jane)\.?doe.*@`),
	}

	disposableDomains = []string{
		"10minutemail.com", "tempmail.com", "guerrillamail.com", "mailinator.com",
		"yopmail.com", "sharklasers.com", "throwawaymail.com", "getairmail.com",
		"tempail.com", "dispostable.com", "mailnesia.com", "mytemp.email",
		"temp-mail.org", "fake-email.com", "getnada.com", "tempinbox.com",
		"burnermail.io", "temp-mail.io", "spamgourmet.com", "trashmail.com",
		"tempr.email", "emailondeck.com", "mintemail.com", "maildrop.cc",
		"fakeinbox.com", "mailnull.com", "emailfake.com",
	}

	fakeDomainMarkers = []string{"example", "test", "fake", "invalid"}
)

// ScreenEmail runs the offline registration heuristics. It returns the
// rejection reason, or "" when the address passes.
func ScreenEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailFormat.MatchString(email) {
		return ReasonInvalidFormat
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	if slices.Contains(disposableDomains, domain) {
		return ReasonDisposable
	}
	for _, marker := range fakeDomainMarkers {
		if strings.Contains(domain, marker) {
			return ReasonInvalidDomain
		}
	}
	for _, p := range suspiciousPatterns {
		if p.MatchString(email) {
			return ReasonSuspicious
		}
	}
	return ""
}
