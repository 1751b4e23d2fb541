package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// 5 to 20 digits, not a single repeated digit.
	identifierPattern = `^(?!([0-9])\1+$)[0-9]{5,20}$`
	phonePattern      = `^\+?(?!0+$)[0-9]{7,15}$`
)

var (
	identifierExp = regexp2.MustCompile(identifierPattern, regexp2.None)
	phoneExp      = regexp2.MustCompile(phonePattern, regexp2.None)

	errInvalidIdentifier = errors.New("must be 5 to 20 digits and not a single repeated digit")
	errInvalidPhone      = errors.New("must be 7 to 15 digits with an optional leading +")
)

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// NormalizeDigits maps Arabic-Indic and Eastern Arabic-Indic digits to
// ASCII and trims surrounding space.
func NormalizeDigits(s string) string {
	return digitReplacer.Replace(strings.TrimSpace(s))
}

func matchRule(exp *regexp2.Regexp, errMismatch error) validation.Rule {
	return validation.By(func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return errors.New("must be a string")
		}
		if s == "" {
			return nil
		}

		ok, err := exp.MatchString(s)
		if err != nil {
			return err
		}
		if !ok {
			return errMismatch
		}
		return nil
	})
}

var (
	isIdentifier = matchRule(identifierExp, errInvalidIdentifier)
	isPhone      = matchRule(phoneExp, errInvalidPhone)
)
