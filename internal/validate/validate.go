// Package validate gates wizard step transitions. Every check is a pure
// predicate over the drafts; failures come back as plain errors carrying
// the user-facing message and never advance the step.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ccotek/cocoti-pool-flow/internal/model"
)

var (
	// digits, spaces, +, -, parentheses; at least 8 significant characters
	phoneRe = regexp.MustCompile(`^[0-9+\-() ]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// MinPhoneDigits minimum count of non-separator characters in a phone number
const MinPhoneDigits = 8

// Phone checks the phone number format
func Phone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errors.New("phone number is required")
	}
	if !phoneRe.MatchString(phone) {
		return errors.New("phone number format is invalid")
	}
	significant := 0
	for _, r := range phone {
		if r != ' ' && r != '-' && r != '(' && r != ')' {
			significant++
		}
	}
	if significant < MinPhoneDigits {
		return errors.New("phone number is too short")
	}
	return nil
}

// Email checks the email format; empty is allowed
func Email(email string) error {
	if email == "" {
		return nil
	}
	if !emailRe.MatchString(email) {
		return errors.New("email format is invalid")
	}
	return nil
}

// ContributionDetails gates the details step: positive amount within the
// pool bounds, bounds inclusive
func ContributionDetails(d *model.ContributionDraft, pool *model.Pool) error {
	if !d.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	if pool.MinContribution != nil && d.Amount.LessThan(*pool.MinContribution) {
		return fmt.Errorf("amount must be at least %s %s", pool.MinContribution.String(), pool.Currency)
	}
	if pool.MaxContribution != nil && d.Amount.GreaterThan(*pool.MaxContribution) {
		return fmt.Errorf("amount must not exceed %s %s", pool.MaxContribution.String(), pool.Currency)
	}
	return nil
}

// ContributionPayment gates the payment step. The method union is matched
// exhaustively: mobile wallets need a phone, card needs all three card
// fields, anything else is rejected.
func ContributionPayment(d *model.ContributionDraft) error {
	if strings.TrimSpace(d.PayerFullName) == "" {
		return errors.New("full name is required")
	}
	if err := Email(d.PayerEmail); err != nil {
		return err
	}

	switch d.Method.Kind {
	case model.MethodWave, model.MethodOrangeMoney:
		if err := Phone(d.Method.Phone); err != nil {
			return err
		}
	case model.MethodCard:
		if strings.TrimSpace(d.Method.CardNumber) == "" ||
			strings.TrimSpace(d.Method.CardExpiry) == "" ||
			strings.TrimSpace(d.Method.CardCVC) == "" {
			return errors.New("card number, expiry and CVC are required")
		}
	case "":
		return errors.New("payment method is required")
	default:
		return fmt.Errorf("unsupported payment method: %s", d.Method.Kind)
	}
	return nil
}

// CreationInfo gates the info step of the creation wizard
func CreationInfo(d *model.CreationDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("pool name is required")
	}
	// counted in characters, not bytes; descriptions are French text
	if utf8.RuneCountInString(strings.TrimSpace(d.Description)) < model.MinDescriptionLength {
		return fmt.Errorf("description must be at least %d characters", model.MinDescriptionLength)
	}
	if !d.TargetAmount.IsPositive() {
		return errors.New("target amount must be greater than 0")
	}
	if d.Visibility != model.VisibilityPublic && d.Visibility != model.VisibilityPrivate {
		return errors.New("visibility must be public or private")
	}
	if d.Country == "" {
		return errors.New("country is required")
	}
	if d.Currency == "" {
		return errors.New("currency is required")
	}
	if len(d.ImageURLs) > model.MaxImages {
		return fmt.Errorf("at most %d images are allowed", model.MaxImages)
	}
	if len(d.VideoURLs) > model.MaxVideos {
		return fmt.Errorf("at most %d videos are allowed", model.MaxVideos)
	}
	if d.MinContribution != nil && d.MaxContribution != nil &&
		d.MaxContribution.LessThan(*d.MinContribution) {
		return errors.New("max contribution must not be below min contribution")
	}
	if !d.CharterAccepted {
		return errors.New("the money pool charter must be accepted")
	}
	return nil
}

// NormalizeCreation enforces the public-visibility override: public pools
// never carry user-entered contribution bounds, participant caps or the
// anonymous override, whatever the client sent
func NormalizeCreation(d *model.CreationDraft) {
	if d.Visibility != model.VisibilityPublic {
		return
	}
	d.MinContribution = nil
	d.MaxContribution = nil
	d.MaxParticipants = nil
	d.AllowAnonymous = nil
}
