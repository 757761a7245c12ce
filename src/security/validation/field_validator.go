package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/tradejournal/src/models"
)

var ErrValidationFailed = errors.New("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxPairLength          = 20
	MaxSystemLength        = 100
	MaxRiskLength          = 10
	MaxCommentsLength      = 1024
	MaxQuestionLength      = 4000
	MinPasswordLength      = 6
	TradeDateLayout        = "2006-01-02"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (fe FieldErrors) Unwrap() error { return ErrValidationFailed }

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTradeDate checks a YYYY-MM-DD date and rejects rollovers like 2024-02-30.
func ValidateTradeDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "date"); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(TradeDateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, s)
	}
	return t, nil
}

// ParseRisk reads a risk label such as "1%" or "0.5" as a percentage.
func ParseRisk(label string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "%"))
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ValidateTrade normalizes a trade form in place and reports every invalid field.
func ValidateTrade(in *models.TradeInput) error {
	errs := FieldErrors{}

	in.Date = strings.TrimSpace(in.Date)
	in.Pair = strings.ToUpper(strings.TrimSpace(SanitizeText(in.Pair)))
	in.System = strings.TrimSpace(SanitizeText(in.System))
	in.Action = strings.ToUpper(strings.TrimSpace(in.Action))
	in.Risk = strings.TrimSpace(SanitizeText(in.Risk))
	in.Comments = strings.TrimSpace(SanitizeText(in.Comments))

	if in.Date == "" {
		errs["date"] = "Date is required"
	} else if _, err := ValidateTradeDate(in.Date); err != nil {
		errs["date"] = "Date must be YYYY-MM-DD"
	}

	if in.Pair == "" {
		errs["pair"] = "Currency pair is required"
	} else if ValidateStringMaxLength(in.Pair, MaxPairLength, "pair") != nil {
		errs["pair"] = fmt.Sprintf("Currency pair must be at most %d characters", MaxPairLength)
	}

	if in.System == "" {
		errs["system"] = "Trading system is required"
	} else if ValidateStringMaxLength(in.System, MaxSystemLength, "system") != nil {
		errs["system"] = fmt.Sprintf("Trading system must be at most %d characters", MaxSystemLength)
	}

	if in.Action != models.ActionBuy && in.Action != models.ActionSell {
		errs["action"] = "Action must be BUY or SELL"
	}

	if in.Risk != "" {
		if pct, ok := ParseRisk(in.Risk); !ok || ValidateStringMaxLength(in.Risk, MaxRiskLength, "risk") != nil {
			errs["risk"] = "Risk must be a percentage such as 1%"
		} else if in.RiskPercent == 0 {
			in.RiskPercent = pct
		}
	}
	if in.RiskPercent < 0 || in.RiskPercent > 100 {
		errs["risk_percent"] = "Risk percent must be between 0 and 100"
	}

	if in.Entry <= 0 {
		errs["entry"] = "Valid entry price is required"
	}
	if in.Lots <= 0 {
		errs["lots"] = "Valid lot size is required"
	}
	if in.SL1Pips <= 0 {
		errs["sl1_pips"] = "Stop loss pips must be positive"
	}
	if in.TP1Pips <= 0 {
		errs["tp1_pips"] = "Take profit pips must be positive"
	}
	if in.SL2Pips < 0 {
		errs["sl2_pips"] = "Stop loss pips cannot be negative"
	}
	if in.TP2Pips < 0 {
		errs["tp2_pips"] = "Take profit pips cannot be negative"
	}

	if ValidateStringMaxLength(in.Comments, MaxCommentsLength, "comments") != nil {
		errs["comments"] = fmt.Sprintf("Comments must be at most %d characters", MaxCommentsLength)
	} else if CheckXSSPatterns(in.Comments, "comments") != nil {
		errs["comments"] = "Comments contain disallowed content"
	}

	if in.Cancelled {
		in.ProfitOrLoss = 0
	}

	return errs.orNil()
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateIdentity(errs FieldErrors, username, email string) {
	if username == "" {
		errs["username"] = "Username is required"
	} else if ValidateStringMaxLength(username, DefaultMaxStringLength, "username") != nil {
		errs["username"] = fmt.Sprintf("Username must be at most %d characters", DefaultMaxStringLength)
	}
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegex.MatchString(email) {
		errs["email"] = "Email is not valid"
	}
}

func validateRole(errs FieldErrors, role string) {
	if role != models.RoleAdmin && role != models.RoleUser {
		errs["role"] = "Role must be admin or user"
	}
}

// ValidateUserCreate checks the admin create-user form. An empty role becomes
// "user" and a zero initial capital becomes the default.
func ValidateUserCreate(in *models.UserCreate) error {
	errs := FieldErrors{}

	in.Username = strings.TrimSpace(SanitizeText(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.InitialCapital == 0 {
		in.InitialCapital = models.DefaultInitialCapital
	}

	validateIdentity(errs, in.Username, in.Email)
	validateRole(errs, in.Role)
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if in.InitialCapital < 0 {
		errs["initial_capital"] = "Initial capital cannot be negative"
	}
	return errs.orNil()
}

// ValidateUserUpdate checks a user edit. allowRole is false for self-service
// profile edits, which must not carry a role.
func ValidateUserUpdate(in *models.UserUpdate, allowRole bool) error {
	errs := FieldErrors{}

	in.Username = strings.TrimSpace(SanitizeText(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	validateIdentity(errs, in.Username, in.Email)
	switch {
	case !allowRole && in.Role != "":
		errs["role"] = "Role cannot be changed from the profile"
	case allowRole && in.Role != "":
		validateRole(errs, in.Role)
	}
	if in.InitialCapital != nil && *in.InitialCapital < 0 {
		errs["initial_capital"] = "Initial capital cannot be negative"
	}
	return errs.orNil()
}

// ValidatePasswordChange checks the self-service password form.
func ValidatePasswordChange(in models.PasswordChange) error {
	errs := FieldErrors{}
	if in.CurrentPassword == "" {
		errs["current_password"] = "Current password is required"
	}
	if utf8.RuneCountInString(in.NewPassword) < MinPasswordLength {
		errs["new_password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	} else if in.NewPassword == in.CurrentPassword {
		errs["new_password"] = "New password must differ from the current one"
	}
	return errs.orNil()
}

// ValidateQuestion trims and sanitizes an assistant question.
func ValidateQuestion(q string) (string, error) {
	q = strings.TrimSpace(SanitizeText(StripUnprintable(q)))
	if err := ValidateStringNotEmpty(q, "question"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(q, MaxQuestionLength, "question"); err != nil {
		return "", err
	}
	return q, nil
}
