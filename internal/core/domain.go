package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	FrequencyNone FrequencyType = ""
	Once          FrequencyType = "once"
	Daily         FrequencyType = "daily"
	Weekly        FrequencyType = "weekly"
	Biweekly      FrequencyType = "biweekly"
	Monthly       FrequencyType = "monthly"
	Quarterly     FrequencyType = "quarterly"
	Yearly        FrequencyType = "yearly"
)

type (
	Kind string

	// FrequencyType is the repetition a user or an integration declared for a
	// transaction. It is often missing and not always right.
	FrequencyType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one entry of the feed. The forecasting engine only reads it.
	Transaction struct {
		ID                string
		Kind              Kind
		Amount            Money
		Description       string
		OccurredOn        Date // zero when missing or unparsable
		DeclaredFrequency FrequencyType
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyID          = errors.New("empty id")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	// Check basic ranges
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location and returns it as a UTC date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as 2006-01-02.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths moves n months forward, clamping the day to the target month's
// last day (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year(), d.Time.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return WithDay(first.Year(), int(first.Month()), d.Day())
}

// DaysUntil returns the whole days from d to other, rounded up.
func (d Date) DaysUntil(other Date) int {
	hours := other.Sub(d.Time).Hours()
	days := int(hours / 24)
	if float64(days)*24 < hours {
		days++
	}
	return days
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WithDay builds a date in year/month, clamping day to the month's length.
func WithDay(year, month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseFrequency maps the spellings found in feeds onto a FrequencyType.
func ParseFrequency(s string) (FrequencyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FrequencyNone, nil
	case "once", "one-time", "one_time", "single":
		return Once, nil
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "biweekly", "fortnightly", "bi-weekly":
		return Biweekly, nil
	case "monthly":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	case "yearly", "annual", "annually":
		return Yearly, nil
	default:
		return FrequencyNone, ErrInvalidFrequency
	}
}

// Repeats reports whether the declared frequency says the transaction recurs.
func (f FrequencyType) Repeats() bool {
	return f != FrequencyNone && f != Once
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}
