package validation

import (
	"sort"

	"mercator-hq/nebula/pkg/value"
)

// Preset patterns. Stored rule documents depend on these exact strings.
const (
	PatternEmail          = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	PatternURL            = `^https?://[^\s/$.?#].[^\s]*$`
	PatternUUID           = `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`
	PatternPhone          = `^\+?[1-9]\d{1,14}$`
	PatternStrongPassword = `^(?=.*[a-z])(?=.*[A-Z])(?=.*\d)(?=.*[@$!%*?&])[A-Za-z\d@$!%*?&]+$`
	PatternMediumPassword = `^(?=.*[a-zA-Z])(?=.*\d)[A-Za-z\d@$!%*?&]+$`
	PatternUsername       = `^[a-zA-Z0-9_-]+$`
	PatternAPIKey         = `^[A-Za-z0-9_-]+$`
	PatternJWT            = `^[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*$`
	PatternHexColor       = `^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`
	PatternDomain         = `^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`
	PatternIPv4           = `^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`
	PatternIPv6           = `^(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`
	PatternSemVer         = `^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(-((0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(\.(0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(\+([0-9a-zA-Z-]+(\.[0-9a-zA-Z-]+)*))?$`
	PatternCreditCard     = `^[0-9]{13,19}$`
	PatternSSN            = `^\d{3}-\d{2}-\d{4}$`
	PatternSlug           = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
	PatternFilePath       = `^(/[^/\0]+)+/?$`
	PatternHTMLTag        = `^[a-zA-Z][a-zA-Z0-9]*$`
	PatternISODate        = `^\d{4}-\d{2}-\d{2}$`
	PatternISODateTime    = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{3})?(?:Z|[+-]\d{2}:\d{2})$`
	PatternTimeHHMM       = `^([01]?[0-9]|2[0-3]):[0-5][0-9]$`
	PatternBase64         = `^[A-Za-z0-9+/]*={0,2}$`
	PatternMongoObjectID  = `^[0-9a-fA-F]{24}$`
)

// reservedUsernames are rejected by the Username preset.
var reservedUsernames = []string{"admin", "root", "system", "null", "undefined", "test"}

// Email accepts addresses up to the RFC 5321 length limit.
func Email() Operator {
	return NewBuilder().Required().Matches(PatternEmail).MaxLength(254).Build()
}

// URL accepts http and https URLs.
func URL() Operator {
	return NewBuilder().Required().Matches(PatternURL).MaxLength(2048).Build()
}

// UUID accepts lowercase version 4 UUIDs.
func UUID() Operator {
	return NewBuilder().Required().ExactLength(36).Matches(PatternUUID).Build()
}

// Phone accepts E.164 style numbers.
func Phone() Operator {
	return NewBuilder().Required().Matches(PatternPhone).MinLength(7).MaxLength(17).Build()
}

// StrongPassword requires lower and upper case letters, a digit and a symbol.
func StrongPassword() Operator {
	return NewBuilder().Required().MinLength(8).MaxLength(128).Matches(PatternStrongPassword).Build()
}

// MediumPassword requires a letter and a digit.
func MediumPassword() Operator {
	return NewBuilder().Required().MinLength(6).MaxLength(128).Matches(PatternMediumPassword).Build()
}

// Username accepts 3 to 32 word characters and rejects reserved names.
func Username() Operator {
	reserved := make([]value.Value, len(reservedUsernames))
	for i, name := range reservedUsernames {
		reserved[i] = value.String(name)
	}
	return NewBuilder().
		Required().
		MinLength(3).
		MaxLength(32).
		Matches(PatternUsername).
		NotIn(reserved...).
		Build()
}

// APIKey accepts keys carrying prefix.
func APIKey(prefix string) Operator {
	return NewBuilder().
		Required().
		StartsWith(prefix).
		MinLength(20).
		MaxLength(255).
		Matches(PatternAPIKey).
		Build()
}

func JWT() Operator {
	return NewBuilder().Required().Matches(PatternJWT).MinLength(50).Build()
}

// Numeric presets start with NotNull rather than Required: zero counts as
// empty, and NonNegativeInteger and Percentage must accept it.

func PositiveInteger() Operator {
	return NewBuilder().NotNull().Positive().Build()
}

func NonNegativeInteger() Operator {
	return NewBuilder().NotNull().GreaterThanOrEqual(value.Int(0)).Build()
}

func Percentage() Operator {
	return NewBuilder().NotNull().Between(value.Int(0), value.Int(100)).Build()
}

func Port() Operator {
	return NewBuilder().NotNull().Between(value.Int(1), value.Int(65535)).Build()
}

func HexColor() Operator {
	return NewBuilder().Required().Matches(PatternHexColor).Build()
}

func Domain() Operator {
	return NewBuilder().Required().Matches(PatternDomain).MaxLength(253).Build()
}

func IPv4() Operator {
	return NewBuilder().Required().Matches(PatternIPv4).Build()
}

func IPv6() Operator {
	return NewBuilder().Required().Matches(PatternIPv6).Build()
}

func SemVer() Operator {
	return NewBuilder().Required().Matches(PatternSemVer).Build()
}

// CreditCard checks the digit shape only, not the Luhn checksum.
func CreditCard() Operator {
	return NewBuilder().Required().Matches(PatternCreditCard).Build()
}

// SSN accepts the US ddd-dd-dddd format.
func SSN() Operator {
	return NewBuilder().Required().Matches(PatternSSN).Build()
}

func Slug() Operator {
	return NewBuilder().Required().MinLength(1).MaxLength(100).Matches(PatternSlug).Build()
}

// FilePath accepts absolute Unix paths.
func FilePath() Operator {
	return NewBuilder().Required().Matches(PatternFilePath).MaxLength(4096).Build()
}

func HTMLTag() Operator {
	return NewBuilder().Required().Matches(PatternHTMLTag).MinLength(1).MaxLength(20).Build()
}

func ISODate() Operator {
	return NewBuilder().Required().Matches(PatternISODate).Build()
}

func ISODateTime() Operator {
	return NewBuilder().Required().Matches(PatternISODateTime).Build()
}

func TimeHHMM() Operator {
	return NewBuilder().Required().Matches(PatternTimeHHMM).Build()
}

func Base64() Operator {
	return NewBuilder().Required().Matches(PatternBase64).Build()
}

func MongoObjectID() Operator {
	return NewBuilder().Required().ExactLength(24).Matches(PatternMongoObjectID).Build()
}

// Cron accepts standard five-field cron expressions. It needs the "cron"
// validator from NewDefaultRegistry.
func Cron() Operator {
	return NewBuilder().Required().Custom("cron").Build()
}

// UUIDAny accepts a UUID of any version or case. It needs the "uuid"
// validator from NewDefaultRegistry.
func UUIDAny() Operator {
	return NewBuilder().Required().Custom("uuid").Build()
}

var presets = map[string]func() Operator{
	"email":                Email,
	"url":                  URL,
	"uuid":                 UUID,
	"uuid_any":             UUIDAny,
	"phone":                Phone,
	"strong_password":      StrongPassword,
	"medium_password":      MediumPassword,
	"username":             Username,
	"jwt":                  JWT,
	"positive_integer":     PositiveInteger,
	"non_negative_integer": NonNegativeInteger,
	"percentage":           Percentage,
	"port":                 Port,
	"hex_color":            HexColor,
	"domain":               Domain,
	"ipv4":                 IPv4,
	"ipv6":                 IPv6,
	"semver":               SemVer,
	"credit_card":          CreditCard,
	"ssn":                  SSN,
	"slug":                 Slug,
	"file_path":            FilePath,
	"html_tag":             HTMLTag,
	"iso_date":             ISODate,
	"iso_datetime":         ISODateTime,
	"time_hhmm":            TimeHHMM,
	"base64":               Base64,
	"mongo_object_id":      MongoObjectID,
	"cron":                 Cron,
}

// Preset returns the preset registered under name. APIKey takes a prefix
// and is not addressable by name.
func Preset(name string) (Operator, bool) {
	fn, ok := presets[name]
	if !ok {
		return Operator{}, false
	}
	return fn(), true
}

// PresetNames returns every preset name in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Presets returns a fresh name to operator table.
func Presets() map[string]Operator {
	out := make(map[string]Operator, len(presets))
	for name, fn := range presets {
		out[name] = fn()
	}
	return out
}
