package export

import (
	"strings"

	domain "soaiadmin/internal/domain/member"
)

// Filename is the download name for a roster export.
const Filename = "members.csv"

// Headers is the fixed, ordered CSV column list. The order and names are a
// stable contract for downstream spreadsheet consumers — do not reorder
// without a version note.
var Headers = []string{
	"member_id", "email", "first_name", "last_name", "status", "plan",
	"role", "personal_webpage", "phone", "phone_country_code", "country",
	"country_code", "affiliation", "title", "renew_date", "created_at",
}

// MembersCSV serializes the given page of members. Every field value is
// wrapped in double quotes with embedded double quotes doubled; rows are
// joined with a newline. Missing optional fields serialize as empty string.
// PRE: rows is the currently loaded page (may be empty)
// POST: Returns the header line plus one line per row
func MembersCSV(rows []domain.Member) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Headers, ","))
	for _, m := range rows {
		fields := make([]string, len(Headers))
		for i, h := range Headers {
			fields[i] = escape(fieldValue(m, h))
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

// escape wraps v in double quotes, doubling any embedded double quote.
func escape(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// fieldValue maps a header name to the member field it exports.
func fieldValue(m domain.Member, header string) string {
	switch header {
	case "member_id":
		return m.MemberID
	case "email":
		return m.Email
	case "first_name":
		return m.FirstName
	case "last_name":
		return m.LastName
	case "status":
		return m.Status
	case "plan":
		return m.Plan
	case "role":
		return m.Role
	case "personal_webpage":
		return m.PersonalWebpage
	case "phone":
		return m.Phone
	case "phone_country_code":
		return m.PhoneCountryCode
	case "country":
		return m.Country
	case "country_code":
		return m.CountryCode
	case "affiliation":
		return m.Affiliation
	case "title":
		return m.Title
	case "renew_date":
		return m.RenewDate
	case "created_at":
		return m.CreatedAt
	}
	return ""
}
