package resident

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/foyer/core"
)

type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusInactive ActivityStatus = "inactive"
)

type RoomPresence string

const (
	WithRoom    RoomPresence = "withRoom"
	WithoutRoom RoomPresence = "withoutRoom"
)

type PaymentState string

const (
	PaymentStatePaid   PaymentState = "paid"
	PaymentStateUnpaid PaymentState = "unpaid"
	PaymentStateExempt PaymentState = "exempt"
)

// recognised query parameters
const (
	ParamSearch             = "search"
	ParamStatus             = "status"
	ParamRoom               = "room"
	ParamSpecificRoom       = "specificRoom"
	ParamGender             = "gender"
	ParamType               = "type"
	ParamSession            = "session"
	ParamYear               = "year"
	ParamStartDate          = "startDate"
	ParamEndDate            = "endDate"
	ParamLodgingStatus      = "lodgingStatus"
	ParamLodgingTerms       = "lodgingTerms"
	ParamRegistrationStatus = "registrationStatus"
	ParamSortBy             = "sortBy"
	ParamSortOrder          = "sortOrder"
	ParamPage               = "page"
	ParamLimit              = "limit"

	maxLimit = 500
)

var (
	sessionCycles = map[string]Cycle{
		"sep": CycleSep, "september": CycleSep, "septembre": CycleSep,
		"nov": CycleNov, "november": CycleNov, "novembre": CycleNov,
		"fev": CycleFev, "feb": CycleFev, "february": CycleFev, "fevrier": CycleFev, "février": CycleFev,
		"external": CycleExternal,
	}

	// SortColumns maps the sortable API fields to their storage column.
	SortColumns = map[string]string{
		"createdAt":     "created_at",
		"updatedAt":     "updated_at",
		"identifier":    "identifier",
		"firstName":     "first_name",
		"lastName":      "last_name",
		"email":         "email",
		"companyName":   "company_name",
		"sessionYear":   "session_year",
		"arrivalDate":   "arrival_date",
		"departureDate": "departure_date",
		"totalAmount":   "total_amount",
	}

	errInvalidTerms = errors.New("lodgingTerms must be a comma separated list of 1, 2 and 3")

	defaultOrdering = core.DBOrdering{Field: "created_at", Ascending: false}
	allTerms        = []int{1, 2, 3}
)

// PaymentFilter selects residents by the state of one payment ledger.
// Terms restricts the lodging terms considered (1..3); empty means all of them.
type PaymentFilter struct {
	State PaymentState
	Terms []int
}

func (pf PaymentFilter) IsEmpty() bool { return pf.State == "" }

func (pf PaymentFilter) SelectedTerms() []int {
	if len(pf.Terms) == 0 {
		return allTerms
	}
	return pf.Terms
}

// match applies the state rules on a ledger:
//   - paid: enabled, status paid and a positive amount for every selected term
//   - unpaid: disabled, or not exempt with at least one selected term at 0
//   - exempt: status exempt
func (pf PaymentFilter) match(enabled bool, status PaymentStatus, amounts []float64) bool {
	switch pf.State {
	case PaymentStatePaid:
		if !enabled || status != PaymentPaid {
			return false
		}
		for _, a := range amounts {
			if a <= 0 {
				return false
			}
		}
		return true
	case PaymentStateUnpaid:
		if !enabled {
			return true
		}
		if status == PaymentExempt {
			return false
		}
		for _, a := range amounts {
			if a == 0 {
				return true
			}
		}
		return false
	case PaymentStateExempt:
		return status == PaymentExempt
	}
	return true
}

// Filter is the typed form of the resident query parameters.
// Zero fields are not applied; all the applied ones are ANDed.
type Filter struct {
	Search       string
	Status       ActivityStatus
	Room         RoomPresence
	SpecificRoom string
	// RoomIDs are the rooms matching SpecificRoom, resolved before querying.
	RoomIDs []string
	// Impossible short-circuits the query to an empty result.
	Impossible   bool
	Gender       Gender
	Type         Type
	Cycle        Cycle
	SessionYear  string
	ArrivalFrom  time.Time // inclusive
	ArrivalTo    time.Time // exclusive
	Lodging      PaymentFilter
	Registration PaymentFilter
	Ordering     core.DBOrdering
	Page         core.Page
	// Now is the reference time of the activity status.
	Now time.Time
}

func isAll(v string) bool { return v == "" || strings.EqualFold(v, "all") }

// ParseFilter builds a Filter from a flat mapping of query parameters.
// Empty and "all" values are ignored; unknown values fail with a *core.ValidationError.
func ParseFilter(params map[string]string) (Filter, error) {
	f := Filter{Ordering: defaultOrdering}
	var flds []core.FieldError
	invalid := func(field, msg string) {
		flds = append(flds, core.FieldError{Field: field, Error: msg})
	}
	get := func(name string) string { return core.CleanString(params[name]) }

	f.Search = get(ParamSearch)

	if v := get(ParamStatus); !isAll(v) {
		switch ActivityStatus(v) {
		case StatusActive, StatusInactive:
			f.Status = ActivityStatus(v)
		default:
			invalid(ParamStatus, "status must be one of active, inactive")
		}
	}

	if v := get(ParamRoom); !isAll(v) {
		switch RoomPresence(v) {
		case WithRoom, WithoutRoom:
			f.Room = RoomPresence(v)
		default:
			invalid(ParamRoom, "room must be one of withRoom, withoutRoom")
		}
	}
	// specificRoom implies room=withRoom; combined with withoutRoom nothing can match
	if v := get(ParamSpecificRoom); !isAll(v) {
		if f.Room == WithoutRoom {
			f.Impossible = true
		} else {
			f.Room = WithRoom
			f.SpecificRoom = v
		}
	}

	if v := strings.ToLower(get(ParamGender)); !isAll(v) {
		switch Gender(v) {
		case GenderMale, GenderFemale:
			f.Gender = Gender(v)
		default:
			invalid(ParamGender, "gender must be one of male, female")
		}
	}

	if v := strings.ToLower(get(ParamType)); !isAll(v) {
		switch Type(v) {
		case TypeInternal, TypeExternal:
			f.Type = Type(v)
		default:
			invalid(ParamType, "type must be one of internal, external")
		}
	}

	if v := strings.ToLower(get(ParamSession)); !isAll(v) {
		if c, ok := sessionCycles[v]; ok {
			f.Cycle = c
		} else {
			invalid(ParamSession, "unknown session "+strconv.Quote(v))
		}
	}
	if v := get(ParamYear); !isAll(v) {
		if _, err := strconv.Atoi(v); err != nil || len(v) != 4 {
			invalid(ParamYear, "year must be a 4-digit year")
		} else {
			f.SessionYear = v
		}
	}

	if v := get(ParamStartDate); v != "" {
		if d, err := core.ParseDate(v); err != nil {
			invalid(ParamStartDate, err.Error())
		} else {
			f.ArrivalFrom = d.Time
		}
	}
	if v := get(ParamEndDate); v != "" {
		if d, err := core.ParseDate(v); err != nil {
			invalid(ParamEndDate, err.Error())
		} else {
			f.ArrivalTo = d.AddDate(0, 0, 1) // whole end day included
		}
	}
	if !f.ArrivalFrom.IsZero() && !f.ArrivalTo.IsZero() && !f.ArrivalFrom.Before(f.ArrivalTo) {
		invalid(ParamEndDate, "endDate must not be before startDate")
	}

	if v := strings.ToLower(get(ParamLodgingStatus)); !isAll(v) {
		if st, ok := parsePaymentState(v); ok {
			f.Lodging.State = st
		} else {
			invalid(ParamLodgingStatus, "lodgingStatus must be one of paid, unpaid, exempt")
		}
	}
	if v := get(ParamLodgingTerms); !isAll(v) {
		terms, err := parseTerms(v)
		if err != nil {
			invalid(ParamLodgingTerms, err.Error())
		}
		f.Lodging.Terms = terms
	}
	if v := strings.ToLower(get(ParamRegistrationStatus)); !isAll(v) {
		if st, ok := parsePaymentState(v); ok {
			f.Registration.State = st
		} else {
			invalid(ParamRegistrationStatus, "registrationStatus must be one of paid, unpaid, exempt")
		}
	}

	if v := get(ParamSortBy); v != "" {
		if col, ok := SortColumns[v]; ok {
			f.Ordering.Field = col
		} else {
			invalid(ParamSortBy, "cannot sort by "+strconv.Quote(v))
		}
	}
	switch strings.ToLower(get(ParamSortOrder)) {
	case "":
	case "asc", "1":
		f.Ordering.Ascending = true
	case "desc", "-1":
		f.Ordering.Ascending = false
	default:
		invalid(ParamSortOrder, "sortOrder must be one of asc, desc")
	}

	if v := get(ParamLimit); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 || n > maxLimit {
			invalid(ParamLimit, "limit must be between 1 and "+strconv.Itoa(maxLimit))
		} else {
			f.Page.Limit = n
			f.Page.Number = 1
		}
	}
	if v := get(ParamPage); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			invalid(ParamPage, "page must be a positive number")
		} else {
			f.Page.Number = n
			if !f.Page.InRange() {
				invalid(ParamPage, "page is out of range")
			}
		}
	}

	if len(flds) > 0 {
		return Filter{}, core.NewValidationError(nil, flds...)
	}
	return f, nil
}

func parsePaymentState(v string) (PaymentState, bool) {
	switch PaymentState(v) {
	case PaymentStatePaid, PaymentStateUnpaid, PaymentStateExempt:
		return PaymentState(v), true
	}
	// french labels
	switch v {
	case "payé", "paye":
		return PaymentStatePaid, true
	case "impayé", "impaye":
		return PaymentStateUnpaid, true
	case "dispensé", "dispense":
		return PaymentStateExempt, true
	}
	return "", false
}

// parseTerms parses a comma separated list of terms, e.g. "1,3".
func parseTerms(v string) ([]int, error) {
	seen := make(map[int]bool, 3)
	var terms []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 3 {
			return nil, errInvalidTerms
		}
		if !seen[n] {
			seen[n] = true
			terms = append(terms, n)
		}
	}
	sort.Ints(terms)
	return terms, nil
}

// Match evaluates the filter on a single Resident, mirroring the storage predicate.
func (f Filter) Match(r Resident) bool {
	if f.Impossible {
		return false
	}
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		hit := false
		for _, v := range []string{r.FirstName, r.LastName, r.Email, r.Identifier, r.CompanyName} {
			if strings.Contains(strings.ToLower(v), s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	switch f.Status {
	case StatusActive:
		if !r.IsActive(f.Now) {
			return false
		}
	case StatusInactive:
		if !r.IsInactive(f.Now) {
			return false
		}
	}
	switch f.Room {
	case WithRoom:
		if !r.RoomID.Valid {
			return false
		}
	case WithoutRoom:
		if r.RoomID.Valid {
			return false
		}
	}
	if f.SpecificRoom != "" && !containsString(f.RoomIDs, r.RoomID.String) {
		return false
	}
	if f.Gender != "" && r.Gender != f.Gender {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Cycle != "" && r.Cycle != f.Cycle {
		return false
	}
	if f.SessionYear != "" && r.SessionYear != f.SessionYear {
		return false
	}
	if !f.ArrivalFrom.IsZero() && r.ArrivalDate.Before(f.ArrivalFrom) {
		return false
	}
	if !f.ArrivalTo.IsZero() && !r.ArrivalDate.Before(f.ArrivalTo) {
		return false
	}
	if !f.Lodging.IsEmpty() {
		terms := r.Payment.Lodging.Terms()
		amounts := make([]float64, 0, 3)
		for _, t := range f.Lodging.SelectedTerms() {
			amounts = append(amounts, terms[t-1])
		}
		if !f.Lodging.match(r.Payment.Lodging.Enabled, r.Payment.Lodging.Status, amounts) {
			return false
		}
	}
	if !f.Registration.IsEmpty() {
		reg := r.Payment.Registration
		if !f.Registration.match(reg.Enabled, reg.Status, []float64{reg.AnnualPrice}) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// SortResidents sorts in place by one of the SortColumns, ties broken by id.
func SortResidents(rs []Resident, ord core.DBOrdering) {
	less := func(a, b Resident) int {
		switch ord.Field {
		case "updated_at":
			return compareTime(a.UpdatedAt, b.UpdatedAt)
		case "identifier":
			return strings.Compare(a.Identifier, b.Identifier)
		case "first_name":
			return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
		case "last_name":
			return strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
		case "email":
			return strings.Compare(a.Email, b.Email)
		case "company_name":
			return strings.Compare(strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName))
		case "session_year":
			return strings.Compare(a.SessionYear, b.SessionYear)
		case "arrival_date":
			return compareTime(a.ArrivalDate, b.ArrivalDate)
		case "departure_date":
			return compareTime(a.DepartureDate.Time, b.DepartureDate.Time)
		case "total_amount":
			switch {
			case a.TotalAmount < b.TotalAmount:
				return -1
			case a.TotalAmount > b.TotalAmount:
				return 1
			}
			return 0
		default:
			return compareTime(a.CreatedAt, b.CreatedAt)
		}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		c := less(rs[i], rs[j])
		if c == 0 {
			c = strings.Compare(rs[i].ID, rs[j].ID)
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	})
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
