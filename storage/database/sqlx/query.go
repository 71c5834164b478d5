package sqlxrepos

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	"github.com/trezcool/foyer/core/staff"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds a case-insensitive substring match on any of the columns.
func contains(term string, columns ...string) sq.Sqlizer {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return or
}

var lodgingTermColumns = [3]string{"r.lodging_term1", "r.lodging_term2", "r.lodging_term3"}

// paymentPredicate is the SQL side of PaymentFilter.match.
func paymentPredicate(pf resident.PaymentFilter, enabledCol, statusCol string, amountCols []string) sq.Sqlizer {
	switch pf.State {
	case resident.PaymentStatePaid:
		and := sq.And{sq.Eq{enabledCol: true}, sq.Eq{statusCol: string(resident.PaymentPaid)}}
		for _, col := range amountCols {
			and = append(and, sq.Gt{col: 0})
		}
		return and
	case resident.PaymentStateUnpaid:
		anyZero := make(sq.Or, 0, len(amountCols))
		for _, col := range amountCols {
			anyZero = append(anyZero, sq.Eq{col: 0})
		}
		return sq.Or{
			sq.Eq{enabledCol: false},
			sq.And{sq.NotEq{statusCol: string(resident.PaymentExempt)}, anyZero},
		}
	case resident.PaymentStateExempt:
		return sq.Eq{statusCol: string(resident.PaymentExempt)}
	}
	return nil
}

// activePredicate is the SQL side of Resident.IsActive.
func activePredicate(alias string, now time.Time) sq.Sqlizer {
	today := core.NewDate(now).Time
	return sq.And{
		sq.LtOrEq{alias + "arrival_date": today},
		sq.GtOrEq{alias + "departure_date": today},
	}
}

// residentPredicate translates a Filter into the WHERE clause of the residents query (aliased r).
// It must select exactly the residents Filter.Match accepts.
func residentPredicate(f resident.Filter) sq.Sqlizer {
	if f.Impossible {
		return sq.Expr("FALSE")
	}
	and := sq.And{}

	if f.Search != "" {
		and = append(and, contains(f.Search, "r.first_name", "r.last_name", "r.email", "r.identifier", "r.company_name"))
	}

	switch f.Status {
	case resident.StatusActive:
		and = append(and, activePredicate("r.", f.Now))
	case resident.StatusInactive:
		// NULL departures drop out of both branches, like Resident.IsInactive
		today := core.NewDate(f.Now).Time
		and = append(and, sq.Or{sq.Gt{"r.arrival_date": today}, sq.Lt{"r.departure_date": today}})
	}

	switch f.Room {
	case resident.WithRoom:
		and = append(and, sq.NotEq{"r.room_id": nil})
	case resident.WithoutRoom:
		and = append(and, sq.Eq{"r.room_id": nil})
	}
	if f.SpecificRoom != "" {
		if len(f.RoomIDs) == 0 {
			return sq.Expr("FALSE")
		}
		and = append(and, sq.Eq{"r.room_id": f.RoomIDs})
	}

	if f.Gender != "" {
		and = append(and, sq.Eq{"r.gender": string(f.Gender)})
	}
	if f.Type != "" {
		and = append(and, sq.Eq{"r.type": string(f.Type)})
	}
	if f.Cycle != "" {
		and = append(and, sq.Eq{"r.cycle": string(f.Cycle)})
	}
	if f.SessionYear != "" {
		and = append(and, sq.Eq{"r.session_year": f.SessionYear})
	}
	if !f.ArrivalFrom.IsZero() {
		and = append(and, sq.GtOrEq{"r.arrival_date": f.ArrivalFrom})
	}
	if !f.ArrivalTo.IsZero() {
		and = append(and, sq.Lt{"r.arrival_date": f.ArrivalTo})
	}

	if !f.Lodging.IsEmpty() {
		cols := make([]string, 0, 3)
		for _, t := range f.Lodging.SelectedTerms() {
			cols = append(cols, lodgingTermColumns[t-1])
		}
		and = append(and, paymentPredicate(f.Lodging, "r.lodging_enabled", "r.lodging_status", cols))
	}
	if !f.Registration.IsEmpty() {
		and = append(and, paymentPredicate(
			f.Registration, "r.registration_enabled", "r.registration_status", []string{"r.registration_annual_price"},
		))
	}
	return and
}

// orderBy mirrors resident.SortResidents: NULLs sort as the lowest value and ties are broken by id.
func orderBy(ord core.DBOrdering) []string {
	field := ord.Field
	if !isSortColumn(field) {
		field = "created_at"
	}
	if ord.Ascending {
		return []string{"r." + field + " ASC NULLS FIRST", "r.id ASC"}
	}
	return []string{"r." + field + " DESC NULLS LAST", "r.id DESC"}
}

func isSortColumn(col string) bool {
	for _, c := range resident.SortColumns {
		if c == col {
			return true
		}
	}
	return false
}

const occupiedRoomExpr = "EXISTS (SELECT 1 FROM residents o WHERE o.room_id = rooms.id)"

func roomPredicate(f room.QueryFilter) sq.Sqlizer {
	and := sq.And{}
	if f.Search != "" {
		and = append(and, contains(f.Search, "number", "description"))
	}
	if f.Gender != "" {
		and = append(and, sq.Eq{"gender": f.Gender})
	}
	if f.Floor != 0 {
		and = append(and, sq.Eq{"floor": f.Floor})
	}
	switch room.Status(f.Status) {
	case room.StatusOccupied:
		and = append(and, sq.Expr(occupiedRoomExpr))
	case room.StatusAvailable:
		and = append(and, sq.Expr("NOT "+occupiedRoomExpr))
	}
	return and
}

func staffPredicate(f staff.QueryFilter) sq.Sqlizer {
	and := sq.And{}
	if f.Search != "" {
		and = append(and, contains(f.Search, "first_name", "last_name", "email", "phone", "employee_id"))
	}
	if f.Position != "" {
		and = append(and, sq.Expr("LOWER(position) = LOWER(?)", f.Position))
	}
	if f.Status != "" {
		and = append(and, sq.Eq{"status": f.Status})
	}
	return and
}
