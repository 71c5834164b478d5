package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
)

var residentColumns = []string{
	"r.id", "r.identifier", "r.first_name", "r.last_name", "r.email", "r.phone", "r.alt_phone", "r.national_id",
	"r.gender", "r.type", "r.cycle", "r.session_year", "r.company_name", "r.arrival_date", "r.departure_date",
	"r.room_id", "COALESCE(rm.number, '') AS room_number",
	"r.lodging_enabled", "r.lodging_status", "r.lodging_term1", "r.lodging_term2", "r.lodging_term3",
	"r.registration_enabled", "r.registration_status", "r.registration_annual_price",
	"r.total_amount", "r.created_at", "r.updated_at",
}

type residentRow struct {
	ID                      string      `db:"id"`
	Identifier              string      `db:"identifier"`
	FirstName               string      `db:"first_name"`
	LastName                string      `db:"last_name"`
	Email                   string      `db:"email"`
	Phone                   string      `db:"phone"`
	AltPhone                string      `db:"alt_phone"`
	NationalID              string      `db:"national_id"`
	Gender                  string      `db:"gender"`
	Type                    string      `db:"type"`
	Cycle                   string      `db:"cycle"`
	SessionYear             string      `db:"session_year"`
	CompanyName             string      `db:"company_name"`
	ArrivalDate             time.Time   `db:"arrival_date"`
	DepartureDate           null.Time   `db:"departure_date"`
	RoomID                  null.String `db:"room_id"`
	RoomNumber              string      `db:"room_number"`
	LodgingEnabled          bool        `db:"lodging_enabled"`
	LodgingStatus           string      `db:"lodging_status"`
	LodgingTerm1            float64     `db:"lodging_term1"`
	LodgingTerm2            float64     `db:"lodging_term2"`
	LodgingTerm3            float64     `db:"lodging_term3"`
	RegistrationEnabled     bool        `db:"registration_enabled"`
	RegistrationStatus      string      `db:"registration_status"`
	RegistrationAnnualPrice float64     `db:"registration_annual_price"`
	TotalAmount             float64     `db:"total_amount"`
	CreatedAt               time.Time   `db:"created_at"`
	UpdatedAt               time.Time   `db:"updated_at"`
}

func (row residentRow) toResident() resident.Resident {
	r := resident.Resident{
		ID:          row.ID,
		Identifier:  row.Identifier,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		Phone:       row.Phone,
		AltPhone:    row.AltPhone,
		NationalID:  row.NationalID,
		Gender:      resident.Gender(row.Gender),
		Type:        resident.Type(row.Type),
		Cycle:       resident.Cycle(row.Cycle),
		SessionYear: row.SessionYear,
		CompanyName: row.CompanyName,
		ArrivalDate: core.NewDate(row.ArrivalDate).Time,
		RoomID:      row.RoomID,
		RoomNumber:  row.RoomNumber,
		Payment: resident.Payment{
			Lodging: resident.Lodging{
				Enabled:    row.LodgingEnabled,
				Status:     resident.PaymentStatus(row.LodgingStatus),
				Term1Price: row.LodgingTerm1,
				Term2Price: row.LodgingTerm2,
				Term3Price: row.LodgingTerm3,
			},
			Registration: resident.Registration{
				Enabled:     row.RegistrationEnabled,
				Status:      resident.PaymentStatus(row.RegistrationStatus),
				AnnualPrice: row.RegistrationAnnualPrice,
			},
		},
		TotalAmount: row.TotalAmount,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.DepartureDate.Valid {
		r.DepartureDate = null.TimeFrom(core.NewDate(row.DepartureDate.Time).Time)
	}
	return r
}

func residentValues(r resident.Resident) map[string]interface{} {
	return map[string]interface{}{
		"first_name":                r.FirstName,
		"last_name":                 r.LastName,
		"email":                     r.Email,
		"phone":                     r.Phone,
		"alt_phone":                 r.AltPhone,
		"national_id":               r.NationalID,
		"gender":                    string(r.Gender),
		"type":                      string(r.Type),
		"cycle":                     string(r.Cycle),
		"session_year":              r.SessionYear,
		"company_name":              r.CompanyName,
		"arrival_date":              r.ArrivalDate,
		"departure_date":            r.DepartureDate,
		"room_id":                   r.RoomID,
		"lodging_enabled":           r.Payment.Lodging.Enabled,
		"lodging_status":            string(r.Payment.Lodging.Status),
		"lodging_term1":             r.Payment.Lodging.Term1Price,
		"lodging_term2":             r.Payment.Lodging.Term2Price,
		"lodging_term3":             r.Payment.Lodging.Term3Price,
		"registration_enabled":      r.Payment.Registration.Enabled,
		"registration_status":       string(r.Payment.Registration.Status),
		"registration_annual_price": r.Payment.Registration.AnnualPrice,
		"total_amount":              r.TotalAmount,
		"updated_at":                r.UpdatedAt,
	}
}

func selectResidents() sq.SelectBuilder {
	return psql.Select(residentColumns...).From("residents r").LeftJoin("rooms rm ON rm.id = r.room_id")
}

func getResident(ctx context.Context, q queryer, id string) (resident.Resident, error) {
	var row residentRow
	err := getx(ctx, q, &row, selectResidents().Where(sq.Eq{"r.id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return resident.Resident{}, core.NewNotFoundError("resident", id)
	}
	if err != nil {
		return resident.Resident{}, errors.Wrap(err, "selecting resident")
	}
	return row.toResident(), nil
}

// checkRoom locks the resident's room and verifies it has a free bed. Must run in the saving transaction.
func checkRoom(ctx context.Context, tx *sqlx.Tx, r resident.Resident) error {
	if !r.RoomID.Valid {
		return nil
	}
	capacity, err := lockRoom(ctx, tx, r.RoomID.String)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewNotFoundError("room", r.RoomID.String)
	}
	if err != nil {
		return errors.Wrap(err, "locking room")
	}
	var occupied int
	err = tx.GetContext(ctx, &occupied,
		"SELECT COUNT(*) FROM residents WHERE room_id = $1 AND id <> $2", r.RoomID.String, r.ID,
	)
	if err != nil {
		return errors.Wrap(err, "counting occupants")
	}
	if occupied >= capacity {
		return room.ErrCapacityExceeded
	}
	return nil
}

type residentRepository struct {
	db *sqlx.DB
}

var _ resident.Repository = (*residentRepository)(nil) // interface compliance check

func NewResidentRepository(db *sqlx.DB) resident.Repository {
	return &residentRepository{db: db}
}

func (repo *residentRepository) CheckResidentUniqueness(ctx context.Context, r resident.Resident) error {
	or := sq.Or{sq.Expr("LOWER(email) = LOWER(?)", r.Email)}
	if r.Phone != "" {
		or = append(or, sq.Eq{"phone": r.Phone})
	}
	if r.AltPhone != "" {
		or = append(or, sq.Eq{"alt_phone": r.AltPhone})
	}
	if r.NationalID != "" {
		or = append(or, sq.Eq{"national_id": r.NationalID})
	}

	var rows []struct {
		Email      string `db:"email"`
		Phone      string `db:"phone"`
		AltPhone   string `db:"alt_phone"`
		NationalID string `db:"national_id"`
	}
	stmt := psql.Select("email", "phone", "alt_phone", "national_id").
		From("residents").
		Where(sq.And{sq.NotEq{"id": r.ID}, or})
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return errors.Wrap(err, "checking resident uniqueness")
	}
	for _, other := range rows {
		switch {
		case strings.EqualFold(other.Email, r.Email):
			return resident.ErrEmailExists
		case r.Phone != "" && other.Phone == r.Phone:
			return resident.ErrPhoneExists
		case r.AltPhone != "" && other.AltPhone == r.AltPhone:
			return resident.ErrAltPhoneExists
		case r.NationalID != "" && other.NationalID == r.NationalID:
			return resident.ErrNationalIDExists
		}
	}
	return nil
}

func (repo *residentRepository) CreateResident(ctx context.Context, r resident.Resident) (resident.Resident, error) {
	var created resident.Resident
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := checkRoom(ctx, tx, r); err != nil {
			return err
		}
		vals := residentValues(r)
		vals["id"] = r.ID
		vals["identifier"] = r.Identifier
		vals["created_at"] = r.CreatedAt
		if _, err := execx(ctx, tx, psql.Insert("residents").SetMap(vals)); err != nil {
			return translate(err, "inserting resident")
		}
		var err error
		created, err = getResident(ctx, tx, r.ID)
		return err
	})
	return created, err
}

func (repo *residentRepository) GetResidentByID(ctx context.Context, id string) (resident.Resident, error) {
	return getResident(ctx, repo.db, id)
}

func (repo *residentRepository) QueryResidents(ctx context.Context, filter resident.Filter) ([]resident.Resident, int, error) {
	where := residentPredicate(filter)

	var total int
	if err := getx(ctx, repo.db, &total, psql.Select("COUNT(*)").From("residents r").Where(where)); err != nil {
		return nil, 0, errors.Wrap(err, "counting residents")
	}

	stmt := selectResidents().Where(where).OrderBy(orderBy(filter.Ordering)...)
	if !filter.Page.IsZero() {
		stmt = stmt.Limit(uint64(filter.Page.Limit)).Offset(uint64(filter.Page.Offset()))
	}
	var rows []residentRow
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return nil, 0, errors.Wrap(err, "selecting residents")
	}

	residents := make([]resident.Resident, len(rows))
	for i, row := range rows {
		residents[i] = row.toResident()
	}
	return residents, total, nil
}

func (repo *residentRepository) UpdateResident(ctx context.Context, r resident.Resident) (resident.Resident, error) {
	var updated resident.Resident
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := checkRoom(ctx, tx, r); err != nil {
			return err
		}
		res, err := execx(ctx, tx, psql.Update("residents").SetMap(residentValues(r)).Where(sq.Eq{"id": r.ID}))
		if err != nil {
			return translate(err, "updating resident")
		}
		if ok, err := affectedOne(res); err != nil {
			return err
		} else if !ok {
			return core.NewNotFoundError("resident", r.ID)
		}
		updated, err = getResident(ctx, tx, r.ID)
		return err
	})
	return updated, err
}

func (repo *residentRepository) DeleteResident(ctx context.Context, id string) error {
	res, err := execx(ctx, repo.db, psql.Delete("residents").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting resident")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewNotFoundError("resident", id)
	}
	return nil
}
