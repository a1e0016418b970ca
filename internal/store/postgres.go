package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/model"
)

// PostgresStore implements the Store interface on PostgreSQL through
// database/sql with the pgx stdlib driver. Expense rows live as JSONB
// on the inventory row; they are only ever read and written as a unit
// with their item.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies it.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id                        TEXT PRIMARY KEY,
	number                    TEXT NOT NULL DEFAULT '',
	company_name              TEXT NOT NULL DEFAULT '',
	manager                   TEXT NOT NULL DEFAULT '',
	ceo_name                  TEXT NOT NULL DEFAULT '',
	business_number           TEXT NOT NULL DEFAULT '',
	contact                   TEXT NOT NULL DEFAULT '',
	email                     TEXT NOT NULL DEFAULT '',
	postal_code               TEXT NOT NULL DEFAULT '',
	address                   TEXT NOT NULL DEFAULT '',
	resident_number           TEXT NOT NULL DEFAULT '',
	corporate_number          TEXT NOT NULL DEFAULT '',
	business_type             TEXT NOT NULL DEFAULT '',
	business_item             TEXT NOT NULL DEFAULT '',
	business_code             TEXT NOT NULL DEFAULT '',
	supply_amount             BIGINT NOT NULL DEFAULT 0,
	tax_amount                BIGINT NOT NULL DEFAULT 0,
	first_withdrawal_month    TEXT NOT NULL DEFAULT '',
	hometax_id                TEXT NOT NULL DEFAULT '',
	hometax_password          TEXT NOT NULL DEFAULT '',
	google_drive_folder       TEXT NOT NULL DEFAULT '',
	real_estate_drive_folder  TEXT NOT NULL DEFAULT '',
	is_terminated             BOOLEAN NOT NULL DEFAULT FALSE,
	created_at                TIMESTAMPTZ NOT NULL,
	updated_at                TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trader_inventory (
	id                 TEXT PRIMARY KEY,
	client_id          TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	property_name      TEXT NOT NULL DEFAULT '',
	address            TEXT NOT NULL DEFAULT '',
	area               DOUBLE PRECISION NOT NULL DEFAULT 0,
	acquisition_value  BIGINT NOT NULL DEFAULT 0,
	other_expenses     BIGINT NOT NULL DEFAULT 0,
	transfer_value     BIGINT NOT NULL DEFAULT 0,
	transfer_income    BIGINT NOT NULL DEFAULT 0,
	acquisition_date   TEXT NOT NULL DEFAULT '',
	transfer_date      TEXT NOT NULL DEFAULT '',
	report_deadline    TEXT NOT NULL DEFAULT '',
	prepaid_income_tax BIGINT NOT NULL DEFAULT 0,
	prepaid_local_tax  BIGINT NOT NULL DEFAULT 0,
	over_85            BOOLEAN NOT NULL DEFAULT FALSE,
	comparative_tax    BOOLEAN NOT NULL DEFAULT FALSE,
	progress_stage     TEXT NOT NULL DEFAULT '',
	remarks            TEXT NOT NULL DEFAULT '',
	expenses           JSONB NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS trader_inventory_client_idx ON trader_inventory (client_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const clientColumns = `id, number, company_name, manager, ceo_name, business_number,
	contact, email, postal_code, address, resident_number, corporate_number,
	business_type, business_item, business_code, supply_amount, tax_amount,
	first_withdrawal_month, hometax_id, hometax_password, google_drive_folder,
	real_estate_drive_folder, is_terminated, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*model.Client, error) {
	var c model.Client
	err := row.Scan(
		&c.ID, &c.Number, &c.CompanyName, &c.Manager, &c.CEOName, &c.BusinessNumber,
		&c.Contact, &c.Email, &c.PostalCode, &c.Address, &c.ResidentNumber, &c.CorporateNumber,
		&c.BusinessType, &c.BusinessItem, &c.BusinessCode, &c.SupplyAmount, &c.TaxAmount,
		&c.FirstWithdrawalMonth, &c.HometaxID, &c.HometaxPassword, &c.GoogleDriveFolder,
		&c.RealEstateDriveFolder, &c.IsTerminated, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	sortClients(out)
	return out, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, clientID)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, client *model.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO clients (`+clientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		client.ID, client.Number, client.CompanyName, client.Manager, client.CEOName, client.BusinessNumber,
		client.Contact, client.Email, client.PostalCode, client.Address, client.ResidentNumber, client.CorporateNumber,
		client.BusinessType, client.BusinessItem, client.BusinessCode, client.SupplyAmount, client.TaxAmount,
		client.FirstWithdrawalMonth, client.HometaxID, client.HometaxPassword, client.GoogleDriveFolder,
		client.RealEstateDriveFolder, client.IsTerminated, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, client *model.Client) error {
	client.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `UPDATE clients SET
		number=$2, company_name=$3, manager=$4, ceo_name=$5, business_number=$6,
		contact=$7, email=$8, postal_code=$9, address=$10, resident_number=$11,
		corporate_number=$12, business_type=$13, business_item=$14, business_code=$15,
		supply_amount=$16, tax_amount=$17, first_withdrawal_month=$18, hometax_id=$19,
		hometax_password=$20, google_drive_folder=$21, real_estate_drive_folder=$22,
		is_terminated=$23, updated_at=$24
		WHERE id=$1`,
		client.ID, client.Number, client.CompanyName, client.Manager, client.CEOName, client.BusinessNumber,
		client.Contact, client.Email, client.PostalCode, client.Address, client.ResidentNumber,
		client.CorporateNumber, client.BusinessType, client.BusinessItem, client.BusinessCode,
		client.SupplyAmount, client.TaxAmount, client.FirstWithdrawalMonth, client.HometaxID,
		client.HometaxPassword, client.GoogleDriveFolder, client.RealEstateDriveFolder,
		client.IsTerminated, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("client %s: %w", client.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, clientID string) error {
	// trader_inventory rows cascade.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, clientID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

const inventoryColumns = `id, client_id, property_name, address, area,
	acquisition_value, other_expenses, transfer_value, transfer_income,
	acquisition_date, transfer_date, report_deadline,
	prepaid_income_tax, prepaid_local_tax, over_85, comparative_tax,
	progress_stage, remarks, expenses, created_at, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var (
		item                      model.InventoryItem
		acqDate, trDate, deadline string
		expensesJSON              []byte
	)
	err := row.Scan(
		&item.ID, &item.ClientID, &item.PropertyName, &item.Address, &item.Area,
		&item.AcquisitionValue, &item.OtherExpenses, &item.TransferValue, &item.TransferIncome,
		&acqDate, &trDate, &deadline,
		&item.PrepaidIncomeTax, &item.PrepaidLocalTax, &item.Over85, &item.ComparativeTax,
		&item.ProgressStage, &item.Remarks, &expensesJSON, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.AcquisitionDate, err = parseStoredDate(acqDate); err != nil {
		return nil, fmt.Errorf("acquisition_date: %w", err)
	}
	if item.TransferDate, err = parseStoredDate(trDate); err != nil {
		return nil, fmt.Errorf("transfer_date: %w", err)
	}
	if item.ReportDeadline, err = parseStoredDate(deadline); err != nil {
		return nil, fmt.Errorf("report_deadline: %w", err)
	}
	if err := json.Unmarshal(expensesJSON, &item.Expenses); err != nil {
		return nil, fmt.Errorf("expenses: %w", err)
	}
	return &item, nil
}

func parseStoredDate(s string) (dateutil.Date, error) {
	if s == "" {
		return dateutil.Date{}, nil
	}
	return dateutil.ParseFixed(s)
}

func storedDate(d dateutil.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func (s *PostgresStore) ListInventory(ctx context.Context, clientID string) ([]model.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM trader_inventory WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var out []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	sortInventory(out)
	return out, nil
}

func (s *PostgresStore) GetInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM trader_inventory WHERE id = $1`, itemID)
	item, err := scanInventoryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inventory item %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) SaveInventoryItem(ctx context.Context, item *model.InventoryItem) error {
	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.New().String()
		item.CreatedAt = now
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	expensesJSON, err := json.Marshal(item.Expenses)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO trader_inventory (`+inventoryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			property_name=EXCLUDED.property_name, address=EXCLUDED.address, area=EXCLUDED.area,
			acquisition_value=EXCLUDED.acquisition_value, other_expenses=EXCLUDED.other_expenses,
			transfer_value=EXCLUDED.transfer_value, transfer_income=EXCLUDED.transfer_income,
			acquisition_date=EXCLUDED.acquisition_date, transfer_date=EXCLUDED.transfer_date,
			report_deadline=EXCLUDED.report_deadline,
			prepaid_income_tax=EXCLUDED.prepaid_income_tax, prepaid_local_tax=EXCLUDED.prepaid_local_tax,
			over_85=EXCLUDED.over_85, comparative_tax=EXCLUDED.comparative_tax,
			progress_stage=EXCLUDED.progress_stage, remarks=EXCLUDED.remarks,
			expenses=EXCLUDED.expenses, updated_at=EXCLUDED.updated_at`,
		item.ID, item.ClientID, item.PropertyName, item.Address, item.Area,
		item.AcquisitionValue, item.OtherExpenses, item.TransferValue, item.TransferIncome,
		storedDate(item.AcquisitionDate), storedDate(item.TransferDate), storedDate(item.ReportDeadline),
		item.PrepaidIncomeTax, item.PrepaidLocalTax, item.Over85, item.ComparativeTax,
		item.ProgressStage, item.Remarks, expensesJSON, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save inventory item: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteInventoryItem(ctx context.Context, itemID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trader_inventory WHERE id = $1`, itemID); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
