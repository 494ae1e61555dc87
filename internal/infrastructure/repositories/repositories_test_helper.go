package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createInvestorTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE investors (
		id TEXT PRIMARY KEY,
		external_profile_id TEXT NOT NULL UNIQUE,
		dct_wallet TEXT,
		telegram_chat_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createFundCycleTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE fund_cycles (
		id TEXT PRIMARY KEY,
		cycle_month INTEGER NOT NULL,
		cycle_year INTEGER NOT NULL,
		status TEXT NOT NULL,
		opened_at DATETIME NOT NULL,
		closed_at DATETIME,
		profit_total TEXT,
		investor_payout_total TEXT,
		reinvested_total TEXT,
		performance_fee_total TEXT,
		payout_summary TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	// Same single-active-cycle constraint the postgres schema carries.
	mustExec(t, db, `CREATE UNIQUE INDEX idx_fund_cycles_single_active
		ON fund_cycles (status) WHERE status = 'active';`)
}

func createDepositTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE deposits (
		id TEXT PRIMARY KEY,
		investor_id TEXT NOT NULL,
		cycle_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		deposit_type TEXT NOT NULL,
		notes TEXT,
		created_at DATETIME
	);`)
}

func createWithdrawalTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE withdrawals (
		id TEXT PRIMARY KEY,
		investor_id TEXT NOT NULL,
		cycle_id TEXT NOT NULL,
		amount_requested TEXT NOT NULL,
		status TEXT NOT NULL,
		notice_expires_at DATETIME NOT NULL,
		requested_at DATETIME NOT NULL,
		fulfilled_at DATETIME,
		net_amount TEXT,
		reinvested_amount TEXT,
		admin_notes TEXT,
		onchain_tx_hash TEXT,
		notice_alerted_at DATETIME,
		updated_at DATETIME
	);`)
}

func createLedgerTables(t *testing.T, db *gorm.DB) {
	createInvestorTable(t, db)
	createFundCycleTable(t, db)
	createDepositTable(t, db)
	createWithdrawalTable(t, db)
}
