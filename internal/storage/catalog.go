package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bolsillo/internal/core"
)

// Pockets.

func (r *SQLiteRepository) CreatePocket(ctx context.Context, p core.Pocket) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pockets (id, owner_id, name, kind, goal_cents, target_period) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, string(p.Kind), p.Goal.Cents, p.TargetPeriod)
	if err != nil {
		return fmt.Errorf("insert pocket: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetPocket(ctx context.Context, ownerID, id string) (core.Pocket, error) {
	var (
		p     core.Pocket
		cents int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, kind, goal_cents, target_period FROM pockets WHERE id = ? AND owner_id = ?`,
		id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, (*string)(&p.Kind), &cents, &p.TargetPeriod)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Pocket{}, fmt.Errorf("pocket %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Pocket{}, fmt.Errorf("get pocket: %w", err)
	}
	p.Goal = core.Money{Cents: cents}
	return p, nil
}

func (r *SQLiteRepository) PocketsByOwner(ctx context.Context, ownerID string) ([]core.Pocket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, kind, goal_cents, target_period FROM pockets WHERE owner_id = ? ORDER BY name`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("query pockets: %w", err)
	}
	defer rows.Close()

	var pockets []core.Pocket
	for rows.Next() {
		var (
			p     core.Pocket
			cents int64
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, (*string)(&p.Kind), &cents, &p.TargetPeriod); err != nil {
			return nil, fmt.Errorf("scan pocket: %w", err)
		}
		p.Goal = core.Money{Cents: cents}
		pockets = append(pockets, p)
	}
	return pockets, rows.Err()
}

func (r *SQLiteRepository) UpdatePocket(ctx context.Context, p core.Pocket) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pockets SET name = ?, kind = ?, goal_cents = ?, target_period = ? WHERE id = ? AND owner_id = ?`,
		p.Name, string(p.Kind), p.Goal.Cents, p.TargetPeriod, p.ID, p.OwnerID)
	if err != nil {
		return fmt.Errorf("update pocket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pocket %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeletePocket removes the pocket row only. Records that still reference the
// pocket are not touched; the aggregator counts them as unassigned from then
// on.
func (r *SQLiteRepository) DeletePocket(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pockets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete pocket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pocket %s: %w", id, ErrNotFound)
	}
	return nil
}

// Instruments.

func (r *SQLiteRepository) CreateInstrument(ctx context.Context, in core.Instrument) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO instruments (id, owner_id, issuer, kind, last4, display_name, credit_limit_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.OwnerID, in.Issuer, string(in.Kind), in.Last4, in.DisplayName, in.CreditLimit.Cents)
	if err != nil {
		return fmt.Errorf("insert instrument: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetInstrument(ctx context.Context, ownerID, id string) (core.Instrument, error) {
	var (
		in    core.Instrument
		cents int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, issuer, kind, last4, display_name, credit_limit_cents
		 FROM instruments WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&in.ID, &in.OwnerID, &in.Issuer, (*string)(&in.Kind), &in.Last4, &in.DisplayName, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Instrument{}, fmt.Errorf("instrument %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Instrument{}, fmt.Errorf("get instrument: %w", err)
	}
	in.CreditLimit = core.Money{Cents: cents}
	return in, nil
}

func (r *SQLiteRepository) InstrumentsByOwner(ctx context.Context, ownerID string) ([]core.Instrument, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, issuer, kind, last4, display_name, credit_limit_cents
		 FROM instruments WHERE owner_id = ? ORDER BY display_name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}
	defer rows.Close()

	var instruments []core.Instrument
	for rows.Next() {
		var (
			in    core.Instrument
			cents int64
		)
		if err := rows.Scan(&in.ID, &in.OwnerID, &in.Issuer, (*string)(&in.Kind), &in.Last4, &in.DisplayName, &cents); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		in.CreditLimit = core.Money{Cents: cents}
		instruments = append(instruments, in)
	}
	return instruments, rows.Err()
}

func (r *SQLiteRepository) DeleteInstrument(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM instruments WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete instrument: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("instrument %s: %w", id, ErrNotFound)
	}
	return nil
}

// Recurring rules. Stored only; nothing executes them.

func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	var lastExecuted any
	if !rule.LastExecutedAt.IsZero() {
		lastExecuted = rule.LastExecutedAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_rules (id, owner_id, direction, amount_cents, category, instrument,
		 frequency, day_of_month, is_active, last_executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.OwnerID, string(rule.Direction), rule.Amount.Cents, rule.Category.String(),
		rule.Instrument.String(), rule.Frequency, rule.DayOfMonth, rule.IsActive, lastExecuted)
	if err != nil {
		return fmt.Errorf("insert recurring rule: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecurringRulesByOwner(ctx context.Context, ownerID string) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, direction, amount_cents, category, instrument, frequency, day_of_month, is_active, last_executed_at
		 FROM recurring_rules WHERE owner_id = ? ORDER BY day_of_month, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		var (
			rule         core.RecurringRule
			cents        int64
			category     string
			instrument   string
			lastExecuted sql.NullTime
		)
		if err := rows.Scan(&rule.ID, &rule.OwnerID, (*string)(&rule.Direction), &cents, &category,
			&instrument, &rule.Frequency, &rule.DayOfMonth, &rule.IsActive, &lastExecuted); err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rule.Amount = core.Money{Cents: cents}
		rule.Category = core.ParseCategory(category)
		if ref, err := core.ParseInstrumentRef(instrument); err == nil {
			rule.Instrument = ref
		}
		if lastExecuted.Valid {
			rule.LastExecutedAt = lastExecuted.Time
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring rule %s: %w", id, ErrNotFound)
	}
	return nil
}
