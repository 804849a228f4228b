package storage

import (
	"database/sql"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/hashutil"
)

// ProposeBusinessRule inserts an unvalidated rule row: empty
// rule_description, is_validated=false.
func (s *Store) ProposeBusinessRule(project, entity, file, aiInterpretation string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO business_rules (project, entity, file, rule_description, ai_interpretation, is_validated) VALUES (?, ?, ?, '', ?, 0)`,
		project, entity, nullableString(file), aiInterpretation,
	)
	if err != nil {
		return 0, fmt.Errorf("propose business rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted business rule id: %w", err)
	}

	return id, nil
}

// ValidateBusinessRule sets description, optional user correction,
// is_validated=true, and validation_date=now.
func (s *Store) ValidateBusinessRule(id int64, description, userCorrection string) error {
	now := hashutil.Now()

	_, err := s.db.Exec(
		`UPDATE business_rules SET rule_description = ?, user_correction = ?, is_validated = 1, validation_date = ? WHERE id = ?`,
		description, nullableString(userCorrection), now, id,
	)
	if err != nil {
		return fmt.Errorf("validate business rule: %w", err)
	}

	return nil
}

// GetPendingBusinessRules returns unvalidated rules for project.
func (s *Store) GetPendingBusinessRules(project string) ([]model.BusinessRule, error) {
	return s.queryBusinessRules(project, false)
}

// GetBusinessRules returns every rule for project, validated or not.
func (s *Store) GetBusinessRules(project string) ([]model.BusinessRule, error) {
	rows, err := s.db.Query(
		`SELECT id, project, entity, file, rule_description, ai_interpretation, user_correction, is_validated, validation_date
		 FROM business_rules WHERE project = ? ORDER BY id`,
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("query business rules: %w", err)
	}
	defer rows.Close()

	return scanBusinessRules(rows)
}

func (s *Store) queryBusinessRules(project string, validated bool) ([]model.BusinessRule, error) {
	rows, err := s.db.Query(
		`SELECT id, project, entity, file, rule_description, ai_interpretation, user_correction, is_validated, validation_date
		 FROM business_rules WHERE project = ? AND is_validated = ? ORDER BY id`,
		project, validated,
	)
	if err != nil {
		return nil, fmt.Errorf("query business rules: %w", err)
	}
	defer rows.Close()

	return scanBusinessRules(rows)
}

func scanBusinessRules(rows *sql.Rows) ([]model.BusinessRule, error) {
	var out []model.BusinessRule

	for rows.Next() {
		var (
			r              model.BusinessRule
			file           sql.NullString
			userCorrection sql.NullString
			validationDate sql.NullTime
		)

		err := rows.Scan(&r.ID, &r.Project, &r.Entity, &file, &r.RuleDescription,
			&r.AIInterpretation, &userCorrection, &r.IsValidated, &validationDate)
		if err != nil {
			return nil, fmt.Errorf("scan business rule: %w", err)
		}

		r.File = file.String
		r.UserCorrection = userCorrection.String

		if validationDate.Valid {
			t := validationDate.Time
			r.ValidationDate = &t
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business rules: %w", err)
	}

	return out, nil
}
