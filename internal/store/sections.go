package store

import (
	"context"
	"strings"
)

type Section struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

func (s *Store) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.queryContext(ctx, `
		SELECT id, name, order_index, created_at, updated_at
		FROM sections
		ORDER BY order_index, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, classify(err)
		}
		sections = append(sections, sec)
	}
	return sections, classify(rows.Err())
}

func (s *Store) CreateSection(ctx context.Context, name string, orderIndex int) (*Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("section name is required")
	}
	now := s.now()
	res, err := s.execContext(ctx, `
		INSERT INTO sections(name, order_index, created_at, updated_at)
		VALUES(?, ?, ?, ?)`, name, orderIndex, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, classify(err)
	}
	return &Section{ID: id, Name: name, OrderIndex: orderIndex, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) UpdateSection(ctx context.Context, id int64, name string, orderIndex int) (*Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("section name is required")
	}
	res, err := s.execContext(ctx, `
		UPDATE sections SET name = ?, order_index = ?, updated_at = ?
		WHERE id = ?`, name, orderIndex, s.now(), id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, classify(err)
	}
	if affected == 0 {
		return nil, &NotFoundError{Kind: "section", ID: id}
	}
	var sec Section
	err = s.queryRowContext(ctx, `
		SELECT id, name, order_index, created_at, updated_at
		FROM sections WHERE id = ?`, id).
		Scan(&sec.ID, &sec.Name, &sec.OrderIndex, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &sec, nil
}

// DeleteSection removes the section; the notes FK sets dependent notes'
// section_id to null.
func (s *Store) DeleteSection(ctx context.Context, id int64) error {
	res, err := s.execContext(ctx, "DELETE FROM sections WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return &NotFoundError{Kind: "section", ID: id}
	}
	return nil
}
