package store

import (
	"context"
	"database/sql"
	"errors"
)

type Tag struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id"`
	NoteCount int    `json:"note_count"`
	Level     int    `json:"level"`
}

// maxTagDepth bounds the recursive hierarchy walk. A cyclic parent chain
// would otherwise never terminate; anything deeper than this is treated as
// unreachable.
const maxTagDepth = 64

func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.queryContext(ctx, `
		SELECT tags.id, tags.name, tags.parent_id, COUNT(note_tags.note_id)
		FROM tags
		LEFT JOIN note_tags ON note_tags.tag_id = tags.id
		GROUP BY tags.id
		ORDER BY tags.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		t, err := scanTag(rows, false)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, classify(rows.Err())
}

// TagHierarchy returns every tag reachable from a root annotated with its
// depth, ordered by (level, name).
func (s *Store) TagHierarchy(ctx context.Context) ([]Tag, error) {
	rows, err := s.queryContext(ctx, `
		WITH RECURSIVE tag_tree(id, name, parent_id, level) AS (
			SELECT id, name, parent_id, 0 FROM tags WHERE parent_id IS NULL
			UNION ALL
			SELECT tags.id, tags.name, tags.parent_id, tag_tree.level + 1
			FROM tags
			JOIN tag_tree ON tags.parent_id = tag_tree.id
			WHERE tag_tree.level < ?
		)
		SELECT tag_tree.id, tag_tree.name, tag_tree.parent_id, tag_tree.level, COUNT(note_tags.note_id)
		FROM tag_tree
		LEFT JOIN note_tags ON note_tags.tag_id = tag_tree.id
		GROUP BY tag_tree.id
		ORDER BY tag_tree.level, tag_tree.name`, maxTagDepth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		t, err := scanTag(rows, true)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, classify(rows.Err())
}

// ReparentTag moves a tag under a new parent, or to the root when parentID
// is nil. Self-parenting and reparenting that would close a cycle are
// rejected up front.
func (s *Store) ReparentTag(ctx context.Context, id int64, parentID *int64) ([]Event, error) {
	if parentID != nil {
		if *parentID == id {
			return nil, validationf("tag cannot be its own parent")
		}
		cyclic, err := s.wouldCycle(ctx, id, *parentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, validationf("reparenting tag %d under %d would create a cycle", id, *parentID)
		}
	}

	res, err := s.execContext(ctx, "UPDATE tags SET parent_id = ? WHERE id = ?", nullableID(parentID), id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, classify(err)
	}
	if affected == 0 {
		return nil, &NotFoundError{Kind: "tag", ID: id}
	}

	var name string
	var count int
	err = s.queryRowContext(ctx, `
		SELECT tags.name, COUNT(note_tags.note_id)
		FROM tags
		LEFT JOIN note_tags ON note_tags.tag_id = tags.id
		WHERE tags.id = ?
		GROUP BY tags.id`, id).Scan(&name, &count)
	if err != nil {
		return nil, classify(err)
	}
	return []Event{tagEvent(EventTagUpdated, name, count)}, nil
}

// wouldCycle reports whether id is an ancestor of candidate parent.
func (s *Store) wouldCycle(ctx context.Context, id, parentID int64) (bool, error) {
	current := parentID
	for depth := 0; depth < maxTagDepth; depth++ {
		if current == id {
			return true, nil
		}
		var next sql.NullInt64
		err := s.queryRowContext(ctx, "SELECT parent_id FROM tags WHERE id = ?", current).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return false, &NotFoundError{Kind: "tag", ID: current}
		}
		if err != nil {
			return false, classify(err)
		}
		if !next.Valid {
			return false, nil
		}
		current = next.Int64
	}
	return true, nil
}

func scanTag(rows *sql.Rows, withLevel bool) (Tag, error) {
	var t Tag
	var parent sql.NullInt64
	var err error
	if withLevel {
		err = rows.Scan(&t.ID, &t.Name, &parent, &t.Level, &t.NoteCount)
	} else {
		err = rows.Scan(&t.ID, &t.Name, &parent, &t.NoteCount)
	}
	if err != nil {
		return Tag{}, classify(err)
	}
	if parent.Valid {
		pid := parent.Int64
		t.ParentID = &pid
	}
	return t, nil
}
