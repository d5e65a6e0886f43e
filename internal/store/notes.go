package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
)

type Note struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	ConversationID string   `json:"conversation_id"`
	ColorHex       string   `json:"color_hex"`
	SectionID      *int64   `json:"section_id"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
	Tags           []string `json:"tags"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type NotePage struct {
	Notes      []Note     `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

// NoteInput carries caller-supplied note fields for create and full update.
type NoteInput struct {
	Title          string
	Content        string
	ConversationID string
	ColorHex       string
	SectionID      *int64
	Tags           []string
}

const maxTitleLength = 100

var colorHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const noteColumns = "notes.id, notes.title, notes.content, notes.conversation_id, notes.color_hex, notes.section_id, notes.created_at, notes.updated_at"

func scanNote(sc rowScanner) (Note, error) {
	var n Note
	var color sql.NullString
	var section sql.NullInt64
	err := sc.Scan(&n.ID, &n.Title, &n.Content, &n.ConversationID, &color, &section, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, err
	}
	if color.Valid {
		n.ColorHex = color.String
	}
	if section.Valid {
		id := section.Int64
		n.SectionID = &id
	}
	n.Tags = []string{}
	return n, nil
}

// ListNotes runs the filtered listing: the page fetch, the matching-total
// count, and the batched tag attachment, all inside one transaction so the
// count and the page see the same snapshot.
func (s *Store) ListNotes(ctx context.Context, f NoteFilter) (*NotePage, error) {
	page := f.page()
	limit := f.limit()
	where, args := f.whereClause()

	tx, start, err := s.beginTx(ctx, "list-notes")
	if err != nil {
		return nil, err
	}
	defer s.rollbackTx(tx, "list-notes", start)

	query := "SELECT " + noteColumns + " FROM notes" + where + f.orderBy() + " LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), limit, (page-1)*limit)
	rows, err := tx.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, classify(err)
	}
	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, classify(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, classify(err)
	}
	rows.Close()

	// Empty page: skip the count and the tag query entirely. An IN clause
	// over zero note ids would not even be valid SQL.
	if len(notes) == 0 {
		if err := s.commitTx(tx, "list-notes", start); err != nil {
			return nil, err
		}
		return &NotePage{
			Notes:      notes,
			Pagination: Pagination{Total: 0, Page: page, Limit: limit, TotalPages: 0},
		}, nil
	}

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes"+where, args...).Scan(&total); err != nil {
		return nil, classify(err)
	}

	ids := make([]int64, len(notes))
	byID := make(map[int64]*Note, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
		byID[notes[i].ID] = &notes[i]
	}
	if err := attachTags(ctx, tx, ids, byID); err != nil {
		return nil, err
	}

	if err := s.commitTx(tx, "list-notes", start); err != nil {
		return nil, err
	}

	return &NotePage{
		Notes: notes,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

func attachTags(ctx context.Context, tx *sql.Tx, ids []int64, byID map[int64]*Note) error {
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx, `
		SELECT note_tags.note_id, tags.name
		FROM note_tags
		JOIN tags ON tags.id = note_tags.tag_id
		WHERE note_tags.note_id IN (`+placeholders+`)
		ORDER BY tags.name`, args...)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var noteID int64
		var name string
		if err := rows.Scan(&noteID, &name); err != nil {
			return classify(err)
		}
		if n, ok := byID[noteID]; ok {
			n.Tags = append(n.Tags, name)
		}
	}
	return classify(rows.Err())
}

func (s *Store) GetNote(ctx context.Context, id int64) (*Note, error) {
	n, err := scanNote(s.queryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE notes.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "note", ID: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	tags, err := s.noteTags(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Tags = tags
	return &n, nil
}

func (s *Store) noteTags(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.queryContext(ctx, `
		SELECT tags.name FROM note_tags
		JOIN tags ON tags.id = note_tags.tag_id
		WHERE note_tags.note_id = ?
		ORDER BY tags.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classify(err)
		}
		tags = append(tags, name)
	}
	return tags, classify(rows.Err())
}

func validateTitle(title string) error {
	if title == "" {
		return validationf("title is required")
	}
	if len(title) > maxTitleLength {
		return validationf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateColor(color string) error {
	if !colorHexPattern.MatchString(color) {
		return validationf("color_hex must be a 7-character hex color like #aabbcc")
	}
	return nil
}

// CreateNote inserts the note, resolves each tag name by find-or-create, and
// links them. The returned events carry the created note, a conversation
// event when this is the conversation's first note, and one event per tag.
func (s *Store) CreateNote(ctx context.Context, in NoteInput) (*Note, []Event, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, nil, err
	}
	if in.Content == "" {
		return nil, nil, validationf("content is required")
	}
	conversation := strings.TrimSpace(in.ConversationID)
	if conversation == "" {
		conversation = DefaultConversation
	}
	color := strings.TrimSpace(in.ColorHex)
	if color == "" {
		color = DefaultColor()
	}
	if err := validateColor(color); err != nil {
		return nil, nil, err
	}

	tx, start, err := s.beginTx(ctx, "create-note")
	if err != nil {
		return nil, nil, err
	}
	defer s.rollbackTx(tx, "create-note", start)

	var existing int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE conversation_id = ?", conversation).Scan(&existing); err != nil {
		return nil, nil, classify(err)
	}

	now := s.now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO notes(title, content, conversation_id, color_hex, section_id, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		title, in.Content, conversation, color, nullableID(in.SectionID), now, now)
	if err != nil {
		return nil, nil, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, nil, classify(err)
	}

	note := Note{
		ID:             id,
		Title:          title,
		Content:        in.Content,
		ConversationID: conversation,
		ColorHex:       color,
		SectionID:      in.SectionID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Tags:           []string{},
	}

	var tagEvents []Event
	for _, name := range dedupeTags(in.Tags) {
		created, count, err := linkTag(ctx, tx, id, name)
		if err != nil {
			return nil, nil, err
		}
		note.Tags = append(note.Tags, name)
		if created {
			tagEvents = append(tagEvents, tagEvent(EventTagCreated, name, count))
		} else {
			tagEvents = append(tagEvents, tagEvent(EventTagUpdated, name, count))
		}
	}

	if err := s.commitTx(tx, "create-note", start); err != nil {
		return nil, nil, err
	}

	events := []Event{noteEvent(EventNoteCreated, &note)}
	if existing == 0 {
		events = append(events, conversationEvent(EventConversationCreated, conversation, 1))
	}
	events = append(events, tagEvents...)
	return &note, events, nil
}

// linkTag finds or creates the named tag, links it to the note, and reports
// whether the tag is new along with its note count after linking.
func linkTag(ctx context.Context, tx *sql.Tx, noteID int64, name string) (bool, int, error) {
	res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags(name) VALUES(?)", name)
	if err != nil {
		return false, 0, classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, classify(err)
	}
	created := affected == 1
	var tagID int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID); err != nil {
		return false, 0, classify(err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO note_tags(note_id, tag_id) VALUES(?, ?)", noteID, tagID); err != nil {
		return false, 0, classify(err)
	}
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM note_tags WHERE tag_id = ?", tagID).Scan(&count); err != nil {
		return false, 0, classify(err)
	}
	return created, count, nil
}

// UpdateNote replaces the note's fields and its whole tag set. An empty tag
// list clears every link.
func (s *Store) UpdateNote(ctx context.Context, id int64, in NoteInput) (*Note, []Event, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, nil, err
	}
	if in.Content == "" {
		return nil, nil, validationf("content is required")
	}
	conversation := strings.TrimSpace(in.ConversationID)
	if conversation == "" {
		conversation = DefaultConversation
	}
	color := strings.TrimSpace(in.ColorHex)
	if color == "" {
		color = DefaultColor()
	}
	if err := validateColor(color); err != nil {
		return nil, nil, err
	}

	tx, start, err := s.beginTx(ctx, "update-note")
	if err != nil {
		return nil, nil, err
	}
	defer s.rollbackTx(tx, "update-note", start)

	prev, prevTags, err := readNoteTx(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, conversation_id = ?, color_hex = ?, section_id = ?, updated_at = ?
		WHERE id = ?`,
		title, in.Content, conversation, color, nullableID(in.SectionID), now, id); err != nil {
		return nil, nil, classify(err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", id); err != nil {
		return nil, nil, classify(err)
	}

	note := Note{
		ID:             id,
		Title:          title,
		Content:        in.Content,
		ConversationID: conversation,
		ColorHex:       color,
		SectionID:      in.SectionID,
		CreatedAt:      prev.CreatedAt,
		UpdatedAt:      now,
		Tags:           []string{},
	}

	newTags := dedupeTags(in.Tags)
	var tagEvents []Event
	seen := make(map[string]bool, len(newTags))
	for _, name := range newTags {
		created, count, err := linkTag(ctx, tx, id, name)
		if err != nil {
			return nil, nil, err
		}
		note.Tags = append(note.Tags, name)
		seen[name] = true
		if created {
			tagEvents = append(tagEvents, tagEvent(EventTagCreated, name, count))
		} else {
			tagEvents = append(tagEvents, tagEvent(EventTagUpdated, name, count))
		}
	}
	// Tags that lost this note still need a refreshed count.
	for _, name := range prevTags {
		if seen[name] {
			continue
		}
		count, err := tagCountTx(ctx, tx, name)
		if err != nil {
			return nil, nil, err
		}
		tagEvents = append(tagEvents, tagEvent(EventTagUpdated, name, count))
	}

	var convEvents []Event
	if prev.ConversationID != conversation {
		for _, conv := range []string{prev.ConversationID, conversation} {
			var count int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE conversation_id = ?", conv).Scan(&count); err != nil {
				return nil, nil, classify(err)
			}
			convEvents = append(convEvents, conversationEvent(EventConversationUpdated, conv, count))
		}
	}

	if err := s.commitTx(tx, "update-note", start); err != nil {
		return nil, nil, err
	}

	events := append([]Event{noteEvent(EventNoteUpdated, &note)}, convEvents...)
	events = append(events, tagEvents...)
	return &note, events, nil
}

// UpdateNoteContent is the narrow update used by the tool-call surface: it
// touches content and updated_at only.
func (s *Store) UpdateNoteContent(ctx context.Context, id int64, content string) (*Note, []Event, error) {
	if content == "" {
		return nil, nil, validationf("content is required")
	}
	now := s.now()
	res, err := s.execContext(ctx, "UPDATE notes SET content = ?, updated_at = ? WHERE id = ?", content, now, id)
	if err != nil {
		return nil, nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, classify(err)
	}
	if affected == 0 {
		return nil, nil, &NotFoundError{Kind: "note", ID: id}
	}
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return note, []Event{noteEvent(EventNoteUpdated, note)}, nil
}

// DeleteNote removes the note and reports events carrying the post-delete
// aggregate counts. The note and its tags are read before deletion; the
// counts cannot be reconstructed afterwards.
func (s *Store) DeleteNote(ctx context.Context, id int64) ([]Event, error) {
	tx, start, err := s.beginTx(ctx, "delete-note")
	if err != nil {
		return nil, err
	}
	defer s.rollbackTx(tx, "delete-note", start)

	prev, prevTags, err := readNoteTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	prev.Tags = prevTags

	if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return nil, classify(err)
	}

	var convCount int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE conversation_id = ?", prev.ConversationID).Scan(&convCount); err != nil {
		return nil, classify(err)
	}

	events := []Event{
		noteEvent(EventNoteDeleted, prev),
		conversationEvent(EventConversationUpdated, prev.ConversationID, convCount),
	}
	for _, name := range prevTags {
		count, err := tagCountTx(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		events = append(events, tagEvent(EventTagUpdated, name, count))
	}

	if err := s.commitTx(tx, "delete-note", start); err != nil {
		return nil, err
	}
	return events, nil
}

// SetNoteColor updates color_hex and updated_at only.
func (s *Store) SetNoteColor(ctx context.Context, id int64, color string) (*Note, []Event, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil, nil, validationf("color_hex is required")
	}
	if err := validateColor(color); err != nil {
		return nil, nil, err
	}
	res, err := s.execContext(ctx, "UPDATE notes SET color_hex = ?, updated_at = ? WHERE id = ?", color, s.now(), id)
	if err != nil {
		return nil, nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, classify(err)
	}
	if affected == 0 {
		return nil, nil, &NotFoundError{Kind: "note", ID: id}
	}
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return note, []Event{noteEvent(EventNoteUpdated, note)}, nil
}

// SetNotesColor applies the color to every listed note inside a single
// transaction. Ids that match no row are silently skipped; any failure rolls
// back the whole batch.
func (s *Store) SetNotesColor(ctx context.Context, ids []int64, color string) ([]Note, []Event, error) {
	if len(ids) == 0 {
		return nil, nil, validationf("noteIds is required")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		return nil, nil, validationf("color_hex is required")
	}
	if err := validateColor(color); err != nil {
		return nil, nil, err
	}

	tx, start, err := s.beginTx(ctx, "bulk-color")
	if err != nil {
		return nil, nil, err
	}
	defer s.rollbackTx(tx, "bulk-color", start)

	now := s.now()
	var updated []Note
	var events []Event
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, "UPDATE notes SET color_hex = ?, updated_at = ? WHERE id = ?", color, now, id)
		if err != nil {
			return nil, nil, classify(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, nil, classify(err)
		}
		if affected == 0 {
			continue
		}
		note, tags, err := readNoteTx(ctx, tx, id)
		if err != nil {
			return nil, nil, err
		}
		note.Tags = tags
		updated = append(updated, *note)
		events = append(events, noteEvent(EventNoteUpdated, note))
	}

	if err := s.commitTx(tx, "bulk-color", start); err != nil {
		return nil, nil, err
	}
	return updated, events, nil
}

// SetNoteSection moves the note into a section, or out of any section when
// sectionID is nil.
func (s *Store) SetNoteSection(ctx context.Context, id int64, sectionID *int64) (*Note, []Event, error) {
	res, err := s.execContext(ctx, "UPDATE notes SET section_id = ?, updated_at = ? WHERE id = ?", nullableID(sectionID), s.now(), id)
	if err != nil {
		return nil, nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, classify(err)
	}
	if affected == 0 {
		return nil, nil, &NotFoundError{Kind: "note", ID: id}
	}
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return note, []Event{noteEvent(EventNoteUpdated, note)}, nil
}

func readNoteTx(ctx context.Context, tx *sql.Tx, id int64) (*Note, []string, error) {
	var n Note
	var color sql.NullString
	var section sql.NullInt64
	err := tx.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE notes.id = ?", id).
		Scan(&n.ID, &n.Title, &n.Content, &n.ConversationID, &color, &section, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, &NotFoundError{Kind: "note", ID: id}
	}
	if err != nil {
		return nil, nil, classify(err)
	}
	if color.Valid {
		n.ColorHex = color.String
	}
	if section.Valid {
		sid := section.Int64
		n.SectionID = &sid
	}
	n.Tags = []string{}

	rows, err := tx.QueryContext(ctx, `
		SELECT tags.name FROM note_tags
		JOIN tags ON tags.id = note_tags.tag_id
		WHERE note_tags.note_id = ?
		ORDER BY tags.name`, id)
	if err != nil {
		return nil, nil, classify(err)
	}
	defer rows.Close()
	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, nil, classify(err)
		}
		tags = append(tags, name)
	}
	return &n, tags, classify(rows.Err())
}

func tagCountTx(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM note_tags
		JOIN tags ON tags.id = note_tags.tag_id
		WHERE tags.name = ?`, name).Scan(&count)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
