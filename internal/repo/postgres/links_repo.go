package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/observability"
)

var ErrLinkNotFound = errors.New("linked row not found")

// linkTables lists the rows other records may point at.
var linkTables = map[string]string{
	mindmap.EntityProject: "projects",
	mindmap.EntityMeeting: "meetings",
	mindmap.EntityEvent:   "events",
}

// LinksRepo answers which club owns a project, meeting or event referenced by
// another row.
type LinksRepo struct {
	base
}

func NewLinksRepo(db DB, prom *observability.Prom) *LinksRepo {
	return &LinksRepo{base{db: db, prom: prom}}
}

func (r *LinksRepo) LinkedClub(ctx context.Context, kind, id string) (string, error) {
	table, ok := linkTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown link kind %q", kind)
	}

	var clubID string
	err := r.observe("links.club_of_"+kind, func() error {
		return r.db.QueryRow(ctx, `SELECT club_id FROM `+table+` WHERE id = $1`, id).Scan(&clubID)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrLinkNotFound
		}
		return "", err
	}
	return clubID, nil
}
