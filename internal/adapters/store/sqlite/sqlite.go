// Package sqlite is the local mutation store: teams, team members and the
// cached user live in a single sqlite database with synced/unsynced
// bookkeeping. Referential integrity (member cascade on team delete, id
// rewrite on reconciliation) is enforced by the schema, not by callers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

const dsnOptions = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	image_ref TEXT NOT NULL DEFAULT '',
	is_synced INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS team_members (
	id INTEGER PRIMARY KEY,
	team_id INTEGER NOT NULL
		REFERENCES teams (id) ON DELETE CASCADE ON UPDATE CASCADE,
	email TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'MEMBER',
	is_synced INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members (team_id);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	email TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT ''
);
`

type teamRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Department string `db:"department"`
	ImageRef   string `db:"image_ref"`
	IsSynced   bool   `db:"is_synced"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r teamRow) toDomain() domain.Team {
	return domain.Team{
		ID:         r.ID,
		Name:       r.Name,
		Department: r.Department,
		ImageRef:   r.ImageRef,
		Synced:     r.IsSynced,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type memberRow struct {
	ID        int64  `db:"id"`
	TeamID    int64  `db:"team_id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Role      string `db:"role"`
	IsSynced  bool   `db:"is_synced"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r memberRow) toDomain() domain.TeamMember {
	return domain.TeamMember{
		ID:        r.ID,
		TeamID:    r.TeamID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      domain.Role(r.Role),
		Synced:    r.IsSynced,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type Store struct {
	db       *sqlx.DB
	notifier *notifier
	logger   *log.Logger
}

var _ ports.TeamStore = (*Store)(nil)

// Open connects to the database file at path and creates the schema if
// needed.
func Open(ctx context.Context, path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Debug("local store ready", "path", path)

	return &Store{db: db, notifier: newNotifier(), logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertTeam(ctx context.Context, team domain.Team) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, department, image_ref, is_synced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			image_ref = excluded.image_ref,
			is_synced = excluded.is_synced,
			updated_at = excluded.updated_at`,
		team.ID, team.Name, team.Department, team.ImageRef, team.Synced, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) TeamByID(ctx context.Context, id int64) (domain.Team, error) {
	var row teamRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM teams WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Team{}, domain.ErrTeamNotFound
		}
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) Teams(ctx context.Context) ([]domain.Team, error) {
	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM teams ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teamsFromRows(rows), nil
}

func (s *Store) UnsyncedTeams(ctx context.Context) ([]domain.Team, error) {
	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM teams WHERE is_synced = 0 ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list unsynced teams: %w", err)
	}
	return teamsFromRows(rows), nil
}

func (s *Store) MarkTeamSynced(ctx context.Context, id int64) error {
	if err := s.exec(ctx, `UPDATE teams SET is_synced = 1 WHERE id = ?`, domain.ErrTeamNotFound, id); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) ReplaceTeamID(ctx context.Context, oldID, newID int64) error {
	// Member team_id references follow through ON UPDATE CASCADE.
	if err := s.exec(ctx, `UPDATE teams SET id = ? WHERE id = ?`, domain.ErrTeamNotFound, newID, oldID); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id int64) error {
	// Members cascade at the schema level.
	if err := s.exec(ctx, `DELETE FROM teams WHERE id = ?`, domain.ErrTeamNotFound, id); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) UpsertMember(ctx context.Context, member domain.TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (id, team_id, email, name, role, is_synced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			team_id = excluded.team_id,
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			is_synced = excluded.is_synced,
			updated_at = excluded.updated_at`,
		member.ID, member.TeamID, member.Email, member.Name, string(member.Role), member.Synced, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) MemberByID(ctx context.Context, id int64) (domain.TeamMember, error) {
	var row memberRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM team_members WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TeamMember{}, domain.ErrMemberNotFound
		}
		return domain.TeamMember{}, fmt.Errorf("get member: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) MembersByTeam(ctx context.Context, teamID int64) ([]domain.TeamMember, error) {
	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM team_members WHERE team_id = ? ORDER BY email, id`, teamID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return membersFromRows(rows), nil
}

func (s *Store) UnsyncedMembers(ctx context.Context) ([]domain.TeamMember, error) {
	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM team_members WHERE is_synced = 0 ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list unsynced members: %w", err)
	}
	return membersFromRows(rows), nil
}

func (s *Store) MarkMemberSynced(ctx context.Context, id int64) error {
	if err := s.exec(ctx, `UPDATE team_members SET is_synced = 1 WHERE id = ?`, domain.ErrMemberNotFound, id); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) ReplaceMemberID(ctx context.Context, oldID, newID int64) error {
	if err := s.exec(ctx, `UPDATE team_members SET id = ? WHERE id = ?`, domain.ErrMemberNotFound, newID, oldID); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	if err := s.exec(ctx, `DELETE FROM team_members WHERE id = ?`, domain.ErrMemberNotFound, id); err != nil {
		return err
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	// Single cached user; a new sign-in replaces the previous one.
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save user: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("save user: clear previous: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, name) VALUES (?, ?, ?)`,
		user.ID, user.Email, user.Name); err != nil {
		return fmt.Errorf("save user: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save user: commit: %w", err)
	}

	s.notifier.broadcast()
	return nil
}

func (s *Store) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, name FROM users LIMIT 1`).
		Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotSignedIn
		}
		return domain.User{}, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

func (s *Store) Watch(ctx context.Context) <-chan struct{} {
	return s.notifier.subscribe(ctx)
}

// exec runs a write that must affect at least one row.
func (s *Store) exec(ctx context.Context, query string, missing error, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func teamsFromRows(rows []teamRow) []domain.Team {
	teams := make([]domain.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, row.toDomain())
	}
	return teams
}

func membersFromRows(rows []memberRow) []domain.TeamMember {
	members := make([]domain.TeamMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toDomain())
	}
	return members
}
