package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
)

// PostgreSQL error codes mapped to storage errors
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Storage is a PostgreSQL implementation of the storage interface
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New connects to PostgreSQL with the given configuration
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing connection (useful for testing)
func NewWithDB(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{db: db, logger: logger}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type userRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:           model.UserID(r.ID),
		Name:         r.Name,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
	}
}

type participantRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	DateOfBirth time.Time `db:"date_of_birth"`
	Gender      string    `db:"gender"`
	Pathology   string    `db:"pathology"`
	CreatedAt   time.Time `db:"created_at"`
	CreatedBy   int64     `db:"created_by"`
}

func (r participantRow) toModel() model.Participant {
	return model.Participant{
		ID:          model.ParticipantID(r.ID),
		Name:        r.Name,
		DateOfBirth: r.DateOfBirth.UTC(),
		Gender:      r.Gender,
		Pathology:   r.Pathology,
		CreatedAt:   r.CreatedAt.UTC(),
		CreatedBy:   model.UserID(r.CreatedBy),
	}
}

type summaryRow struct {
	participantRow
	VideoCount  int    `db:"video_count"`
	CreatorName string `db:"creator_name"`
}

type videoRow struct {
	ID            int64     `db:"id"`
	ParticipantID int64     `db:"participant_id"`
	URL           string    `db:"url"`
	Score         int       `db:"score"`
	Comment       string    `db:"comment"`
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     int64     `db:"created_by"`
	CreatorName   string    `db:"creator_name"`
}

func (r videoRow) toModel() model.VideoWithCreator {
	return model.VideoWithCreator{
		Video: model.Video{
			ID:            model.VideoID(r.ID),
			ParticipantID: model.ParticipantID(r.ParticipantID),
			Filename:      r.URL,
			Score:         r.Score,
			Comment:       r.Comment,
			CreatedAt:     r.CreatedAt.UTC(),
			CreatedBy:     model.UserID(r.CreatedBy),
		},
		CreatorName: r.CreatorName,
	}
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	const query = `
		INSERT INTO "user" (name, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	err := s.db.GetContext(ctx, &id, query, user.Name, user.Username, user.PasswordHash)
	s.logQuery(query, []any{user.Name, user.Username}, err)
	if err != nil {
		return mapError(err, "create user")
	}
	user.ID = model.UserID(id)
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	const query = `SELECT id, name, username, password_hash FROM "user" WHERE id = $1`
	var row userRow
	err := s.db.GetContext(ctx, &row, query, int64(id))
	s.logQuery(query, []any{id}, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toModel(), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `SELECT id, name, username, password_hash FROM "user" WHERE username = $1`
	var row userRow
	err := s.db.GetContext(ctx, &row, query, username)
	s.logQuery(query, []any{username}, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return row.toModel(), nil
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	const query = `
		INSERT INTO participant (name, date_of_birth, gender, pathology, created_at, created_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id
	`
	args := []any{p.Name, p.DateOfBirth, p.Gender, p.Pathology, p.CreatedAt.UTC(), int64(p.CreatedBy)}
	var id int64
	err := s.db.GetContext(ctx, &id, query, args...)
	s.logQuery(query, args, err)
	if err != nil {
		return mapError(err, "create participant")
	}
	p.ID = model.ParticipantID(id)
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	const query = `
		SELECT id, name, date_of_birth, gender, COALESCE(pathology, '') AS pathology, created_at, created_by
		FROM participant
		WHERE id = $1
	`
	var row participantRow
	err := s.db.GetContext(ctx, &row, query, int64(id))
	s.logQuery(query, []any{id}, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	p := row.toModel()
	return &p, nil
}

func (s *Storage) UpdateParticipant(ctx context.Context, p *model.Participant) error {
	const query = `
		UPDATE participant
		SET name = $2, date_of_birth = $3, gender = $4, pathology = NULLIF($5, '')
		WHERE id = $1
	`
	args := []any{int64(p.ID), p.Name, p.DateOfBirth, p.Gender, p.Pathology}
	res, err := s.db.ExecContext(ctx, query, args...)
	s.logQuery(query, args, err)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if affected == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}

// DeleteParticipant removes the participant and its videos in one transaction
func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete participant: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteVideos = `DELETE FROM video WHERE participant_id = $1`
	_, err = tx.ExecContext(ctx, deleteVideos, int64(id))
	s.logQuery(deleteVideos, []any{id}, err)
	if err != nil {
		return fmt.Errorf("delete videos: %w", err)
	}

	const deleteParticipant = `DELETE FROM participant WHERE id = $1`
	res, err := tx.ExecContext(ctx, deleteParticipant, int64(id))
	s.logQuery(deleteParticipant, []any{id}, err)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if affected == 0 {
		err = model.ErrParticipantNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete participant: %w", err)
	}
	return nil
}

const listParticipantsQuery = `
	SELECT p.id, p.name, p.date_of_birth, p.gender, COALESCE(p.pathology, '') AS pathology,
	       p.created_at, p.created_by,
	       COUNT(v.id) AS video_count,
	       COALESCE(u.name, '') AS creator_name
	FROM participant p
	LEFT JOIN video v ON v.participant_id = p.id
	LEFT JOIN "user" u ON u.id = p.created_by
	WHERE p.name ILIKE $1 ESCAPE '\'
	GROUP BY p.id, u.name
`

func (s *Storage) ListParticipants(ctx context.Context, filter model.ParticipantFilter) ([]model.ParticipantSummary, error) {
	query := listParticipantsQuery + ` ORDER BY p.id`
	if filter.OrderByName {
		query = listParticipantsQuery + ` ORDER BY lower(p.name), p.id`
	}
	pattern := "%" + escapeLike(filter.Search) + "%"

	var rows []summaryRow
	err := s.db.SelectContext(ctx, &rows, query, pattern)
	s.logQuery(query, []any{pattern}, err)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	result := make([]model.ParticipantSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ParticipantSummary{
			Participant: row.toModel(),
			VideoCount:  row.VideoCount,
			CreatorName: row.CreatorName,
		})
	}
	return result, nil
}

func (s *Storage) CountParticipants(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM participant`)
}

// Video operations

func (s *Storage) CreateVideo(ctx context.Context, v *model.Video) error {
	const query = `
		INSERT INTO video (participant_id, url, score, comment, created_at, created_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id
	`
	args := []any{int64(v.ParticipantID), v.Filename, v.Score, v.Comment, v.CreatedAt.UTC(), int64(v.CreatedBy)}
	var id int64
	err := s.db.GetContext(ctx, &id, query, args...)
	s.logQuery(query, args, err)
	if err != nil {
		return mapError(err, "create video")
	}
	v.ID = model.VideoID(id)
	return nil
}

const listVideosQuery = `
	SELECT v.id, v.participant_id, v.url, v.score, COALESCE(v.comment, '') AS comment,
	       v.created_at, v.created_by,
	       COALESCE(u.name, '') AS creator_name
	FROM video v
	LEFT JOIN "user" u ON u.id = v.created_by
`

func (s *Storage) ListVideos(ctx context.Context) ([]model.VideoWithCreator, error) {
	query := listVideosQuery + ` ORDER BY v.id`
	return s.selectVideos(ctx, query)
}

func (s *Storage) ListVideosForParticipant(ctx context.Context, id model.ParticipantID) ([]model.VideoWithCreator, error) {
	query := listVideosQuery + ` WHERE v.participant_id = $1 ORDER BY v.created_at, v.id`
	return s.selectVideos(ctx, query, int64(id))
}

func (s *Storage) CountVideos(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM video`)
}

func (s *Storage) VideoFilenames(ctx context.Context) ([]string, error) {
	const query = `SELECT url FROM video ORDER BY url`
	var names []string
	err := s.db.SelectContext(ctx, &names, query)
	s.logQuery(query, nil, err)
	if err != nil {
		return nil, fmt.Errorf("list video filenames: %w", err)
	}
	return names, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) selectVideos(ctx context.Context, query string, args ...any) ([]model.VideoWithCreator, error) {
	var rows []videoRow
	err := s.db.SelectContext(ctx, &rows, query, args...)
	s.logQuery(query, args, err)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	result := make([]model.VideoWithCreator, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

func (s *Storage) count(ctx context.Context, query string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, query)
	s.logQuery(query, nil, err)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// logQuery records the statement on a single line at debug level
func (s *Storage) logQuery(query string, args []any, err error) {
	s.logger.Debug("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)
}

func mapError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, storage.ErrDuplicateUsername)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, storage.ErrForeignKey)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// escapeLike makes LIKE metacharacters in s match literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
