package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
	"github.com/mcoot/videocollect/internal/testutil"
)

type StorageSuite struct {
	suite.Suite
	db      *sql.DB
	mock    sqlmock.Sqlmock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db = db
	s.mock = mock
	s.storage = NewWithDB(sqlx.NewDb(db, "sqlmock"), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *StorageSuite) TestCreateUser() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user" (name, username, password_hash)`)).
		WithArgs("Alice Smith", "alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	user := &model.User{Name: "Alice Smith", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))
	s.Equal(model.UserID(5), user.ID)
}

func (s *StorageSuite) TestCreateUserDuplicate() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user"`)).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})

	err := s.storage.CreateUser(s.ctx, &model.User{Name: "A", Username: "alice", PasswordHash: "h"})
	s.ErrorIs(err, storage.ErrDuplicateUsername)
}

func (s *StorageSuite) TestGetUserByUsername() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM "user" WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "username", "password_hash"}).
			AddRow(int64(1), "Alice Smith", "alice", "hash"))

	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID(1), user.ID)
	s.Equal("Alice Smith", user.Name)
}

func (s *StorageSuite) TestGetUserNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM "user" WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.storage.GetUser(s.ctx, 9)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestCreateParticipant() {
	dob := time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO participant`)).
		WithArgs("Ana", dob, "F", "", created, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	p := &model.Participant{Name: "Ana", DateOfBirth: dob, Gender: "F", CreatedAt: created, CreatedBy: 1}
	s.Require().NoError(s.storage.CreateParticipant(s.ctx, p))
	s.Equal(model.ParticipantID(7), p.ID)
}

func (s *StorageSuite) TestCreateParticipantUnknownCreator() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO participant`)).
		WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation})

	err := s.storage.CreateParticipant(s.ctx, &model.Participant{Name: "Ana", CreatedBy: 42})
	s.ErrorIs(err, storage.ErrForeignKey)
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM participant`)).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.storage.GetParticipant(s.ctx, 3)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestUpdateParticipantNotFound() {
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE participant`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.storage.UpdateParticipant(s.ctx, &model.Participant{ID: 3, Name: "Ana"})
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestDeleteParticipantRunsInTransaction() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM video WHERE participant_id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participant WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.storage.DeleteParticipant(s.ctx, 3))
}

func (s *StorageSuite) TestDeleteParticipantNotFoundRollsBack() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM video`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participant`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	err := s.storage.DeleteParticipant(s.ctx, 3)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestDeleteParticipantVideoFailureRollsBack() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM video`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.storage.DeleteParticipant(s.ctx, 3)
	s.ErrorIs(err, sql.ErrConnDone)
}

func (s *StorageSuite) TestListParticipantsEscapesSearch() {
	dob := time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "name", "date_of_birth", "gender", "pathology",
		"created_at", "created_by", "video_count", "creator_name"}
	s.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY lower(p.name), p.id`)).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "50%_off", dob, "F", "", created, int64(1), 2, "Alice Smith"))

	result, err := s.storage.ListParticipants(s.ctx, model.ParticipantFilter{Search: "50%_off", OrderByName: true})
	s.Require().NoError(err)
	s.Require().Len(result, 1)
	s.Equal(2, result[0].VideoCount)
	s.Equal("Alice Smith", result[0].CreatorName)
	s.Equal(model.ParticipantID(1), result[0].ID)
}

func (s *StorageSuite) TestListVideosForParticipant() {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	columns := []string{"id", "participant_id", "url", "score", "comment",
		"created_at", "created_by", "creator_name"}
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE v.participant_id = $1 ORDER BY v.created_at, v.id`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(7), "video_7_20240309140507.mp4", 4, "good", at, int64(1), ""))

	videos, err := s.storage.ListVideosForParticipant(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(videos, 1)
	s.Equal("video_7_20240309140507.mp4", videos[0].Filename)
	s.Equal(at, videos[0].CreatedAt)
	s.Empty(videos[0].CreatorName)
}

func (s *StorageSuite) TestCountVideos() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM video`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := s.storage.CountVideos(s.ctx)
	s.Require().NoError(err)
	s.Equal(12, n)
}

func (s *StorageSuite) TestMigrate() {
	for range schema {
		s.mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	s.Require().NoError(s.storage.Migrate(s.ctx))
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"ana":     "ana",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
