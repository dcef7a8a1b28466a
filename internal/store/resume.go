package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/resume-analyzer/apiserver/types"
)

// ResumeRepository handles persistence for resumes. All lookups except
// skill search are scoped by the owning user.
type ResumeRepository struct {
	db *sql.DB
}

func NewResumeRepository(db *sql.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

const resumeColumns = `id, user_id, filename, text, skills, similarity, object_key, uploaded_at`

func (r *ResumeRepository) Create(ctx context.Context, resume types.Resume) (types.Resume, error) {
	resume.UploadedAt = time.Now()

	skillsJSON, err := json.Marshal(resume.Skills)
	if err != nil {
		return types.Resume{}, err
	}
	similarityJSON, err := json.Marshal(resume.Similarity)
	if err != nil {
		return types.Resume{}, err
	}

	const query = `
		INSERT INTO resumes (user_id, filename, text, skills, similarity, object_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		resume.UserID,
		resume.Filename,
		resume.Text,
		skillsJSON,
		similarityJSON,
		resume.ObjectKey,
		resume.UploadedAt,
	).Scan(&resume.ID); err != nil {
		return types.Resume{}, err
	}
	return resume, nil
}

// GetOwned fetches a resume only if it belongs to the given user.
// A resume owned by someone else is indistinguishable from a missing one.
func (r *ResumeRepository) GetOwned(ctx context.Context, id, userID int) (types.Resume, error) {
	const query = `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

// Latest returns the user's most recently uploaded resume.
func (r *ResumeRepository) Latest(ctx context.Context, userID int) (types.Resume, error) {
	const query = `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *ResumeRepository) ListByUser(ctx context.Context, userID int) ([]types.Resume, error) {
	const query = `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE user_id = $1
		ORDER BY uploaded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// FindBySkill returns resumes whose extracted skills contain the given
// skill, case-insensitively.
func (r *ResumeRepository) FindBySkill(ctx context.Context, skill string, limit int) ([]types.Resume, error) {
	if limit < 1 {
		limit = 10
	}

	const query = `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(skills) AS s
			WHERE lower(s) = lower($1)
		)
		ORDER BY uploaded_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, skill, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *ResumeRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM resumes`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ResumeRepository) scanOne(row *sql.Row) (types.Resume, error) {
	var resume types.Resume
	var skillsJSON, similarityJSON []byte
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Filename,
		&resume.Text,
		&skillsJSON,
		&similarityJSON,
		&resume.ObjectKey,
		&resume.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Resume{}, ErrNotFound
		}
		return types.Resume{}, err
	}

	_ = json.Unmarshal(skillsJSON, &resume.Skills)
	_ = json.Unmarshal(similarityJSON, &resume.Similarity)
	return resume, nil
}

func (r *ResumeRepository) scanMany(rows *sql.Rows) ([]types.Resume, error) {
	var resumes []types.Resume
	for rows.Next() {
		var resume types.Resume
		var skillsJSON, similarityJSON []byte
		if err := rows.Scan(
			&resume.ID,
			&resume.UserID,
			&resume.Filename,
			&resume.Text,
			&skillsJSON,
			&similarityJSON,
			&resume.ObjectKey,
			&resume.UploadedAt,
		); err != nil {
			return nil, err
		}

		_ = json.Unmarshal(skillsJSON, &resume.Skills)
		_ = json.Unmarshal(similarityJSON, &resume.Similarity)
		resumes = append(resumes, resume)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resumes, nil
}
