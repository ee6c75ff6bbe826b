package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/infra/postgres"
)

const topReasonsLimit = 5

type FeedbackRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewFeedbackRepository(client *postgres.ReadWriteClient) *FeedbackRepository {
	return &FeedbackRepository{readPool: client.GetReadPool(), writePool: client.GetWritePool()}
}

// Insert grava a resposta com a organização do perfil dono do link. Um userId
// sem perfil, ou uma pesquisa que não é da organização desse perfil, resulta
// em ErrEntityNotFound.
func (r *FeedbackRepository) Insert(ctx context.Context, response entities.FeedbackResponse) (entities.FeedbackResponse, error) {
	answers := response.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	err := r.writePool.QueryRow(ctx, `
		INSERT INTO feedback_responses (
			organization_id, survey_id, user_id, group_id, location_id,
			rating, reason, comment, answers, contact, email, tracking_code
		)
		SELECT p.organization_id, s.id, p.id, $3::text, $4::text,
			$5::smallint, $6::text, $7::text, $8::jsonb, $9::boolean, $10::text, $11::text
		FROM profiles p
		JOIN surveys s ON s.id = $2::text AND s.organization_id = p.organization_id
		WHERE p.id = $1
		RETURNING id, organization_id, created_at`,
		response.UserID,
		response.SurveyID,
		response.GroupID,
		response.LocationID,
		response.Rating,
		postgres.NewNullString(response.Reason),
		postgres.NewNullString(response.Comment),
		answers,
		response.Contact,
		postgres.NewNullString(response.Email),
		response.TrackingCode,
	).Scan(&response.ID, &response.OrganizationID, &response.CreatedAt)
	if err != nil {
		return entities.FeedbackResponse{}, mapWriteError("FeedbackRepository.Insert", err)
	}

	response.Answers = answers
	return response, nil
}

func buildFeedbackWhere(organizationID string, filter domain.FeedbackFilter) (string, []any) {
	conditions := []string{"organization_id = $1"}
	args := []any{organizationID}

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, strings.ReplaceAll(condition, "?", "$"+strconv.Itoa(len(args))))
	}

	if !filter.From.IsZero() {
		add("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at <= ?", filter.To)
	}
	if filter.GroupID != "" {
		add("group_id = ?", filter.GroupID)
	}
	if filter.LocationID != "" {
		add("location_id = ?", filter.LocationID)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Stats calcula os agregados do dashboard em um único round trip.
func (r *FeedbackRepository) Stats(ctx context.Context, organizationID string, filter domain.FeedbackFilter) (entities.FeedbackStats, error) {
	where, args := buildFeedbackWhere(organizationID, filter)

	batch := &pgx.Batch{}
	batch.Queue(`SELECT count(*), COALESCE(avg(rating), 0)::float8 FROM feedback_responses`+where, args...)
	batch.Queue(`SELECT rating, count(*) FROM feedback_responses`+where+` GROUP BY rating ORDER BY rating`, args...)
	batch.Queue(`SELECT reason, count(*) AS total FROM feedback_responses`+where+
		` AND reason IS NOT NULL AND reason <> '' GROUP BY reason ORDER BY total DESC, reason LIMIT `+strconv.Itoa(topReasonsLimit), args...)

	results := r.readPool.SendBatch(ctx, batch)
	defer results.Close()

	stats := entities.FeedbackStats{RatingDistribution: map[int]int{}, CommonReasons: []entities.ReasonCount{}}

	if err := results.QueryRow().Scan(&stats.TotalResponses, &stats.AverageRating); err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackRepository.Stats - totals: %w", err)
	}

	rows, err := results.Query()
	if err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackRepository.Stats - distribution: %w", err)
	}
	var rating, count int
	_, err = pgx.ForEachRow(rows, []any{&rating, &count}, func() error {
		stats.RatingDistribution[rating] = count
		return nil
	})
	if err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackRepository.Stats - distribution: %w", err)
	}

	rows, err = results.Query()
	if err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackRepository.Stats - reasons: %w", err)
	}
	reasons, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entities.ReasonCount])
	if err != nil {
		return entities.FeedbackStats{}, fmt.Errorf("FeedbackRepository.Stats - reasons: %w", err)
	}
	stats.CommonReasons = append(stats.CommonReasons, reasons...)

	return stats, nil
}
