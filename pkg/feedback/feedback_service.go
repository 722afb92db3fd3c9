package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"smart-kitchen/domain"
	"smart-kitchen/entities"
	"smart-kitchen/internal/utils/mailing"
	"smart-kitchen/pkg/content"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type (
	FeedbackService interface {
		Submit(ctx context.Context, req domain.SubmitFeedbackRequest, userID string) (domain.FeedbackResponse, error)
		List(ctx context.Context, userID string) ([]domain.FeedbackResponse, error)
	}

	feedbackService struct {
		contentRepository content.ContentRepository
		mailer            mailing.Mailer
		supportEmail      string
	}

	feedbackData struct {
		Content  string `json:"content"`
		Category string `json:"category"`
		Rating   *int   `json:"rating,omitempty"`
	}
)

// NewFeedbackService forwards feedback to supportEmail when mailer is non-nil
// and the address is set.
func NewFeedbackService(contentRepository content.ContentRepository, mailer mailing.Mailer, supportEmail string) FeedbackService {
	return &feedbackService{
		contentRepository: contentRepository,
		mailer:            mailer,
		supportEmail:      supportEmail,
	}
}

func (s *feedbackService) Submit(ctx context.Context, req domain.SubmitFeedbackRequest, userID string) (domain.FeedbackResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.FeedbackResponse{}, domain.ErrParseUUID
	}

	text := strings.TrimSpace(req.Content)
	if text == "" {
		return domain.FeedbackResponse{}, domain.ErrEmptyFeedback
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = domain.DefaultFeedbackCategory
	}

	payload, err := json.Marshal(feedbackData{Content: text, Category: category, Rating: req.Rating})
	if err != nil {
		return domain.FeedbackResponse{}, err
	}
	metadata, err := json.Marshal(map[string]string{"category": category})
	if err != nil {
		return domain.FeedbackResponse{}, err
	}

	row := &entities.UserContent{
		UserID:   &userUUID,
		Type:     entities.ContentTypeFeedback,
		Data:     datatypes.JSON(payload),
		Metadata: datatypes.JSON(metadata),
	}
	if err := s.contentRepository.Create(ctx, row); err != nil {
		return domain.FeedbackResponse{}, err
	}

	s.forward(row.ID, userID, text, category, req.Rating)

	return domain.FeedbackResponse{
		ID:        row.ID.String(),
		Content:   text,
		Category:  category,
		Rating:    req.Rating,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *feedbackService) forward(id uuid.UUID, userID, text, category string, rating *int) {
	if s.mailer == nil || s.supportEmail == "" {
		return
	}

	ratingText := "none"
	if rating != nil {
		ratingText = fmt.Sprintf("%d/5", *rating)
	}
	subject := fmt.Sprintf("[feedback] %s from %s", category, userID)
	body := fmt.Sprintf(
		"<p><b>Feedback:</b> %s</p><p><b>User:</b> %s</p><p><b>Category:</b> %s</p><p><b>Rating:</b> %s</p><p>%s</p>",
		id, html.EscapeString(userID), html.EscapeString(category), ratingText,
		strings.ReplaceAll(html.EscapeString(text), "\n", "<br>"),
	)

	if err := s.mailer.SendMail(s.supportEmail, subject, body); err != nil {
		log.Errorw("failed to forward feedback", "feedback_id", id, "error", err)
	}
}

func (s *feedbackService) List(ctx context.Context, userID string) ([]domain.FeedbackResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	rows, err := s.contentRepository.ListByUser(ctx, userUUID, entities.ContentTypeFeedback)
	if err != nil {
		return nil, err
	}

	res := make([]domain.FeedbackResponse, 0, len(rows))
	for _, row := range rows {
		var data feedbackData
		if err := json.Unmarshal(row.Data, &data); err != nil {
			log.Warnw("skipping unreadable feedback row", "feedback_id", row.ID, "error", err)
			continue
		}
		res = append(res, domain.FeedbackResponse{
			ID:        row.ID.String(),
			Content:   data.Content,
			Category:  data.Category,
			Rating:    data.Rating,
			CreatedAt: row.CreatedAt,
		})
	}
	return res, nil
}
