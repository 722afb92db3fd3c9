package profile

import (
	"context"
	"strings"

	"smart-kitchen/domain"
	"smart-kitchen/entities"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MinServings = 1
	MaxServings = 12
)

type (
	ProfileService interface {
		GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error)
		UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest, userID string) (domain.ProfileResponse, error)
	}

	profileService struct {
		profileRepository ProfileRepository
	}
)

func NewProfileService(profileRepository ProfileRepository) ProfileService {
	return &profileService{profileRepository: profileRepository}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProfileResponse{}, domain.ErrParseUUID
	}

	profile, err := s.profileRepository.GetOrCreate(ctx, userUUID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

// UpdateProfile writes only the fields present in req. A profile that does
// not exist yet is created first.
func (s *profileService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest, userID string) (domain.ProfileResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProfileResponse{}, domain.ErrParseUUID
	}

	profile, err := s.profileRepository.GetOrCreate(ctx, userUUID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	var columns []string
	if req.DietaryPreferences != nil {
		profile.DietaryPreferences = datatypes.NewJSONSlice(cleanList(*req.DietaryPreferences))
		columns = append(columns, "dietary_preferences")
	}
	if req.Goals != nil {
		profile.Goals = datatypes.NewJSONSlice(cleanList(*req.Goals))
		columns = append(columns, "goals")
	}
	if req.DefaultServings != nil {
		if *req.DefaultServings < MinServings || *req.DefaultServings > MaxServings {
			return domain.ProfileResponse{}, domain.ErrInvalidProfile
		}
		profile.DefaultServings = *req.DefaultServings
		columns = append(columns, "default_servings")
	}
	if req.CookingExperience != nil {
		experience := strings.ToLower(strings.TrimSpace(*req.CookingExperience))
		switch experience {
		case entities.CookingBeginner, entities.CookingIntermediate, entities.CookingAdvanced:
		default:
			return domain.ProfileResponse{}, domain.ErrInvalidProfile
		}
		profile.CookingExperience = experience
		columns = append(columns, "cooking_experience")
	}
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		if notes == "" {
			profile.Notes = nil
		} else {
			profile.Notes = &notes
		}
		columns = append(columns, "notes")
	}
	if len(columns) == 0 {
		return toResponse(profile), nil
	}

	if err := s.profileRepository.Update(ctx, profile, columns...); err != nil {
		return domain.ProfileResponse{}, err
	}
	log.Infow("profile updated", "user_id", userID, "fields", columns)
	return toResponse(profile), nil
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func toResponse(profile *entities.UserProfile) domain.ProfileResponse {
	res := domain.ProfileResponse{
		ID:                 profile.ID.String(),
		UserID:             profile.UserID.String(),
		DietaryPreferences: []string(profile.DietaryPreferences),
		Goals:              []string(profile.Goals),
		DefaultServings:    profile.DefaultServings,
		CookingExperience:  profile.CookingExperience,
		Notes:              profile.Notes,
		CreatedAt:          profile.CreatedAt,
		UpdatedAt:          profile.UpdatedAt,
	}
	if res.DietaryPreferences == nil {
		res.DietaryPreferences = []string{}
	}
	if res.Goals == nil {
		res.Goals = []string{}
	}
	return res
}
